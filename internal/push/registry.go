package push

import (
	"context" // Request-scoped context
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // Token trimming
	"time"    // Update timestamps

	"local_marketplace/internal/domain" // Importing domain models

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Upsert clauses
)

// ErrEmptyToken is returned when a blank device token is registered
var ErrEmptyToken = errors.New("push token must not be empty")

// Registry stores one device token per user
type Registry struct {
	db *gorm.DB
}

// NewRegistry returns a registry backed by db
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Save registers token for userID, replacing any previous token
func (r *Registry) Save(ctx context.Context, userID uint, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	row := domain.PushToken{UserID: userID, PushToken: token, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"push_token", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save push token: %w", err)
	}
	return nil
}

// Remove deletes the token registered for userID, if any
func (r *Registry) Remove(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.PushToken{}).Error; err != nil {
		return fmt.Errorf("remove push token: %w", err)
	}
	return nil
}

// Lookup returns the token registered for userID
func (r *Registry) Lookup(ctx context.Context, userID uint) (string, bool, error) {
	var row domain.PushToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup push token: %w", err)
	}
	return row.PushToken, true, nil
}
