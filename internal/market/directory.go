package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"local_marketplace/internal/domain"
	"local_marketplace/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Role selects which side of the marketplace a Directory lookup returns
type Role int

const (
	RoleBuyer Role = iota
	RoleSeller
)

func (r Role) String() string {
	if r == RoleSeller {
		return "seller"
	}
	return "buyer"
}

// Directory is the read-only view of users, their locality and role
type Directory struct {
	db *gorm.DB
}

// NewDirectory returns a directory reading through db
func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// WithTx returns a copy of the directory bound to tx
func (d *Directory) WithTx(tx *gorm.DB) *Directory {
	return &Directory{db: tx}
}

// FindByPincode lists users of role whose pincode equals pincode after trimming.
// An empty pincode matches nobody. Lookup failures are logged and yield an empty list.
func (d *Directory) FindByPincode(ctx context.Context, pincode string, role Role) []domain.User {
	p := utils.NormalizePincode(pincode)
	if p == "" {
		return []domain.User{}
	}
	var users []domain.User
	err := d.db.WithContext(ctx).
		Where("TRIM(pincode) = ? AND is_seller = ?", p, role == RoleSeller).
		Order("id asc").
		Find(&users).Error
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"pincode": p,
			"role":    role.String(),
			"error":   err.Error(),
		}).Error("Directory lookup failed")
		return []domain.User{}
	}
	return FilterByPincode(users, p)
}

// GetPincode returns the trimmed pincode of userID; false when the user does not exist
func (d *Directory) GetPincode(ctx context.Context, userID uint) (string, bool) {
	u, err := d.GetUser(ctx, userID)
	if err != nil {
		return "", false
	}
	return utils.NormalizePincode(u.Pincode), true
}

// GetUser loads a user by id
func (d *Directory) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	var u domain.User
	err := d.db.WithContext(ctx).First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return &u, nil
}

// FindByUsername loads a user by username, ignoring case
func (d *Directory) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := d.db.WithContext(ctx).Where("username = ?", strings.ToLower(strings.TrimSpace(username))).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", username, err)
	}
	return &u, nil
}
