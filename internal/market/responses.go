package market

import (
	"context"
	"fmt"

	"local_marketplace/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResponseStore persists seller responses, one per (order, seller)
type ResponseStore struct {
	db *gorm.DB
}

// NewResponseStore returns a store writing through db
func NewResponseStore(db *gorm.DB) *ResponseStore {
	return &ResponseStore{db: db}
}

// Upsert records notes for (orderID, sellerID); a repeated call replaces the notes
func (r *ResponseStore) Upsert(ctx context.Context, orderID, sellerID uint, notes string) (*domain.SellerResponse, error) {
	row := domain.SellerResponse{OrderID: orderID, UserID: sellerID, Notes: notes}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"notes", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert response: %w", err)
	}
	// Reload so the conflict path returns the surviving row
	var saved domain.SellerResponse
	if err := r.db.WithContext(ctx).Where("order_id = ? AND user_id = ?", orderID, sellerID).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("reload response: %w", err)
	}
	return &saved, nil
}

// ListForOrder returns the responses to orderID, oldest first
func (r *ResponseStore) ListForOrder(ctx context.Context, orderID uint) ([]domain.SellerResponse, error) {
	var rows []domain.SellerResponse
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list responses of order %d: %w", orderID, err)
	}
	return rows, nil
}

// ListBySeller returns every response written by sellerID
func (r *ResponseStore) ListBySeller(ctx context.Context, sellerID uint) ([]domain.SellerResponse, error) {
	var rows []domain.SellerResponse
	if err := r.db.WithContext(ctx).Where("user_id = ?", sellerID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list responses of seller %d: %w", sellerID, err)
	}
	return rows, nil
}

// CountPerOrder returns the number of responses for each of orderIDs.
// Every requested id is present in the result, with zero when unanswered.
func (r *ResponseStore) CountPerOrder(ctx context.Context, orderIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(orderIDs))
	if len(orderIDs) == 0 {
		return counts, nil
	}
	for _, id := range orderIDs {
		counts[id] = 0
	}
	var rows []struct {
		OrderID uint
		Total   int64
	}
	if err := r.db.WithContext(ctx).Model(&domain.SellerResponse{}).
		Select("order_id, COUNT(*) AS total").
		Where("order_id IN ?", orderIDs).
		Group("order_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}
	for _, row := range rows {
		counts[row.OrderID] = row.Total
	}
	return counts, nil
}
