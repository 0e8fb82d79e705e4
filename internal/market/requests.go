package market

import (
	"context"
	"errors"
	"fmt"

	"local_marketplace/internal/domain"

	"gorm.io/gorm"
)

// RequestStore persists buyer requests (orders)
type RequestStore struct {
	db *gorm.DB
}

// NewRequestStore returns a store writing through db
func NewRequestStore(db *gorm.DB) *RequestStore {
	return &RequestStore{db: db}
}

// WithTx returns a copy of the store bound to tx
func (r *RequestStore) WithTx(tx *gorm.DB) *RequestStore {
	return &RequestStore{db: tx}
}

// Insert stores a new order, filling its id and creation time
func (r *RequestStore) Insert(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// Get loads an order by id
func (r *RequestStore) Get(ctx context.Context, orderID uint) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", orderID, err)
	}
	return &o, nil
}

// FindByIdempotencyKey returns the buyer's order created with key, or nil
func (r *RequestStore) FindByIdempotencyKey(ctx context.Context, buyerID uint, key string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Where("user_id = ? AND idempotency_key = ?", buyerID, key).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup idempotency key: %w", err)
	}
	return &o, nil
}

// ListForBuyer returns the buyer's orders, newest first
func (r *RequestStore) ListForBuyer(ctx context.Context, buyerID uint) ([]domain.Order, error) {
	var orders []domain.Order
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", buyerID).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders of buyer %d: %w", buyerID, err)
	}
	return orders, nil
}

// ListByPincode returns orders placed in pincode, newest first
func (r *RequestStore) ListByPincode(ctx context.Context, pincode string) ([]domain.Order, error) {
	orders := []domain.Order{}
	if pincode == "" {
		return orders, nil
	}
	if err := r.db.WithContext(ctx).
		Where("TRIM(pincode) = ?", pincode).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders in %s: %w", pincode, err)
	}
	return orders, nil
}
