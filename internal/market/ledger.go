package market

import (
	"context"
	"errors"
	"fmt"

	"local_marketplace/internal/domain"

	"gorm.io/gorm"
)

// Balance is a buyer's request credit position
type Balance struct {
	Available int `json:"available_request_count"`
	Used      int `json:"used_credit_count"`
}

// Ledger guards request credits on users and sale credits on seller details.
// Every decrement is a single conditional UPDATE, so two concurrent callers
// can never spend the same last credit.
type Ledger struct {
	db *gorm.DB
}

// NewLedger returns a ledger writing through db
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a copy of the ledger bound to tx
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// CanCreateRequest reports whether userID has at least one request credit
func (l *Ledger) CanCreateRequest(ctx context.Context, userID uint) (bool, error) {
	b, err := l.Balance(ctx, userID)
	if err != nil {
		return false, err
	}
	return b.Available > 0, nil
}

// Balance returns the request credit counters of userID
func (l *Ledger) Balance(ctx context.Context, userID uint) (Balance, error) {
	var u domain.User // Only the counters are loaded
	err := l.db.WithContext(ctx).Select("id", "available_request_count", "used_credit_count").First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Balance{}, ErrUserNotFound
	}
	if err != nil {
		return Balance{}, fmt.Errorf("load credits of user %d: %w", userID, err)
	}
	return Balance{Available: u.AvailableRequestCount, Used: u.UsedCreditCount}, nil
}

// ConsumeCredit moves one credit from available to used
func (l *Ledger) ConsumeCredit(ctx context.Context, userID uint) error {
	res := l.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND available_request_count > 0", userID). // Guard in the same statement as the decrement
		Updates(map[string]any{
			"available_request_count": gorm.Expr("available_request_count - 1"), // Take one credit
			"used_credit_count":       gorm.Expr("used_credit_count + 1"),       // And record it as used
		})
	if res.Error != nil {
		return fmt.Errorf("consume credit of user %d: %w", userID, res.Error)
	}
	// No row matched: either the user is missing or the balance is zero
	if res.RowsAffected == 0 {
		return l.missing(ctx, &domain.User{}, "id = ?", userID, ErrUserNotFound, ErrNoCredit)
	}
	return nil
}

// ConsumeSaleCredit spends one pending sale credit of sellerID
func (l *Ledger) ConsumeSaleCredit(ctx context.Context, sellerID uint) error {
	res := l.db.WithContext(ctx).Model(&domain.SellerDetails{}).
		Where("user_id = ? AND pending_sale_credit > 0", sellerID).         // Guard in the same statement
		Update("pending_sale_credit", gorm.Expr("pending_sale_credit - 1")) // Spend one sale credit
	if res.Error != nil {
		return fmt.Errorf("consume sale credit of seller %d: %w", sellerID, res.Error)
	}
	if res.RowsAffected == 0 {
		return l.missing(ctx, &domain.SellerDetails{}, "user_id = ?", sellerID, ErrSellerNotFound, ErrNoSaleCredit)
	}
	return nil
}

// GrantRequestCredits adds n request credits to userID
func (l *Ledger) GrantRequestCredits(ctx context.Context, userID uint, n int) error {
	if n <= 0 {
		return ErrInvalidAmount
	}
	res := l.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("available_request_count", gorm.Expr("available_request_count + ?", n)) // Add to the balance atomically
	if res.Error != nil {
		return fmt.Errorf("grant credits to user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GrantSaleCredits adds n sale credits to sellerID
func (l *Ledger) GrantSaleCredits(ctx context.Context, sellerID uint, n int) error {
	if n <= 0 {
		return ErrInvalidAmount
	}
	res := l.db.WithContext(ctx).Model(&domain.SellerDetails{}).
		Where("user_id = ?", sellerID).
		Update("pending_sale_credit", gorm.Expr("pending_sale_credit + ?", n)) // Add to the balance atomically
	if res.Error != nil {
		return fmt.Errorf("grant sale credits to seller %d: %w", sellerID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSellerNotFound
	}
	return nil
}

// missing tells apart a missing row from a failed predicate after a zero-row update
func (l *Ledger) missing(ctx context.Context, model any, where string, id uint, notFound, exhausted error) error {
	var n int64
	if err := l.db.WithContext(ctx).Model(model).Where(where, id).Count(&n).Error; err != nil {
		return fmt.Errorf("check row %d: %w", id, err)
	}
	if n == 0 {
		return notFound
	}
	return exhausted
}
