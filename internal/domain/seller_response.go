package domain

import "time"

// SellerResponse Model, one per (order, seller)
type SellerResponse struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                                           // Primary key
	OrderID   uint      `gorm:"not null;uniqueIndex:idx_response_order_seller,priority:1" json:"order_id"`      // Foreign key to Order
	UserID    uint      `gorm:"not null;uniqueIndex:idx_response_order_seller,priority:2;index" json:"user_id"` // Responding seller
	Notes     string    `gorm:"type:text" json:"notes"`                                                         // Seller's note to the buyer
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
