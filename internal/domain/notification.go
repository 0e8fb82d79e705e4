package domain

import "time"

// Notification Model
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                  // Primary key
	UserID    uint      `gorm:"not null;index" json:"user_id"`         // Recipient
	SellerID  *uint     `json:"seller_id,omitempty"`                   // Set for sale broadcasts
	OrderID   *uint     `json:"order_id,omitempty"`                    // Set for request fan-out
	Message   string    `gorm:"type:text;not null" json:"message"`     // Human-readable text
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"` // Read flag, only ever goes false -> true
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
