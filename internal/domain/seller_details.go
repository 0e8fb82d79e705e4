package domain

import "time"

// SellerDetails Model, one per seller user
type SellerDetails struct {
	ID                uint      `gorm:"primaryKey" json:"id"`                          // Primary key
	UserID            uint      `gorm:"uniqueIndex;not null" json:"user_id"`           // Foreign key to User
	ShopName          string    `gorm:"size:120" json:"shop_name"`                     // Shop display name
	ShopAddress       string    `gorm:"size:255" json:"shop_address"`                  // Street address
	Notes             string    `gorm:"type:text" json:"notes"`                        // Free text
	Category          string    `gorm:"size:40;default:Medical" json:"category"`       // Shop category
	Pincode           string    `gorm:"index;size:6" json:"pincode"`                   // Copy of User.Pincode
	PendingSaleCredit int       `gorm:"not null;default:0" json:"pending_sale_credit"` // Remaining sale broadcasts
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
