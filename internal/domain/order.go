package domain

import "time"

// CategoryMedical is the only category the marketplace serves today
const CategoryMedical = "Medical"

// Order Model, a buyer's item request
type Order struct {
	ID             uint      `gorm:"primaryKey" json:"id"`                                                       // Primary key
	UserID         uint      `gorm:"not null;index;uniqueIndex:idx_order_idempotency,priority:1" json:"user_id"` // Owning buyer
	ItemName       string    `gorm:"not null;size:200" json:"item_name"`                                         // Requested item
	Pincode        string    `gorm:"index;size:6" json:"pincode"`                                                // Locality at creation time
	Category       string    `gorm:"size:40" json:"category"`                                                    // Always Medical
	IdempotencyKey *string   `gorm:"size:64;uniqueIndex:idx_order_idempotency,priority:2" json:"-"`              // Client retry key
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                                    // Creation time
}
