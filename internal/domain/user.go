package domain

import "time"

// Role values for User.Role
const (
	RoleUser  = "user"  // Regular buyer or seller account
	RoleAdmin = "admin" // Operator account allowed to grant credits
)

// User Model
type User struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`                              // Primary key
	Username              string    `gorm:"unique;not null;size:30" json:"username"`           // Unique lower-case username
	Password              string    `gorm:"not null" json:"-"`                                 // Hashed password
	Pincode               string    `gorm:"index;size:6" json:"pincode"`                       // Locality key, empty or 6 digits
	IsSeller              *bool     `json:"is_seller"`                                         // nil: undecided, true: seller, false: buyer
	Role                  string    `gorm:"default:user;size:20" json:"role"`                  // Role: user or admin
	AvailableRequestCount int       `gorm:"not null;default:0" json:"available_request_count"` // Remaining request credits
	UsedCreditCount       int       `gorm:"not null;default:0" json:"used_credit_count"`       // Consumed request credits
	CreatedAt             time.Time `json:"created_at"`                                        // Signup time
	UpdatedAt             time.Time `json:"updated_at"`                                        // Last update
}

// Seller reports whether the user picked the seller role
func (u *User) Seller() bool {
	return u.IsSeller != nil && *u.IsSeller
}

// Buyer reports whether the user picked the buyer role
func (u *User) Buyer() bool {
	return u.IsSeller != nil && !*u.IsSeller
}
