package market

import "errors"

// Validation errors, rejected before any store call
var (
	ErrEmptyItemName  = errors.New("item name must not be empty")
	ErrInvalidPincode = errors.New("pincode must contain exactly 6 digits")
	ErrEmptySaleItems = errors.New("sale items must not be empty")
	ErrInvalidAmount  = errors.New("amount must be positive")
)

// Not-found errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrSellerNotFound       = errors.New("seller details not found")
	ErrOrderNotFound        = errors.New("request not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// Business-rule rejections
var (
	ErrNotSeller       = errors.New("user is not a seller")
	ErrNotBuyer        = errors.New("user is not a buyer")
	ErrRoleAlreadySet  = errors.New("role already chosen")
	ErrNoCredit        = errors.New("no request credits left")
	ErrNoSaleCredit    = errors.New("no sale credits left")
	ErrNoPincode       = errors.New("no pincode on profile")
	ErrNoBuyersMatched = errors.New("no buyers found in your area")
)
