package utils

import (
	"regexp"  // Regular expressions
	"strings" // String manipulation
)

var (
	pincodePattern  = regexp.MustCompile(`^\d{6}$`)              // Exactly six digits
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`) // Letters, digits and underscore
)

// NormalizePincode trims surrounding whitespace from a pincode
func NormalizePincode(pincode string) string {
	return strings.TrimSpace(pincode)
}

// IsValidPincode reports whether pincode is exactly six digits after trimming
func IsValidPincode(pincode string) bool {
	return pincodePattern.MatchString(NormalizePincode(pincode))
}

// IsValidUsername checks the allowed username alphabet and length
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// IsValidPassword checks if the password length is between 8 and 64 characters
func IsValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64
}
