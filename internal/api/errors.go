package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing

	"local_marketplace/internal/market"     // Marketplace errors
	"local_marketplace/internal/middleware" // Context keys
	"local_marketplace/internal/push"       // Push errors

	"github.com/gin-gonic/gin" // Gin web framework
)

// statusFor maps a domain error to its HTTP status; 0 means unexpected
func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrEmptyItemName),
		errors.Is(err, market.ErrInvalidPincode),
		errors.Is(err, market.ErrEmptySaleItems),
		errors.Is(err, market.ErrInvalidAmount),
		errors.Is(err, push.ErrEmptyToken):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrUserNotFound),
		errors.Is(err, market.ErrSellerNotFound),
		errors.Is(err, market.ErrOrderNotFound),
		errors.Is(err, market.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrNotSeller),
		errors.Is(err, market.ErrNotBuyer):
		return http.StatusForbidden
	case errors.Is(err, market.ErrNoCredit),
		errors.Is(err, market.ErrNoSaleCredit):
		return http.StatusPaymentRequired
	case errors.Is(err, market.ErrRoleAlreadySet),
		errors.Is(err, market.ErrNoPincode):
		return http.StatusConflict
	}
	return 0
}

// respondError writes err as JSON. Unexpected errors are logged and hidden behind fallback.
func respondError(c *gin.Context, err error, fallback string) {
	if status := statusFor(err); status != 0 {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	middleware.RequestLogger(c).WithField("error", err.Error()).Error(fallback)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

// currentUserID returns the authenticated user id, writing 401 when it is missing
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(middleware.UserIDKey) // Get userID from context
	id, ok := v.(uint)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return id, true
}

// pathID parses a numeric path parameter, writing 400 when it is malformed
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(v), true
}
