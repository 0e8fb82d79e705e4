package middleware

import (
	"net/http" // HTTP status codes

	"local_marketplace/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// AdminOnlyMiddleware checks the user's role from the database on each request
func AdminOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return requireUser(db, func(u *domain.User) bool { return u.Role == domain.RoleAdmin }, "Admin access required")
}

// BuyerOnlyMiddleware lets through users who chose the buyer role
func BuyerOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return requireUser(db, (*domain.User).Buyer, "Buyer account required")
}

// SellerOnlyMiddleware lets through users who chose the seller role
func SellerOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return requireUser(db, (*domain.User).Seller, "Seller account required")
}

// requireUser loads the authenticated user and aborts with 403 unless allow accepts it
func requireUser(db *gorm.DB, allow func(*domain.User) bool, denied string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(UserIDKey) // Get userID from context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			// If user not found or any error, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": denied})
			return
		}
		if !allow(&user) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": denied})
			return
		}
		c.Next()
	}
}
