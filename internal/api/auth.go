package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"local_marketplace/internal/domain" // Importing domain models
	"local_marketplace/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the signup payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
	Pincode  string `json:"pincode" binding:"required"`  // Six digit locality
}

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// ChangePasswordRequest is the change password payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// AuthResponse carries an issued access token
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// RegisterHandler creates an account with the configured starting request credits
func RegisterHandler(db *gorm.DB, initialCredits int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate username, password and pincode
		if !utils.IsValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-30 letters, digits or underscores"})
			return
		}
		if !utils.IsValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-64 characters"})
			return
		}
		pincode := utils.NormalizePincode(req.Pincode)
		if !utils.IsValidPincode(pincode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Pincode must contain exactly 6 digits"})
			return
		}
		username := strings.ToLower(req.Username) // Lowercase username to ensure uniqueness
		var taken int64
		if err := db.Model(&domain.User{}).Where("username = ?", username).Count(&taken).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}
		if taken > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		}
		hash, err := utils.HashPassword(req.Password) // Hash the password
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{
			Username:              username,
			Password:              hash,
			Pincode:               pincode,
			Role:                  domain.RoleUser,
			AvailableRequestCount: initialCredits,
		}
		if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
			// A concurrent signup may have taken the name between the check and the insert
			if usernameTaken(db, username) {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"username": username,
				"error":    err.Error(),
			}).Error("Register failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"username": user.Username,
			"pincode":  user.Pincode,
		}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

// usernameTaken reports whether username exists; lookup errors count as not taken
func usernameTaken(db *gorm.DB, username string) bool {
	var n int64
	if err := db.Model(&domain.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return false
	}
	return n > 0
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		err := db.WithContext(c.Request.Context()).
			Where("username = ?", strings.ToLower(strings.TrimSpace(req.Username))).
			First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if !utils.CheckPassword(user.Password, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, jwtSecret) // Generate JWT token
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// ChangePasswordHandler replaces the password after verifying the current one
func ChangePasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !utils.IsValidPassword(req.NewPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-64 characters"})
			return
		}
		var user domain.User
		if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if !utils.CheckPassword(user.Password, req.CurrentPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
			return
		}
		hash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		if err := db.WithContext(c.Request.Context()).Model(&user).Update("password", hash).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
			return
		}
		logrus.WithField("user_id", userID).Info("Password changed")
		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}
