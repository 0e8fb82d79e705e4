package api

import (
	"net/http" // HTTP status codes

	"local_marketplace/internal/push" // Push token registry

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// PushTokenRequest registers a device token
type PushTokenRequest struct {
	Token string `json:"token" binding:"required"` // Expo push token
}

// RegisterPushTokenHandler stores the caller's device token, replacing any previous one
func RegisterPushTokenHandler(reg *push.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req PushTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := reg.Save(c.Request.Context(), userID, req.Token); err != nil {
			respondError(c, err, "Could not save push token")
			return
		}
		logrus.WithField("user_id", userID).Info("Push token registered")
		c.JSON(http.StatusOK, gin.H{"message": "Push token saved"})
	}
}

// DeletePushTokenHandler forgets the caller's device token
func DeletePushTokenHandler(reg *push.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		if err := reg.Remove(c.Request.Context(), userID); err != nil {
			respondError(c, err, "Could not remove push token")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Push token removed"})
	}
}
