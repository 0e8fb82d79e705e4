package api

import (
	"net/http" // HTTP status codes

	"local_marketplace/internal/market" // Marketplace service

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListNotificationsHandler returns the caller's notifications, newest first
func ListNotificationsHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		list, err := svc.Notifier.List(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "Could not load notifications")
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": list})
	}
}

// UnreadCountHandler returns how many notifications the caller has not read
func UnreadCountHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		n, err := svc.Notifier.UnreadCount(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "Could not count notifications")
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread": n})
	}
}

// MarkReadHandler marks one of the caller's notifications read
func MarkReadHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := svc.Notifier.MarkRead(c.Request.Context(), userID, id); err != nil {
			respondError(c, err, "Could not update notification")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
	}
}

// MarkAllReadHandler marks every unread notification of the caller read
func MarkAllReadHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		n, err := svc.Notifier.MarkAllRead(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "Could not update notifications")
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": n})
	}
}
