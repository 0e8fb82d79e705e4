package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"local_marketplace/internal/market" // Marketplace service

	"github.com/gin-gonic/gin" // Gin web framework
)

// RespondRequest is a seller's acceptance of a request
type RespondRequest struct {
	Notes string `json:"notes"` // Optional note to the buyer
}

// SaleRequest announces a sale to local buyers
type SaleRequest struct {
	Items string `json:"items" binding:"required"` // Comma separated items on sale
}

// InboxHandler lists requests in the seller's pincode split into incoming and accepted
func InboxHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		inbox, err := svc.SellerInbox(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "Could not load requests")
			return
		}
		c.JSON(http.StatusOK, inbox)
	}
}

// RespondHandler records the seller's response to a request
func RespondHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		orderID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req RespondRequest
		// Empty body means no notes
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
		}
		resp, err := svc.RecordResponse(c.Request.Context(), orderID, userID, req.Notes)
		if err != nil {
			respondError(c, err, "Could not record response")
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": resp})
	}
}

// SaleHandler broadcasts a sale to buyers in the seller's pincode
func SaleHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req SaleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		res, err := svc.BroadcastSale(c.Request.Context(), userID, req.Items)
		if errors.Is(err, market.ErrNoBuyersMatched) {
			// Nothing was sent and the credit is kept
			c.JSON(http.StatusOK, gin.H{"sent": 0, "message": err.Error()})
			return
		}
		if err != nil {
			respondError(c, err, "Could not broadcast sale")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"sent":                res.BuyersNotified,
			"pending_sale_credit": res.PendingSaleCredit,
		})
	}
}
