package api

import (
	"net/http" // HTTP status codes

	"local_marketplace/internal/market" // Marketplace service

	"github.com/gin-gonic/gin" // Gin web framework
)

// IdempotencyKeyHeader lets clients retry request creation safely
const IdempotencyKeyHeader = "Idempotency-Key"

// CreateRequestRequest is a buyer's new item request
type CreateRequestRequest struct {
	ItemName string  `json:"item_name" binding:"required"` // Requested item
	Pincode  *string `json:"pincode"`                      // Defaults to the profile pincode
}

// CreateRequestHandler spends one credit, stores the request and notifies local sellers
func CreateRequestHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req CreateRequestRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		key := c.GetHeader(IdempotencyKeyHeader)
		if len(key) > 64 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key too long"})
			return
		}
		created, err := svc.CreateRequest(c.Request.Context(), market.CreateRequestInput{
			BuyerID:        userID,
			ItemName:       req.ItemName,
			Pincode:        req.Pincode,
			IdempotencyKey: key,
		})
		if err != nil {
			respondError(c, err, "Could not create request")
			return
		}
		status := http.StatusCreated
		if created.Replayed {
			status = http.StatusOK // Same key seen before, nothing new was written
		}
		c.JSON(status, created)
	}
}

// ListRequestsHandler returns the buyer's requests with response counts
func ListRequestsHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		list, cached, err := svc.ListRequestsForBuyer(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "Could not load requests")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"requests": list,   // Newest first
			"cached":   cached, // Indicate response is from cache
		})
	}
}

// GetRequestHandler returns one of the buyer's requests with seller responses
func GetRequestHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		orderID, ok := pathID(c, "id")
		if !ok {
			return
		}
		detail, err := svc.GetRequest(c.Request.Context(), userID, orderID)
		if err != nil {
			respondError(c, err, "Could not load request")
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// GetSellerHandler returns a seller's public shop details
func GetSellerHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := pathID(c, "id")
		if !ok {
			return
		}
		shop, err := svc.SellerDetails(c.Request.Context(), sellerID)
		if err != nil {
			respondError(c, err, "Could not load seller")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"shop_name":    shop.ShopName,
			"shop_address": shop.ShopAddress,
			"notes":        shop.Notes,
			"category":     shop.Category,
			"pincode":      shop.Pincode,
		})
	}
}
