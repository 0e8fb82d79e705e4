package api

import (
	"net/http" // HTTP status codes

	"local_marketplace/internal/market" // Marketplace service

	"github.com/gin-gonic/gin" // Gin web framework
)

// RoleRequest picks the account side
type RoleRequest struct {
	IsSeller *bool `json:"is_seller" binding:"required"` // true: seller, false: buyer
}

// SellerSetupRequest carries the shop fields
type SellerSetupRequest struct {
	ShopName    string `json:"shop_name" binding:"required"`
	ShopAddress string `json:"shop_address"`
	Notes       string `json:"notes"`
}

// PincodeRequest changes the user's locality
type PincodeRequest struct {
	Pincode string `json:"pincode" binding:"required"`
}

// ChooseRoleHandler records the user's one-time buyer or seller choice
func ChooseRoleHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req RoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := svc.ChooseRole(c.Request.Context(), userID, *req.IsSeller)
		if err != nil {
			respondError(c, err, "Failed to set role")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// SetupSellerHandler creates or updates the seller's shop
func SetupSellerHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req SellerSetupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		shop, err := svc.SetupSeller(c.Request.Context(), userID, market.ShopInput{
			ShopName:    req.ShopName,
			ShopAddress: req.ShopAddress,
			Notes:       req.Notes,
		})
		if err != nil {
			respondError(c, err, "Failed to save seller details")
			return
		}
		c.JSON(http.StatusOK, gin.H{"shop": shop})
	}
}

// GetProfileHandler returns the caller's account, credits and shop
func GetProfileHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		profile, err := svc.GetProfile(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "Failed to load profile")
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UpdatePincodeHandler moves the caller to another locality
func UpdatePincodeHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req PincodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := svc.UpdatePincode(c.Request.Context(), userID, req.Pincode); err != nil {
			respondError(c, err, "Failed to update pincode")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Pincode updated"})
	}
}
