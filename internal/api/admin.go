package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"local_marketplace/internal/domain" // Importing domain models
	"local_marketplace/internal/market" // Marketplace service
	"local_marketplace/internal/push"   // Push dispatcher
	"local_marketplace/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// adminUsersCachePrefix prefixes every cached page of the admin user list
const adminUsersCachePrefix = "admin:users:"

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID                    uint   `json:"id"`                      // User ID
	Username              string `json:"username"`                // Username
	Role                  string `json:"role"`                    // User role
	Pincode               string `json:"pincode"`                 // Locality
	IsSeller              *bool  `json:"is_seller"`               // Chosen side, null when undecided
	AvailableRequestCount int    `json:"available_request_count"` // Remaining request credits
	UsedCreditCount       int    `json:"used_credit_count"`       // Consumed request credits
}

// userPage is one cached page of the admin user list
type userPage struct {
	Users      []UserAdminResponse `json:"users"`       // List of users
	Page       int                 `json:"page"`        // Current page
	PageSize   int                 `json:"page_size"`   // Page size
	Total      int64               `json:"total"`       // Total number of users
	TotalPages int                 `json:"total_pages"` // Total pages
	Cached     bool                `json:"cached"`      // Indicate response is from cache
}

// AmountRequest carries a credit grant
type AmountRequest struct {
	Amount int `json:"amount" binding:"required"` // Credits to add, must be positive
}

// ListUsersHandler returns all users with their credit counters
func ListUsersHandler(db *gorm.DB, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page := 1      // Default page number
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		// Cache key from the effective pagination parameters
		cacheKey := adminUsersCachePrefix + "page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached userPage
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		offset := (page - 1) * pageSize // Calculate offset for pagination
		var total int64                 // Total user count
		if err := db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		var users []domain.User // Slice to hold users
		if err := db.WithContext(ctx).Order("id asc").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		resp := userPage{
			Users:      make([]UserAdminResponse, len(users)),
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: (int(total) + pageSize - 1) / pageSize, // Calculate total pages
		}
		// Map users to response format
		for i, u := range users {
			resp.Users[i] = UserAdminResponse{
				ID:                    u.ID,
				Username:              u.Username,
				Role:                  u.Role,
				Pincode:               u.Pincode,
				IsSeller:              u.IsSeller,
				AvailableRequestCount: u.AvailableRequestCount,
				UsedCreditCount:       u.UsedCreditCount,
			}
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, ttl) // Cache the response for future requests
		c.JSON(http.StatusOK, resp)
	}
}

// GrantCreditsHandler adds request credits to a user
func GrantCreditsHandler(svc *market.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req AmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		if err := svc.Ledger.GrantRequestCredits(ctx, userID, req.Amount); err != nil {
			respondError(c, err, "Could not grant credits")
			return
		}
		balance, err := svc.Ledger.Balance(ctx, userID)
		if err != nil {
			respondError(c, err, "Could not load credits")
			return
		}
		_ = utils.DeleteCachePrefix(ctx, rdb, adminUsersCachePrefix) // Counters changed on every cached page
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"amount":  req.Amount,
		}).Info("Request credits granted")
		c.JSON(http.StatusOK, gin.H{"credits": balance})
	}
}

// GrantSaleCreditsHandler adds sale broadcast credits to a seller
func GrantSaleCreditsHandler(svc *market.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req AmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		if err := svc.Ledger.GrantSaleCredits(ctx, sellerID, req.Amount); err != nil {
			respondError(c, err, "Could not grant sale credits")
			return
		}
		shop, err := svc.SellerDetails(ctx, sellerID)
		if err != nil {
			respondError(c, err, "Could not load seller")
			return
		}
		logrus.WithFields(logrus.Fields{
			"seller_id": sellerID,
			"amount":    req.Amount,
		}).Info("Sale credits granted")
		c.JSON(http.StatusOK, gin.H{"pending_sale_credit": shop.PendingSaleCredit})
	}
}

// ProcessPushHandler drains one batch of pending push deliveries
func ProcessPushHandler(d *push.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := d.ProcessPending(c.Request.Context())
		if err != nil {
			respondError(c, err, "Could not process push logs")
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}
