package api

import (
	"net/http" // HTTP status codes
	"time"     // Time durations

	"local_marketplace/internal/market"     // Marketplace service
	"local_marketplace/internal/middleware" // Custom middleware
	"local_marketplace/internal/push"       // Push components

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the components the HTTP layer is built from
type Deps struct {
	DB             *gorm.DB
	Redis          *redis.Client // Optional; nil disables caching
	Service        *market.Service
	Registry       *push.Registry
	Dispatcher     *push.Dispatcher
	JWTSecret      string
	InitialCredits int           // Request credits given at signup
	CacheTTL       time.Duration // Admin list cache lifetime
}

// RegisterRoutes mounts every marketplace route on r
func RegisterRoutes(r *gin.Engine, d Deps) {
	auth := middleware.JWTAuthMiddleware(d.JWTSecret) // Shared JWT guard

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Auth routes
	r.POST("/user", RegisterHandler(d.DB, d.InitialCredits)) // Registration endpoint
	r.POST("/user/login", LoginHandler(d.DB, d.JWTSecret))   // Login endpoint

	// Profile routes (any authenticated user)
	profile := r.Group("/profile", auth)
	profile.GET("", GetProfileHandler(d.Service))
	profile.PUT("/role", ChooseRoleHandler(d.Service))
	profile.POST("/seller", SetupSellerHandler(d.Service))
	profile.PUT("/pincode", UpdatePincodeHandler(d.Service))
	profile.PUT("/password", ChangePasswordHandler(d.DB))

	// Push token routes
	pushGroup := r.Group("/push", auth)
	pushGroup.POST("/token", RegisterPushTokenHandler(d.Registry))
	pushGroup.DELETE("/token", DeletePushTokenHandler(d.Registry))

	// Buyer routes
	buyer := r.Group("/buyer", auth, middleware.BuyerOnlyMiddleware(d.DB))
	buyer.POST("/requests", CreateRequestHandler(d.Service))
	buyer.GET("/requests", ListRequestsHandler(d.Service))
	buyer.GET("/requests/:id", GetRequestHandler(d.Service))
	buyer.GET("/sellers/:id", GetSellerHandler(d.Service))

	// Seller routes
	seller := r.Group("/seller", auth, middleware.SellerOnlyMiddleware(d.DB))
	seller.GET("/requests", InboxHandler(d.Service))
	seller.POST("/requests/:id/response", RespondHandler(d.Service))
	seller.POST("/sale", SaleHandler(d.Service))

	// Notification routes
	notes := r.Group("/notifications", auth)
	notes.GET("", ListNotificationsHandler(d.Service))
	notes.GET("/unread-count", UnreadCountHandler(d.Service))
	notes.POST("/read-all", MarkAllReadHandler(d.Service))
	notes.POST("/:id/read", MarkReadHandler(d.Service))

	// Admin routes (protected, admin only)
	admin := r.Group("/admin", auth, middleware.AdminOnlyMiddleware(d.DB))
	admin.GET("/users", ListUsersHandler(d.DB, d.Redis, d.CacheTTL))
	admin.POST("/users/:id/credits", GrantCreditsHandler(d.Service, d.Redis))
	admin.POST("/sellers/:id/sale-credits", GrantSaleCreditsHandler(d.Service))
	if d.Dispatcher != nil {
		admin.POST("/push/process", ProcessPushHandler(d.Dispatcher))
	}
}
