package testutil

import (
	"testing"

	"local_marketplace/internal/db"
	"local_marketplace/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB opens a private in-memory SQLite database and applies migrations.
// The connection pool is pinned to one connection so every query sees the same memory DB.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open test db")
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// OpenTestRedis starts a miniredis server and returns a client for it.
func OpenTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

// UserOpt tweaks a seeded user.
type UserOpt func(*domain.User)

// Seller marks the seeded user as a seller.
func Seller(u *domain.User) { v := true; u.IsSeller = &v }

// Buyer marks the seeded user as a buyer.
func Buyer(u *domain.User) { v := false; u.IsSeller = &v }

// Admin gives the seeded user the admin role.
func Admin(u *domain.User) { u.Role = domain.RoleAdmin }

// Credits sets the available request credits of the seeded user.
func Credits(n int) UserOpt {
	return func(u *domain.User) { u.AvailableRequestCount = n }
}

// CreateUser inserts a user with the given username and pincode.
func CreateUser(t *testing.T, gdb *gorm.DB, username, pincode string, opts ...UserOpt) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:              username,
		Password:              "x",
		Pincode:               pincode,
		Role:                  domain.RoleUser,
		AvailableRequestCount: 30,
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

// CreateSellerDetails inserts shop details for a seller.
func CreateSellerDetails(t *testing.T, gdb *gorm.DB, userID uint, pincode string, saleCredit int) *domain.SellerDetails {
	t.Helper()
	d := &domain.SellerDetails{
		UserID:            userID,
		ShopName:          "Shop",
		Category:          domain.CategoryMedical,
		Pincode:           pincode,
		PendingSaleCredit: saleCredit,
	}
	require.NoError(t, gdb.Create(d).Error)
	return d
}
