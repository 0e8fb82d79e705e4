package db

import (
	"fmt" // Error wrapping

	"local_marketplace/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // Postgres driver for GORM (pgx)
	"gorm.io/gorm"               // GORM ORM library
)

// Open connects to the database selected by driver ("mysql" or "postgres")
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector // Driver-specific dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn) // Postgres via pgx
	case "mysql", "":
		dialector = mysql.Open(dsn) // MySQL is the default
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(domain.All()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
