package main

import (
	"local_marketplace/internal/config" // Custom import path (Config)
	"local_marketplace/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	conn, err := db.Open(cfg.DBDriver, cfg.DSN()) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("%v", err) // Log fatal error if migration fails
	}
}
