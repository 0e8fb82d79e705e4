package main

import (
	"context" // Run deadline
	"flag"    // Command line flags
	"time"    // Durations

	"local_marketplace/internal/config" // Custom package for configuration
	"local_marketplace/internal/db"     // Database connection
	"local_marketplace/internal/push"   // Push delivery

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Drains pending push logs once and exits; meant to be run from cron
func main() {
	batch := flag.Int("batch", push.DefaultBatchSize, "maximum pending logs to process")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run deadline")
	flag.Parse()

	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	conn, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sender := push.NewExpoSender(cfg.PushEndpoint, time.Duration(cfg.PushTimeoutSeconds)*time.Second)
	d := push.NewDispatcher(conn, push.NewRegistry(conn), sender, *batch)
	sum, err := d.ProcessPending(ctx)
	if err != nil {
		logrus.Fatalf("push run failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"processed": sum.Processed,
		"failed":    sum.Failed,
		"total":     sum.Total,
	}).Info("Push worker finished")
}
