package config

import (
	"fmt"     // For DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// DefaultPushEndpoint is the Expo push API used when PUSH_ENDPOINT is unset
const DefaultPushEndpoint = "https://exp.host/--/api/v2/push/send"

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBDriver   string // Database driver: mysql or postgres
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	DBSSLMode  string // Postgres sslmode
	JWTSecret  string // JWT secret key
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	PushEndpoint       string // Push gateway URL
	PushTimeoutSeconds int    // Push gateway HTTP timeout

	InitialRequestCredits int // Request credits granted at signup
	InitialSaleCredits    int // Sale credits granted at seller setup
	CacheTTLSeconds       int // Redis cache TTL
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),     // Application port
		DBDriver:   getEnv("DB_DRIVER", "mysql"),   // Database driver
		DBUser:     os.Getenv("DB_USER"),           // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:     getEnv("DB_HOST", "localhost"), // Database host
		DBPort:     os.Getenv("DB_PORT"),           // Database port
		DBName:     os.Getenv("DB_NAME"),           // Database name
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		JWTSecret:  os.Getenv("JWT_SECRET"), // JWT secret key
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:  os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:    getEnvInt("REDIS_DB", 0),       // Redis database number
		IsProd:     os.Getenv("IS_PROD") == "true", // Is production environment

		PushEndpoint:       getEnv("PUSH_ENDPOINT", DefaultPushEndpoint),
		PushTimeoutSeconds: getEnvInt("PUSH_TIMEOUT_SECONDS", 10),

		InitialRequestCredits: getEnvInt("INITIAL_REQUEST_CREDITS", 30),
		InitialSaleCredits:    getEnvInt("INITIAL_SALE_CREDITS", 1),
		CacheTTLSeconds:       getEnvInt("CACHE_TTL_SECONDS", 60),
	}
}

// DSN builds the driver-specific data source name
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		port := c.DBPort // Postgres default port when unset
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port, c.DBSSLMode)
	}
	port := c.DBPort // MySQL default port when unset
	if port == "" {
		port = "3306"
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
}

// getEnv returns the value of key or def when it is empty
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt parses key as an int, falling back to def on empty or invalid values
func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
