package config

import (
	"fmt"
	"os"
	"strconv"
)

// Store selects the persistence backend
const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Persistence backend: memory or dynamodb
	Store string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - listing and username lookups
	GSI2IndexName string // GSI2 - author and comment-ID lookups
	EventBusName  string

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Rate limiting (requests per minute)
	IPRateLimit   int
	UserRateLimit int

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		Store: getEnv("STORE", StoreMemory),

		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "ideaboard"),
		IndexName:     getEnv("INDEX_NAME", "ListingIndex"),
		GSI2IndexName: getEnv("GSI2_INDEX_NAME", "AuthorIndex"),
		EventBusName:  getEnv("EVENT_BUS_NAME", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "ideaboard"),

		IPRateLimit:   getEnvInt("IP_RATE_LIMIT", 120),
		UserRateLimit: getEnvInt("USER_RATE_LIMIT", 60),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Store != StoreMemory && c.Store != StoreDynamoDB {
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreMemory, StoreDynamoDB, c.Store)
	}

	if c.IPRateLimit < 1 {
		return fmt.Errorf("IP_RATE_LIMIT must be positive, got %d", c.IPRateLimit)
	}
	if c.UserRateLimit < 1 {
		return fmt.Errorf("USER_RATE_LIMIT must be positive, got %d", c.UserRateLimit)
	}

	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.Store == StoreDynamoDB && c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
