package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ServerAddress: ":8080",
		Environment:   "development",
		Store:         StoreMemory,
		JWTIssuer:     "ideaboard",
		IPRateLimit:   120,
		UserRateLimit: 60,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	cfg := validConfig()
	cfg.Store = "postgres"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveRateLimits(t *testing.T) {
	cfg := validConfig()
	cfg.IPRateLimit = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.UserRateLimit = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateProductionRequiresSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "a-real-secret"
	assert.NoError(t, cfg.Validate())
}
