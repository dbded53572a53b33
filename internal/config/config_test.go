package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() *Config {
	return &Config{
		Port:               "8420",
		Env:                "development",
		AccessTokenSecret:  "test-access-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenSecret: "test-refresh-secret",
		RefreshTokenExpiry: 240 * time.Hour,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid development config", func(t *testing.T) {
		assert.NoError(t, validTestConfig().Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		c := validTestConfig()
		c.Port = ""
		assert.Error(t, c.Validate())
	})

	t.Run("missing secrets", func(t *testing.T) {
		c := validTestConfig()
		c.AccessTokenSecret = ""
		assert.Error(t, c.Validate())

		c = validTestConfig()
		c.RefreshTokenSecret = ""
		assert.Error(t, c.Validate())
	})

	t.Run("identical secrets are rejected", func(t *testing.T) {
		c := validTestConfig()
		c.RefreshTokenSecret = c.AccessTokenSecret
		assert.Error(t, c.Validate())
	})

	t.Run("non-positive expiries are rejected", func(t *testing.T) {
		c := validTestConfig()
		c.AccessTokenExpiry = 0
		assert.Error(t, c.Validate())

		c = validTestConfig()
		c.RefreshTokenExpiry = -time.Hour
		assert.Error(t, c.Validate())
	})

	t.Run("access expiry must be shorter than refresh expiry", func(t *testing.T) {
		c := validTestConfig()
		c.AccessTokenExpiry = 300 * time.Hour
		assert.Error(t, c.Validate())
	})
}

func TestConfig_ValidateProduction(t *testing.T) {
	productionConfig := func() *Config {
		c := validTestConfig()
		c.Env = "production"
		c.AccessTokenSecret = "production-access-secret-at-least-32-chars"
		c.RefreshTokenSecret = "production-refresh-secret-at-least-32-chars"
		c.DBPassword = "strong-db-password"
		c.DBSSLMode = "require"
		c.MediaAccessKey = "AKIA_TEST"
		c.MediaSecretKey = "media-secret"
		return c
	}

	t.Run("valid production config", func(t *testing.T) {
		assert.NoError(t, productionConfig().Validate())
	})

	t.Run("default secrets are rejected", func(t *testing.T) {
		c := productionConfig()
		c.AccessTokenSecret = "dev-access-secret-change-in-production"
		assert.Error(t, c.Validate())
	})

	t.Run("short secrets are rejected", func(t *testing.T) {
		c := productionConfig()
		c.RefreshTokenSecret = "short"
		assert.Error(t, c.Validate())
	})

	t.Run("weak db password is rejected", func(t *testing.T) {
		c := productionConfig()
		c.DBPassword = "password"
		assert.Error(t, c.Validate())

		c = productionConfig()
		c.DBPassword = ""
		assert.Error(t, c.Validate())
	})

	t.Run("media credentials are required", func(t *testing.T) {
		c := productionConfig()
		c.MediaSecretKey = ""
		assert.Error(t, c.Validate())
	})

	t.Run("prod alias gets the same checks", func(t *testing.T) {
		c := productionConfig()
		c.Env = "prod"
		c.AccessTokenSecret = "short"
		assert.Error(t, c.Validate())
	})
}
