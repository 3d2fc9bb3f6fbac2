package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:              "development",
		Port:             "8375",
		JWTSecret:        "secure-secret-at-least-32-chars-long",
		DBDriver:         "postgres",
		DBPassword:       "secure-password",
		DBSSLMode:        "require",
		FeedPageSize:     10,
		MediaMaxUploadMB: 50,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with disable SSL mode", "prod", "disable", true},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing port", func(c *Config) { c.Port = "" }, "PORT is required"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "unsupported DB_DRIVER"},
		{"unknown schema mode", func(c *Config) { c.DBSchemaMode = "magic" }, "unsupported DB_SCHEMA_MODE"},
		{"zero page size", func(c *Config) { c.FeedPageSize = 0 }, "FEED_PAGE_SIZE"},
		{"page size above repository cap", func(c *Config) { c.FeedPageSize = MaxFeedPageSize + 1 }, "between 1 and 100"},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, "changed from the default"},
		{"short secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, "at least 32 characters"},
		{"sqlite in production skips db password", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "sqlite"
			c.DBPassword = ""
			c.DBSSLMode = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	c := &Config{}
	assert.Equal(t, 168*time.Hour, c.TokenTTL())
	assert.Equal(t, 400*time.Millisecond, c.LikeToggleWindow())

	c.JWTTTLHours = 2
	c.LikeToggleWindowMS = 250
	c.MediaMaxUploadMB = 3
	assert.Equal(t, 2*time.Hour, c.TokenTTL())
	assert.Equal(t, 250*time.Millisecond, c.LikeToggleWindow())
	assert.Equal(t, int64(3*1024*1024), c.MaxUploadBytes())
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("PUBLIC_BASE_URL", "http://cdn.local/")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "http://cdn.local", c.PublicBaseURL)
	assert.Equal(t, 10, c.FeedPageSize)
	assert.Equal(t, 400, c.LikeToggleWindowMS)
	assert.Equal(t, "caption_suggestions=on", c.FeatureFlags)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("FEED_PAGE_SIZE", "25")
	t.Setenv("PORT", "9999")
	_ = os.Unsetenv("DB_DRIVER")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 25, c.FeedPageSize)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, "postgres", c.DBDriver)
}
