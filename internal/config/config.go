// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// MaxFeedPageSize matches the row cap applied by repository page queries.
const MaxFeedPageSize = 100

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	JWTTTLHours    int    `mapstructure:"JWT_TTL_HOURS"`
	DBDriver       string `mapstructure:"DB_DRIVER"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	DBReadHost     string `mapstructure:"DB_READ_HOST"`
	DBReadPort     string `mapstructure:"DB_READ_PORT"`
	DBReadUser     string `mapstructure:"DB_READ_USER"`
	DBReadPassword string `mapstructure:"DB_READ_PASSWORD"`
	DBSQLitePath   string `mapstructure:"DB_SQLITE_PATH"`
	DBSchemaMode   string `mapstructure:"DB_SCHEMA_MODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	MediaRoot        string `mapstructure:"MEDIA_ROOT"`
	PublicBaseURL    string `mapstructure:"PUBLIC_BASE_URL"`
	MediaMaxUploadMB int    `mapstructure:"MEDIA_MAX_UPLOAD_MB"`

	FeedPageSize       int `mapstructure:"FEED_PAGE_SIZE"`
	LikeToggleWindowMS int `mapstructure:"LIKE_TOGGLE_WINDOW_MS"`

	OTelEnabled      bool    `mapstructure:"OTEL_ENABLED"`
	OTelExporter     string  `mapstructure:"OTEL_EXPORTER"`
	OTelEndpoint     string  `mapstructure:"OTEL_ENDPOINT"`
	OTelSamplerRatio float64 `mapstructure:"OTEL_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("invalid profile-specific config 'config.%s.yml': %w", env, err)
			}
		} else {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_TTL_HOURS", 168)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "socialnova")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "user")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("DB_SQLITE_PATH", "file::memory:?cache=shared")
	viper.SetDefault("DB_SCHEMA_MODE", "auto")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "caption_suggestions=on")
	viper.SetDefault("MEDIA_ROOT", "/tmp/socialnova/media")
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8375")
	viper.SetDefault("MEDIA_MAX_UPLOAD_MB", 50)
	viper.SetDefault("FEED_PAGE_SIZE", 10)
	viper.SetDefault("LIKE_TOGGLE_WINDOW_MS", 400)
	viper.SetDefault("OTEL_ENABLED", false)
	viper.SetDefault("OTEL_EXPORTER", "stdout")
	viper.SetDefault("OTEL_ENDPOINT", "localhost:4318")
	viper.SetDefault("OTEL_SAMPLER_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// TokenTTL is the lifetime of issued access tokens.
func (c *Config) TokenTTL() time.Duration {
	if c.JWTTTLHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// LikeToggleWindow is the window in which repeated like toggles collapse.
func (c *Config) LikeToggleWindow() time.Duration {
	if c.LikeToggleWindowMS <= 0 {
		return 400 * time.Millisecond
	}
	return time.Duration(c.LikeToggleWindowMS) * time.Millisecond
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MediaMaxUploadMB) * 1024 * 1024
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}
	switch c.DBSchemaMode {
	case "", "auto", "sql":
	default:
		return fmt.Errorf("unsupported DB_SCHEMA_MODE %q (want auto or sql)", c.DBSchemaMode)
	}
	if c.FeedPageSize <= 0 || c.FeedPageSize > MaxFeedPageSize {
		return fmt.Errorf("FEED_PAGE_SIZE must be between 1 and %d", MaxFeedPageSize)
	}
	if c.MediaMaxUploadMB <= 0 {
		return errors.New("MEDIA_MAX_UPLOAD_MB must be positive")
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBDriver == "postgres" {
			if c.DBPassword == "password" || c.DBPassword == "" {
				return errors.New("a strong DB_PASSWORD is required in production")
			}
			if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
				return errors.New("DB_SSLMODE must enable TLS in production")
			}
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
