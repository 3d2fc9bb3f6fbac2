// Package bootstrap wires the process-wide runtime shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"socialnova/internal/cache"
	"socialnova/internal/config"
	"socialnova/internal/database"
	"socialnova/internal/middleware"
	"socialnova/internal/observability"
	"socialnova/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedSamples loads the embedded sample data in development.
	SeedSamples bool
}

// Runtime holds the connections a command needs and how to release them.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime configures logging and tracing, connects to the database and
// Redis, and optionally seeds sample data. Redis is optional; a nil client
// means in-process fallbacks are used.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	middleware.SetupLogger(cfg.Env, os.Stdout)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "socialnova-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.OTelEnabled,
		Exporter:       cfg.OTelExporter,
		OTLPEndpoint:   cfg.OTelEndpoint,
		SamplerRatio:   cfg.OTelSamplerRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()
	if rdb == nil {
		middleware.Logger.Warn("Redis unavailable, running single-instance")
	}

	if opts.SeedSamples && cfg.Env == "development" {
		if err := seed.Samples(db, false); err != nil {
			return nil, fmt.Errorf("seed samples: %w", err)
		}
		middleware.Logger.Info("Sample data ensured", slog.String("password", seed.SamplePassword))
	}

	return &Runtime{DB: db, Redis: rdb, shutdownTracing: shutdownTracing}, nil
}

// Close flushes traces. The database and Redis are closed by their owner.
func (r *Runtime) Close(ctx context.Context) error {
	if r.shutdownTracing == nil {
		return nil
	}
	return r.shutdownTracing(ctx)
}
