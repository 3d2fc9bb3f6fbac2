package database

import (
	"context"
	"fmt"
	"log/slog"

	"socialnova/internal/config"
	"socialnova/internal/middleware"

	"gorm.io/gorm"
)

const (
	SchemaModeSQL  = "sql"
	SchemaModeAuto = "auto"
)

// SchemaMode resolves the configured mode. Production defaults to versioned
// SQL migrations, everything else to AutoMigrate.
func SchemaMode(cfg *config.Config) string {
	if cfg.DBSchemaMode != "" {
		return cfg.DBSchemaMode
	}
	if cfg.IsProduction() {
		return SchemaModeSQL
	}
	return SchemaModeAuto
}

// ApplySchema brings the database schema up to date.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	mode := SchemaMode(cfg)
	switch mode {
	case SchemaModeSQL:
		if cfg.DBDriver == "sqlite" {
			return fmt.Errorf("DB_SCHEMA_MODE=sql requires the postgres driver")
		}
		middleware.Logger.InfoContext(ctx, "Running SQL migrations", slog.String("env", cfg.Env))
		if _, err := Migrate(db, DirectionUp, 0); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	case SchemaModeAuto:
		middleware.Logger.InfoContext(ctx, "Running GORM AutoMigrate", slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	default:
		return fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	return nil
}
