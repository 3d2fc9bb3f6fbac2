package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"socialnova/internal/middleware"

	"github.com/golang-migrate/migrate/v4"
	migratep "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration directions accepted by Migrate.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// NewMigrator builds a golang-migrate instance over the embedded SQL files
// and the given postgres connection.
func NewMigrator(db *gorm.DB) (*migrate.Migrate, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := migratep.WithInstance(sqlDB, &migratep.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create database migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// Migrate moves the schema in direction. steps <= 0 means all the way.
// It returns the resulting version (0 when no migration is applied).
func Migrate(db *gorm.DB, direction string, steps int) (uint, error) {
	m, err := NewMigrator(db)
	if err != nil {
		return 0, err
	}

	switch {
	case direction == DirectionUp && steps <= 0:
		err = m.Up()
	case direction == DirectionUp:
		err = m.Steps(steps)
	case direction == DirectionDown && steps <= 0:
		err = m.Down()
	case direction == DirectionDown:
		err = m.Steps(-steps)
	default:
		return 0, fmt.Errorf("unknown migration direction %q", direction)
	}

	switch {
	case err == nil:
		middleware.Logger.Info("database was migrated", slog.String("direction", direction))
	case errors.Is(err, migrate.ErrNoChange):
		middleware.Logger.Info("database is up-to-date")
	default:
		return 0, fmt.Errorf("failed to migrate db: %w", err)
	}

	version, _, err := SchemaVersion(m)
	return version, err
}

// SchemaVersion reports the applied version and whether it is dirty.
func SchemaVersion(m *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
