package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"socialnova/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		Env:          "test",
		DBDriver:     "sqlite",
		DBSQLitePath: ":memory:",
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn, err := PostgresDSN("localhost", "5432", "user", "secret", "socialnova", "")
	require.NoError(t, err)
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "dbname=socialnova")

	_, err = PostgresDSN("localhost", "not-a-port", "user", "secret", "socialnova", "disable")
	assert.Error(t, err)
}

func TestSchemaMode(t *testing.T) {
	tests := []struct {
		name string
		env  string
		mode string
		want string
	}{
		{"development defaults to auto", "development", "", SchemaModeAuto},
		{"production defaults to sql", "production", "", SchemaModeSQL},
		{"explicit mode wins", "production", "auto", SchemaModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Env: tt.env, DBSchemaMode: tt.mode}
			assert.Equal(t, tt.want, SchemaMode(cfg))
		})
	}
}

func TestOpenSQLiteAndAutoMigrate(t *testing.T) {
	cfg := sqliteConfig()
	db, err := Open(cfg)
	require.NoError(t, err)

	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	for _, table := range []string{"users", "posts", "likes", "saved_posts", "follows", "comments", "realms", "realm_memberships"} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestApplySchema_SQLModeRequiresPostgres(t *testing.T) {
	cfg := sqliteConfig()
	cfg.DBSchemaMode = SchemaModeSQL
	db, err := Open(cfg)
	require.NoError(t, err)

	err = ApplySchema(context.Background(), db, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires the postgres driver")
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case bytes.HasSuffix([]byte(e.Name()), []byte(".up.sql")):
			ups++
		case bytes.HasSuffix([]byte(e.Name()), []byte(".down.sql")):
			downs++
		}
	}
	assert.Positive(t, ups)
	assert.Equal(t, ups, downs)
}

func TestGormLoggerTrace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "record not found should not be logged")

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 2", 0 }, errors.New("boom"))
	assert.Contains(t, buf.String(), "GORM query error")

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 3", 0 }, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	silent := l.LogMode(logger.Silent)
	silent.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 4", 0 }, nil)
	assert.Empty(t, buf.String())
}
