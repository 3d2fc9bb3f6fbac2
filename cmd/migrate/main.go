// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"socialnova/internal/config"
	"socialnova/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|down|version|auto> [steps]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	steps := 0
	if flag.NArg() > 1 {
		steps, err = strconv.Atoi(flag.Arg(1))
		if err != nil || steps < 0 {
			return fmt.Errorf("invalid steps %q", flag.Arg(1))
		}
	}

	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case database.DirectionUp, database.DirectionDown:
		if cfg.DBDriver == "sqlite" {
			return fmt.Errorf("sql migrations require the postgres driver")
		}
		version, err := database.Migrate(db, cmd, steps)
		if err != nil {
			return err
		}
		log.Printf("schema at version %d", version)
	case "version":
		if cfg.DBDriver == "sqlite" {
			return fmt.Errorf("sql migrations require the postgres driver")
		}
		m, err := database.NewMigrator(db)
		if err != nil {
			return err
		}
		version, dirty, err := database.SchemaVersion(m)
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		log.Printf("version=%d dirty=%t", version, dirty)
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(context.Background(), db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	default:
		return usage()
	}

	return nil
}
