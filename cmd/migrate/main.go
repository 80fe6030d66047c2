// Command migrate runs goose against the configured mysql or postgres database.
//
//	migrate up | down | status | version | redo | up-to VERSION
package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"library-circulation/internal/config"
	"library-circulation/internal/infrastructure/db"
	"library-circulation/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	log := logger.New(logger.Options{ServiceName: "circulation-migrate", Format: "console"})
	ctx := context.Background()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
	log.Info(ctx, "migration done")
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: migrate <command> [args]")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DBDriver == config.DriverSQLite {
		return errors.New("sqlite schemas are created with AutoMigrate; set CIRCULATION_DB_AUTO_MIGRATE=true")
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), db.OptionsFromConfig(cfg, nil))
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return db.RunGoose(ctx, sqlDB, cfg.DBDriver, args[0], args[1:]...)
}
