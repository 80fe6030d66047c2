// Command sweeper runs one overdue pass and exits; schedule it from cron.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"library-circulation/internal/adapter/repository/mysql"
	"library-circulation/internal/config"
	"library-circulation/internal/infrastructure/db"
	"library-circulation/internal/metrics"
	"library-circulation/internal/usecase/overdue"
	"library-circulation/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Options{ServiceName: "circulation-sweeper"})
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Error(context.Background(), "invalid configuration", err)
		os.Exit(1)
	}
	log = logger.New(logger.Options{
		ServiceName: "circulation-sweeper",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "overdue sweep finished with errors", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), db.OptionsFromConfig(cfg, log.Zerolog()))
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	u := overdue.NewUsecase(mysql.NewGormUoW(gdb), log, metrics.New(prometheus.NewRegistry()))
	res, err := u.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	log.Info(log.WithField(ctx, "marked", res.Marked), "overdue sweep done")
	return nil
}
