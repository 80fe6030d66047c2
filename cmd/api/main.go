package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpadp "library-circulation/internal/adapter/http"
	mw "library-circulation/internal/adapter/middleware"
	"library-circulation/internal/adapter/repository/mysql"
	"library-circulation/internal/config"
	"library-circulation/internal/infrastructure/cache"
	"library-circulation/internal/infrastructure/db"
	"library-circulation/internal/metrics"
	"library-circulation/internal/usecase/borrow"
	"library-circulation/internal/usecase/fine"
	"library-circulation/internal/usecase/loan"
	"library-circulation/internal/usecase/registry"
	"library-circulation/internal/usecase/returns"
	"library-circulation/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logger.New(logger.Options{ServiceName: "circulation-api"}).Error(context.Background(), "invalid configuration", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		ServiceName: "circulation-api",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "api stopped", err)
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

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, gdb); err != nil {
			return err
		}
		log.Info(log.WithField(ctx, "driver", cfg.DBDriver), "schema migrated")
	}

	rdb, err := cache.OpenRedis(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tx := mysql.NewGormUoW(gdb)
	fines := fine.NewUsecase(tx, log, m)
	handlers := httpadp.Handlers{
		Health: httpadp.NewHandler(
			httpadp.Check{Name: "db", Ping: sqlDB.PingContext},
			httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		),
		Copies: httpadp.NewCopyHandler(registry.NewUsecase(tx, log, m)),
		Loans:  httpadp.NewLoanHandler(loan.NewUsecase(tx, log, m)),
		Borrow: httpadp.NewBorrowHandler(borrow.NewUsecase(tx, log, m), returns.NewUsecase(tx, fines, log, m), fines),
		Fines:  httpadp.NewFineHandler(fines),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), mw.RequestLogger(log))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	httpadp.Register(e, handlers, mw.Idempotency(rdb, cfg.IdempotencyTTL(), log))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		log.Info(log.WithField(ctx, "addr", addr), "listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info(shutdownCtx, "shutting down")
	return e.Shutdown(shutdownCtx)
}
