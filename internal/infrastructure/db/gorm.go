package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"library-circulation/internal/config"
	"library-circulation/internal/domain/bookcopy"
	"library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/loan"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// LogLevel is silent, error, warn or info.
	LogLevel string
	Logger   *zerolog.Logger
}

func OptionsFromConfig(c *config.Config, zl *zerolog.Logger) Options {
	return Options{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
		LogLevel:        c.DBLogLevel,
		Logger:          zl,
	}
}

// Dialector picks the gorm driver for driver/dsn.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		return postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

func OpenGorm(driver, dsn string, opts Options) (*gorm.DB, error) {
	dial, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == config.DriverSQLite && opts.MaxOpenConns != 1 {
		// one writer; concurrent sqlite transactions would fail with SQLITE_BUSY
		opts.MaxOpenConns = 1
	}
	return OpenGormWithDialector(dial, opts)
}

// OpenGormWithDialector opens, applies pool settings and pings.
func OpenGormWithDialector(dial gorm.Dialector, opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:               newGormLogger(opts),
		DisableAutomaticPing: true,
		TranslateError:       true,
		NowFunc:              func() time.Time { return time.Now().UTC() },
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if opts.Logger != nil {
		opts.Logger.Info().Str("dialect", dial.Name()).Msg("gorm: connected")
	}
	return db, nil
}

func newGormLogger(opts Options) gormlogger.Interface {
	level := parseGormLevel(opts.LogLevel)
	if opts.Logger == nil {
		return gormlogger.Default.LogMode(level)
	}
	return gormlogger.New(opts.Logger, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func parseGormLevel(v string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// Models lists every table, in creation order.
func Models() []any {
	return []any{
		&bookcopy.BookCopy{},
		&loan.Loan{},
		&loan.Detail{},
		&borrow.Borrow{},
		&borrow.Detail{},
		&fine.FineType{},
		&fine.Fine{},
	}
}

// Migrate brings the schema up to date: goose for mysql/postgres, AutoMigrate for sqlite.
func Migrate(ctx context.Context, db *gorm.DB) error {
	switch db.Dialector.Name() {
	case config.DriverSQLite:
		return db.WithContext(ctx).AutoMigrate(Models()...)
	case config.DriverMySQL, config.DriverPostgres:
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("extracting sql.DB: %w", err)
		}
		return RunGoose(ctx, sqlDB, db.Dialector.Name(), "up")
	default:
		return fmt.Errorf("no migrations for dialect %q", db.Dialector.Name())
	}
}
