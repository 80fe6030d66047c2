package db

import (
	"context"
	"errors"
	"testing"

	"library-circulation/internal/domain/bookcopy"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	gormlogger "gorm.io/gorm/logger"
)

func TestOpenGormWithDialector_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	// Expect a Ping from our code
	mock.ExpectPing()

	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true, // don't query @@version
	})

	gdb, err := OpenGormWithDialector(dial, Options{MaxOpenConns: 5, MaxIdleConns: 2})
	if err != nil {
		t.Fatalf("OpenGormWithDialector error: %v", err)
	}
	if gdb == nil {
		t.Fatalf("got nil gorm.DB")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenGormWithDialector_PingFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectPing().WillReturnError(errors.New("no ping"))

	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	gdb, err := OpenGormWithDialector(dial, Options{})
	if err == nil {
		t.Fatalf("expected error, got nil (gdb=%v)", gdb)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenGorm_UnknownDriver(t *testing.T) {
	if _, err := OpenGorm("oracle", "x", Options{}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenGorm_SQLiteMigrate(t *testing.T) {
	dsn := "file:db_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := OpenGorm("sqlite", dsn, Options{LogLevel: "silent"})
	if err != nil {
		t.Fatalf("OpenGorm: %v", err)
	}
	if err := Migrate(context.Background(), gdb); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	for _, m := range Models() {
		if !gdb.Migrator().HasTable(m) {
			t.Fatalf("table for %T missing", m)
		}
	}
	if !gdb.Migrator().HasIndex(&bookcopy.BookCopy{}, "ux_book_copies_book_code") {
		t.Fatal("composite unique index missing")
	}
	sqlDB, _ := gdb.DB()
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("sqlite MaxOpenConnections = %d, want 1", got)
	}
}

func TestParseGormLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"ERROR":  gormlogger.Error,
		"info":   gormlogger.Info,
		"":       gormlogger.Warn,
		"bogus":  gormlogger.Warn,
	}
	for in, want := range tests {
		if got := parseGormLevel(in); got != want {
			t.Fatalf("parseGormLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, dir := range []string{"migrations/mysql", "migrations/postgres"} {
		entries, err := migrationsFS.ReadDir(dir)
		if err != nil || len(entries) == 0 {
			t.Fatalf("%s: entries=%d err=%v", dir, len(entries), err)
		}
	}
}
