// Package testdb opens isolated in-memory SQLite databases with the full schema.
package testdb

import (
	"context"
	"testing"

	"library-circulation/internal/infrastructure/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Open returns a migrated database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:circ_" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	gdb, err := db.OpenGorm("sqlite", dsn, db.Options{LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(context.Background(), gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
