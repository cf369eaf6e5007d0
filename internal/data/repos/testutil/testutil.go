package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/openshelf/openshelf-backend/internal/data/db"
	"github.com/openshelf/openshelf-backend/internal/legacy"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

var dbSeq atomic.Int64

func open(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("unwrap test db: %v", err)
	}
	// Shared-cache in-memory databases vanish when the last connection
	// closes; pin a single connection for the test's lifetime.
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// DB returns a fresh in-memory target store with the full schema.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	gdb := open(tb)
	if err := db.AutoMigrateAll(gdb); err != nil {
		tb.Fatalf("migrate target schema: %v", err)
	}
	return gdb
}

// SourceDB returns a fresh in-memory legacy store with the legacy schema.
func SourceDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	gdb := open(tb)
	err := gdb.AutoMigrate(
		&legacy.Staff{},
		&legacy.Member{},
		&legacy.MemberClassification{},
		&legacy.CollectionCode{},
		&legacy.MaterialTypeCode{},
		&legacy.Biblio{},
		&legacy.BiblioField{},
		&legacy.BiblioCopy{},
		&legacy.StatusHistory{},
	)
	if err != nil {
		tb.Fatalf("migrate legacy schema: %v", err)
	}
	if err := gdb.Exec("CREATE TABLE IF NOT EXISTS settings (library_name TEXT, library_phone TEXT, library_hours TEXT, opac_url TEXT)").Error; err != nil {
		tb.Fatalf("create settings table: %v", err)
	}
	return gdb
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.NewNop()
}
