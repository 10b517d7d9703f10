package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/worldkernel-backend/internal/data/db"
	"github.com/yungbote/worldkernel-backend/internal/pkg/dbctx"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

const dsnEnv = "TEST_POSTGRES_DSN"

var (
	openOnce sync.Once
	shared   *gorm.DB
	openErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

func open(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	steps := []func(*gorm.DB) error{db.EnsureExtensions, db.AutoMigrateAll, db.EnsureKernelIndexes}
	for _, step := range steps {
		if err := step(conn); err != nil {
			return nil, err
		}
	}
	return conn, nil
}

// DB returns the shared, migrated test database. Tests skip when TEST_POSTGRES_DSN is unset.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		tb.Skipf("set %s to run repo integration tests", dsnEnv)
	}
	openOnce.Do(func() { shared, openErr = open(dsn) })
	if openErr != nil {
		tb.Fatalf("init test db: %v", openErr)
	}
	return shared
}

// Tx begins a transaction that is rolled back when the test ends, so tests never see
// each other's rows.
func Tx(tb testing.TB, conn *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := conn.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() { tx.Rollback() })
	return tx
}

// Dbc is the repo call context bound to tx.
func Dbc(ctx context.Context, tx *gorm.DB) dbctx.Context {
	return dbctx.Context{Ctx: ctx, Tx: tx}
}
