package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/worldkernel-backend/internal/app"
	"github.com/yungbote/worldkernel-backend/internal/data/db"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

// migrate applies the schema and kernel indexes without starting the API.
func main() {
	var indexesOnly bool
	flag.BoolVar(&indexesOnly, "indexes-only", false, "only (re)create kernel indexes")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode, logger.WithLevel(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(cfg.Postgres(), log)
	if err != nil {
		log.Error("init postgres", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	if indexesOnly {
		err = db.EnsureKernelIndexes(pg.DB())
	} else {
		err = pg.AutoMigrateAll()
	}
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migration complete", "indexes_only", indexesOnly)
}
