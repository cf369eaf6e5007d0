package main

import (
	"context"
	"fmt"
	"os"

	"github.com/openshelf/openshelf-backend/internal/data/db"
	"github.com/openshelf/openshelf-backend/internal/legacy"
	"github.com/openshelf/openshelf-backend/internal/migration"
	"github.com/openshelf/openshelf-backend/internal/migration/verify"
	"github.com/openshelf/openshelf-backend/internal/platform/envutil"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

// Runs the reconciliation verifier on its own, without touching either
// store's data. Useful after a run, or while one is being audited.
func main() {
	os.Exit(run())
}

func run() int {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	source, err := legacy.NewSourceService(log)
	if err != nil {
		log.Error("Legacy source init failed", "error", err)
		return 1
	}
	defer source.Close()

	target, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		return 1
	}
	defer target.Close()

	cfg := migration.LoadConfig()
	verifier, err := verify.New(source, target.DB(), log, cfg.MappingOverridesPath)
	if err != nil {
		log.Error("Verifier init failed", "error", err)
		return 1
	}
	report, err := verifier.Run(context.Background())
	if err != nil {
		log.Error("Verification failed", "error", err)
		return 1
	}
	fmt.Print(report.Render())

	if !report.Complete() {
		return 2
	}
	return 0
}
