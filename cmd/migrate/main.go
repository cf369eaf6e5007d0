package main

import (
	"context"
	"fmt"
	"os"

	"github.com/openshelf/openshelf-backend/internal/data/db"
	"github.com/openshelf/openshelf-backend/internal/legacy"
	"github.com/openshelf/openshelf-backend/internal/migration"
	"github.com/openshelf/openshelf-backend/internal/migration/runlog"
	"github.com/openshelf/openshelf-backend/internal/migration/verify"
	"github.com/openshelf/openshelf-backend/internal/platform/envutil"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

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

	cfg := migration.LoadConfig()

	rl, err := runlog.Open(cfg.RunLogPath, log)
	if err != nil {
		log.Error("Run log init failed", "error", err)
		return 1
	}
	defer rl.Close()

	// Without both connections no useful work is possible, so these are
	// the only fatal paths.
	source, err := legacy.NewSourceService(log)
	if err != nil {
		rl.StageError("startup", err)
		log.Error("Legacy source init failed", "error", err)
		return 1
	}
	defer source.Close()

	target, err := db.NewPostgresService(log)
	if err != nil {
		rl.StageError("startup", err)
		log.Error("Postgres init failed", "error", err)
		return 1
	}
	defer target.Close()

	if err := target.AutoMigrateAll(); err != nil {
		rl.StageError("startup", err)
		log.Error("Postgres auto migration failed", "error", err)
		return 1
	}

	engine, err := migration.NewEngine(cfg, source, target.DB(), log, rl)
	if err != nil {
		rl.StageError("startup", err)
		log.Error("Engine init failed", "error", err)
		return 1
	}

	ctx := context.Background()
	engine.Run(ctx)

	verifier, err := verify.New(source, target.DB(), log, cfg.MappingOverridesPath)
	if err != nil {
		rl.StageError("verify", err)
		log.Error("Verifier init failed", "error", err)
		return 1
	}
	report, err := verifier.Run(ctx)
	if err != nil {
		rl.StageError("verify", err)
		log.Error("Verification failed", "error", err)
		return 1
	}

	rendered := report.Render()
	rl.Report(rendered)
	fmt.Print(rendered)

	if !report.Complete() {
		log.Warn("Migration incomplete; inspect the verification report", "run_log", cfg.RunLogPath)
	}
	return 0
}
