// Command backfill embeds every academic source that has no embedding yet.
// It is safe to rerun: each stored vector is committed immediately.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"assignment-helper/internal/ai"
	"assignment-helper/internal/app"
	"assignment-helper/internal/bootstrap"
	"assignment-helper/internal/config"
	"assignment-helper/internal/metrics"
	"assignment-helper/internal/pkg/logger"
	"assignment-helper/internal/platform/postgres"
	"assignment-helper/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		zl.Fatal("connect postgres failed", zap.Error(err))
	}
	if err := postgres.Migrate(ctx, db, cfg.Postgres.EnableExtension); err != nil {
		zl.Fatal("migrate failed", zap.Error(err))
	}

	embedder := bootstrap.NewEmbedder(cfg, ai.NewOpenAICompatibleClient(cfg.LLMTimeout()))
	svc := app.NewBackfillService(repository.NewAcademicSourceRepository(db), embedder, zl.Named("backfill"), metrics.New())

	report, runErr := svc.Run(ctx)
	if report != nil {
		_ = json.NewEncoder(os.Stdout).Encode(report)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if runErr != nil {
		zl.Error("backfill failed", zap.Error(runErr))
		os.Exit(1)
	}
}
