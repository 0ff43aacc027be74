// Command reconcile runs one counter reconciliation pass and exits.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"campusbridge/internal/config"
	"campusbridge/internal/database"
	"campusbridge/internal/middleware"
	"campusbridge/internal/observability"
	"campusbridge/internal/repository"
	"campusbridge/internal/tasks"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := middleware.NewLogger(cfg.Env, os.Stdout)
	slog.SetDefault(logger)
	observability.SetLogger(logger)

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}

	// The schedule is never started; RunOnce is called directly.
	task, err := tasks.NewReconcileTask(repository.NewCounterRepository(db), "@every 1h")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := task.RunOnce(ctx)
	if err != nil {
		return err
	}
	for _, d := range report.Drift {
		logger.Info("counter checked",
			slog.String("table", d.Table),
			slog.String("column", d.Column),
			slog.Int64("rows_repaired", d.Rows),
		)
	}
	logger.Info("orphaned likes removed", slog.Int64("rows", report.OrphanedLikes))
	return nil
}
