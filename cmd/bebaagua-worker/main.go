package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bebaagua/internal/config"
	applog "bebaagua/internal/log"
	"bebaagua/internal/notify"
	"bebaagua/internal/settings"
	gsheet "bebaagua/internal/sheets/google"
	"bebaagua/internal/storage"
	"bebaagua/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting bebaagua-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Backup requires the spreadsheet; without it the worker only schedules
	// reminders.
	var backupWorker *worker.BackupWorker
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		backupWorker = worker.NewBackupWorker(repo, sheetsClient, cfg.BackupBatchSize)
		logger.Info("Google Sheets backup enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets backup disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	queue, err := notify.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPBackupQueue, cfg.AMQPEventQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	if backupWorker != nil {
		logger.Info("Performing startup backup check...")
		if err := backupWorker.StartupCheck(ctx); err != nil {
			logger.Error("Startup backup check failed", "error", err)
			// Keep running; the periodic scan retries.
		}
	}

	group, ctx := errgroup.WithContext(ctx)

	if backupWorker != nil {
		group.Go(func() error {
			return queue.ConsumeBackups(ctx, func(msg *notify.RecordBackupMessage) error {
				return backupWorker.HandleBackupMessage(ctx, msg)
			})
		})

		group.Go(func() error {
			ticker := time.NewTicker(cfg.BackupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if err := backupWorker.ProcessPending(ctx); err != nil {
						logger.Error("Periodic backup scan failed", "error", err)
					}
				}
			}
		})
	}

	scheduler := worker.NewReminderScheduler(settings.NewStore(repo), queue)
	group.Go(func() error {
		return scheduler.Run(ctx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
