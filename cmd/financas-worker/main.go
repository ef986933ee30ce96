package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/amqp"
	"financas/internal/cli"
	"financas/internal/config"
	"financas/internal/export"
	applog "financas/internal/log"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting financas-worker", "user_key", cfg.UserKey)

	repo := cli.InitRepository(logger, cfg)
	defer repo.Close()

	writer := initWriter(logger, cfg)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	backupWorker := worker.NewBackupWorker(repo, writer)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeWithReconnect(gctx, func(msg *amqp.LedgerChangedMessage) error {
			return backupWorker.HandleLedgerChanged(gctx, msg)
		})
	})

	// Backup path for lost messages
	g.Go(func() error {
		return backupWorker.RunPeriodic(gctx, cfg.UserKey, cfg.BackupInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

// initWriter picks the export target. Without a spreadsheet the worker
// still runs, exporting into memory so the consume loop drains the queue.
func initWriter(logger *applog.Logger, cfg *config.Config) export.StatementWriter {
	if !cfg.SheetsExportEnabled() {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
		return export.NewMemoryWriter()
	}

	client, err := export.NewSheetsClient(context.Background(), export.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleOAuthClientJSON,
		CredentialsFile: cfg.GoogleOAuthClientFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client
}
