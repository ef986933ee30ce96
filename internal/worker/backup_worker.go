// Package worker mirrors ledger snapshots into the shared spreadsheet.
// Every ledger change message triggers a fresh statement export; a ticker
// re-exports periodically as a backup in case messages are lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/export"
	"financas/internal/ledger"
	"financas/internal/report"
	"financas/internal/stats"
	"financas/internal/storage"
)

// BackupWorker renders the full statement of a user's snapshot and writes
// it to the export target.
type BackupWorker struct {
	repo   storage.SnapshotRepository
	writer export.StatementWriter

	now func() time.Time
}

func NewBackupWorker(repo storage.SnapshotRepository, writer export.StatementWriter) *BackupWorker {
	return &BackupWorker{
		repo:   repo,
		writer: writer,
		now:    time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (w *BackupWorker) SetClock(now func() time.Time) {
	w.now = now
}

// HandleLedgerChanged processes a single ledger change message
func (w *BackupWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"user_key", msg.UserKey,
		"revision", msg.Revision)

	if err := w.Export(ctx, msg.UserKey); err != nil {
		return fmt.Errorf("export statement for %s: %w", msg.UserKey, err)
	}
	return nil
}

// Export loads the user's snapshot, renders the four-chapter statement and
// writes it to the export target.
func (w *BackupWorker) Export(ctx context.Context, userKey string) error {
	snap, err := w.repo.Load(ctx, userKey)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	l := ledger.New(0)
	l.Restore(snap)

	now := w.now()
	expenses := stats.FilterExpenses(l.Expenses(), now, stats.Filter{Period: stats.PeriodAll})
	members := l.Members()
	projects := l.Projects()

	var reports []report.Report
	for _, dim := range []report.Dimension{report.Chronological, report.ByMember, report.BySource, report.ByProject} {
		reports = append(reports, report.Generate(expenses, members, projects, dim))
	}
	statement := report.FullStatement(reports, now)

	if err := w.writer.WriteStatement(ctx, statement); err != nil {
		return fmt.Errorf("write statement: %w", err)
	}

	slog.InfoContext(ctx, "Statement exported",
		"user_key", userKey,
		"expenses", len(expenses))
	return nil
}

// RunPeriodic exports on the given interval until the context is done.
// This is the backup path for lost change messages.
func (w *BackupWorker) RunPeriodic(ctx context.Context, userKey string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Export(ctx, userKey); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed",
					"user_key", userKey,
					"error", err)
			}
		}
	}
}
