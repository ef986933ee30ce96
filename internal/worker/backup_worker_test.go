package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/export"
	"financas/internal/ledger"
	"financas/internal/storage"
)

func seedSnapshot(t *testing.T, repo storage.SnapshotRepository, userKey string) {
	t.Helper()
	snap := ledger.Snapshot{
		BalanceCents: -4550,
		Expenses: []core.Expense{{
			ID:     core.NewID(),
			Amount: core.Money{Cents: 4550},
			Date:   core.NewDate(2025, 6, 10),
			Source: "Grocer",
		}},
		Sources:    []string{"Grocer"},
		ResetMonth: "2025-06",
	}
	if err := repo.Save(context.Background(), userKey, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}

func TestHandleLedgerChangedExportsStatement(t *testing.T) {
	repo := storage.NewMemoryRepository()
	seedSnapshot(t, repo, "casa")
	writer := export.NewMemoryWriter()

	w := NewBackupWorker(repo, writer)
	w.SetClock(func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) })

	msg := amqp.NewLedgerChangedMessage("casa", 3)
	if err := w.HandleLedgerChanged(context.Background(), msg); err != nil {
		t.Fatalf("HandleLedgerChanged failed: %v", err)
	}

	statements := writer.Statements()
	if len(statements) != 1 {
		t.Fatalf("Expected 1 exported statement, got %d", len(statements))
	}
	for _, want := range []string{"HOUSEHOLD FINANCE STATEMENT", "Grocer", "45.50€", "END OF STATEMENT"} {
		if !strings.Contains(statements[0], want) {
			t.Errorf("Expected statement to contain %q", want)
		}
	}
}

func TestHandleLedgerChangedMissingSnapshot(t *testing.T) {
	repo := storage.NewMemoryRepository()
	writer := export.NewMemoryWriter()
	w := NewBackupWorker(repo, writer)

	msg := amqp.NewLedgerChangedMessage("ghost", 1)
	err := w.HandleLedgerChanged(context.Background(), msg)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if len(writer.Statements()) != 0 {
		t.Error("Expected no export for missing snapshot")
	}
}

func TestRunPeriodicExportsAndStops(t *testing.T) {
	repo := storage.NewMemoryRepository()
	seedSnapshot(t, repo, "casa")
	writer := export.NewMemoryWriter()
	w := NewBackupWorker(repo, writer)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := w.RunPeriodic(ctx, "casa", 20*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
	if len(writer.Statements()) == 0 {
		t.Error("Expected at least one periodic export")
	}
}
