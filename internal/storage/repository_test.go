package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"financas/internal/core"
	"financas/internal/ledger"
)

func sampleSnapshot() ledger.Snapshot {
	return ledger.Snapshot{
		BalanceCents: -4550,
		Expenses: []core.Expense{{
			ID:     "e1",
			Amount: core.Money{Cents: 4550},
			Date:   core.NewDate(2025, 6, 14),
			Source: "Grocer",
		}},
		Members:    []core.Member{{ID: "m1", Name: "Ana"}},
		Sources:    []string{"Grocer"},
		ResetMonth: "2025-06",
	}
}

func TestSQLiteSaveLoad(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "financas.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()

	if _, err := repo.Load(ctx, "user@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first save, got %v", err)
	}

	want := sampleSnapshot()
	if err := repo.Save(ctx, "user@example.com", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.BalanceCents != want.BalanceCents || len(got.Expenses) != 1 || got.ResetMonth != "2025-06" {
		t.Fatalf("loaded snapshot mismatch: %+v", got)
	}
	if got.Expenses[0].Date.String() != "2025-06-14" {
		t.Fatalf("date not preserved: %s", got.Expenses[0].Date)
	}

	// Upsert replaces the previous blob.
	want.BalanceCents = -9900
	if err := repo.Save(ctx, "user@example.com", want); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, err = repo.Load(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.BalanceCents != -9900 {
		t.Fatalf("upsert did not replace: %d", got.BalanceCents)
	}
}

func TestSQLiteSnapshotsAreKeyedByUser(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "financas.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	a := sampleSnapshot()
	b := sampleSnapshot()
	b.BalanceCents = -100

	repo.Save(ctx, "a@example.com", a)
	repo.Save(ctx, "b@example.com", b)

	got, err := repo.Load(ctx, "b@example.com")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.BalanceCents != -100 {
		t.Fatalf("wrong snapshot for user b: %d", got.BalanceCents)
	}
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Load(ctx, "u"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Save(ctx, "u", sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx, "u")
	if err != nil || got.BalanceCents != -4550 {
		t.Fatalf("load: %v %+v", err, got)
	}
}
