// Package storage persists ledger snapshots as a key-value blob keyed by
// user. The core never depends on it succeeding: saves happen after a
// mutation has already committed in memory.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"financas/internal/core"
	"financas/internal/ledger"

	_ "modernc.org/sqlite"
)

// SnapshotRepository stores one serialized ledger snapshot per user key.
type SnapshotRepository interface {
	Save(ctx context.Context, userKey string, snap ledger.Snapshot) error
	// Load returns the stored snapshot, or core.ErrNotFound when the user
	// has no snapshot yet.
	Load(ctx context.Context, userKey string) (ledger.Snapshot, error)
	Close() error
}

type SQLiteRepository struct {
	db *sql.DB
}

var _ SnapshotRepository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save upserts the snapshot blob for the user.
func (r *SQLiteRepository) Save(ctx context.Context, userKey string, snap ledger.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (user_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		userKey, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved",
		"user_key", userKey,
		"expenses", len(snap.Expenses),
		"balance_cents", snap.BalanceCents)
	return nil
}

// Load fetches and decodes the snapshot blob for the user.
func (r *SQLiteRepository) Load(ctx context.Context, userKey string) (ledger.Snapshot, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE user_key = ?`, userKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Snapshot{}, fmt.Errorf("load snapshot for %s: %w", userKey, core.ErrNotFound)
	}
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
