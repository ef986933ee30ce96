// Package services orchestrates the in-memory ledger with the snapshot
// store and the AMQP change notifications. Mutations commit in memory
// first; persistence and publishing are fire-and-forget afterwards.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"financas/internal/amqp"
	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/report"
	"financas/internal/stats"
	"financas/internal/storage"
)

// LedgerService serializes all access to the single ledger of the user so
// a reader never observes a half-applied mutation.
type LedgerService struct {
	mu         sync.RWMutex
	ledger     *ledger.Ledger
	repo       storage.SnapshotRepository
	amqpClient *amqp.Client
	userKey    string
	revision   int64
	summaries  *cache.SummaryCache

	now func() time.Time
}

func NewLedgerService(repo storage.SnapshotRepository, amqpClient *amqp.Client, userKey string) *LedgerService {
	return &LedgerService{
		ledger:     ledger.New(0),
		repo:       repo,
		amqpClient: amqpClient,
		userKey:    userKey,
		summaries:  cache.NewSummaryCache(100, 5*time.Minute),
		now:        time.Now,
	}
}

// SetSummaryCache replaces the default aggregation cache.
func (s *LedgerService) SetSummaryCache(c *cache.SummaryCache) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = c
}

// SetClock overrides the time source. Used by tests.
func (s *LedgerService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.ledger.SetClock(now)
}

// Open loads the user's snapshot, applying the monthly rollover when the
// calendar month changed since the last session. A missing snapshot means
// a fresh ledger, not an error.
func (s *LedgerService) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.repo.Load(ctx, s.userKey)
	if errors.Is(err, core.ErrNotFound) {
		snap = ledger.Snapshot{}
	} else if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	snap, reset := snap.Rollover(s.now())
	s.ledger.Restore(snap)
	if reset {
		slog.InfoContext(ctx, "Ledger rolled over to new month",
			"user_key", s.userKey,
			"month", snap.ResetMonth)
		s.persist(ctx)
	}
	return nil
}

// AddExpense commits the draft and returns the created expense.
func (s *LedgerService) AddExpense(ctx context.Context, draft core.Draft) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.ledger.AddExpense(draft)
	if err != nil {
		return core.Expense{}, err
	}
	slog.InfoContext(ctx, "Expense created",
		"id", e.ID,
		"source", e.Source,
		"amount_cents", e.Amount.Cents,
		"balance_cents", s.ledger.Balance().Cents)
	s.persist(ctx)
	return e, nil
}

// UpdateExpense replaces the identified expense's fields.
func (s *LedgerService) UpdateExpense(ctx context.Context, id string, draft core.Draft) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.ledger.UpdateExpense(id, draft)
	if err != nil {
		return core.Expense{}, err
	}
	slog.InfoContext(ctx, "Expense updated", "id", e.ID, "balance_cents", s.ledger.Balance().Cents)
	s.persist(ctx)
	return e, nil
}

// DeleteExpense removes the expense and refunds its amount.
func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.DeleteExpense(id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id, "balance_cents", s.ledger.Balance().Cents)
	s.persist(ctx)
	return nil
}

// DeleteCategory removes a label under the chosen policy.
func (s *LedgerService) DeleteCategory(ctx context.Context, label string, field ledger.CategoryField, policy ledger.CategoryPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.DeleteCategory(label, field, policy); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Category deleted", "label", label, "field", string(field))
	s.persist(ctx)
	return nil
}

// AddCategory registers a new label.
func (s *LedgerService) AddCategory(ctx context.Context, label string, field ledger.CategoryField) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.AddCategory(label, field); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// DeleteProject removes a project under the chosen policy.
func (s *LedgerService) DeleteProject(ctx context.Context, id string, policy ledger.ProjectPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.DeleteProject(id, policy); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Project deleted", "id", id, "purge", policy == ledger.PurgeExpenses)
	s.persist(ctx)
	return nil
}

// AddProject registers a project.
func (s *LedgerService) AddProject(ctx context.Context, name, description, notes string) (core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.ledger.AddProject(name, description, notes)
	if err != nil {
		return core.Project{}, err
	}
	s.persist(ctx)
	return p, nil
}

// AddMember registers a household member.
func (s *LedgerService) AddMember(ctx context.Context, name, role string) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.ledger.AddMember(name, role)
	if err != nil {
		return core.Member{}, err
	}
	s.persist(ctx)
	return m, nil
}

// UpdateMember replaces a member's name and role.
func (s *LedgerService) UpdateMember(ctx context.Context, id, name, role string) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.ledger.UpdateMember(id, name, role)
	if err != nil {
		return core.Member{}, err
	}
	s.persist(ctx)
	return m, nil
}

// RemoveMember deletes a member without touching their expenses.
func (s *LedgerService) RemoveMember(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.RemoveMember(id); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// Balance returns the current running balance.
func (s *LedgerService) Balance() core.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Balance()
}

// Expenses returns the filtered expense list for the history view.
func (s *LedgerService) Expenses(f stats.Filter) []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stats.FilterExpenses(s.ledger.Expenses(), s.now(), f)
}

// Members returns the member list.
func (s *LedgerService) Members() []core.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Members()
}

// Projects returns the project list.
func (s *LedgerService) Projects() []core.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Projects()
}

// Categories returns the source and payment method catalogs.
func (s *LedgerService) Categories() (sources, paymentMethods []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Sources(), s.ledger.PaymentMethods()
}

// Summary runs one aggregation pass over the current ledger, memoized
// until the next mutation.
func (s *LedgerService) Summary(f stats.Filter) stats.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := cache.Key(f, s.now())
	if sum, ok := s.summaries.Get(key); ok {
		return sum
	}
	sum := stats.Compute(s.ledger.Expenses(), s.ledger.Members(), s.now(), f)
	s.summaries.Set(key, sum)
	return sum
}

// Report generates a grouped report over the (optionally filtered) ledger.
func (s *LedgerService) Report(f stats.Filter, dim report.Dimension) report.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exps := stats.FilterExpenses(s.ledger.Expenses(), s.now(), f)
	return report.Generate(exps, s.ledger.Members(), s.ledger.Projects(), dim)
}

// FullStatement renders the four-chapter narrative export.
func (s *LedgerService) FullStatement(f stats.Filter) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exps := stats.FilterExpenses(s.ledger.Expenses(), s.now(), f)
	members := s.ledger.Members()
	projects := s.ledger.Projects()

	var reports []report.Report
	for _, dim := range []report.Dimension{report.Chronological, report.ByMember, report.BySource, report.ByProject} {
		reports = append(reports, report.Generate(exps, members, projects, dim))
	}
	return report.FullStatement(reports, s.now())
}

// persist saves the snapshot and publishes the change notification.
// Both are best-effort: the in-memory ledger is already committed and its
// invariants never depend on either side effect succeeding.
// Callers hold the write lock.
func (s *LedgerService) persist(ctx context.Context) {
	s.revision++
	s.summaries.Invalidate()
	snap := s.ledger.Snapshot()
	snap.ResetMonth = s.now().Format("2006-01")

	if s.repo != nil {
		if err := s.repo.Save(ctx, s.userKey, snap); err != nil {
			slog.ErrorContext(ctx, "Failed to save snapshot",
				"error", err,
				"user_key", s.userKey,
				"revision", s.revision)
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishLedgerChanged(ctx, s.userKey, s.revision); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger changed message",
				"error", err,
				"user_key", s.userKey,
				"revision", s.revision)
		}
	}
}

// Close releases the storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
