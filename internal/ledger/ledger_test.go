package ledger

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"financas/internal/core"
)

func draft(cents int64, source string, memberIDs ...string) core.Draft {
	return core.Draft{
		Amount:    core.Money{Cents: cents},
		Date:      core.NewDate(2025, 6, 15),
		Source:    source,
		MemberIDs: memberIDs,
	}
}

func liveTotal(l *Ledger) int64 {
	var sum int64
	for _, e := range l.Expenses() {
		sum += e.Amount.Cents
	}
	return sum
}

func TestAddExpense(t *testing.T) {
	l := New(0)
	e, err := l.AddExpense(draft(4550, "Grocer", "m1", "m2"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("expected fresh id and timestamp, got %+v", e)
	}
	if l.Balance().Cents != -4550 {
		t.Fatalf("balance = %d, want -4550", l.Balance().Cents)
	}
	if len(l.Expenses()) != 1 {
		t.Fatalf("expected one expense")
	}
}

func TestAddExpensePrepends(t *testing.T) {
	l := New(0)
	first, _ := l.AddExpense(draft(100, "A"))
	second, _ := l.AddExpense(draft(200, "B"))
	got := l.Expenses()
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Fatalf("expected newest first")
	}
}

func TestAddExpenseValidation(t *testing.T) {
	l := New(1000)
	cases := []core.Draft{
		draft(0, "Grocer"),
		draft(-500, "Grocer"),
		draft(500, ""),
		{Amount: core.Money{Cents: 500}, Source: "Grocer"}, // zero date
	}
	for i, d := range cases {
		if _, err := l.AddExpense(d); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
	// Failed mutations leave the ledger untouched.
	if l.Balance().Cents != 1000 || len(l.Expenses()) != 0 {
		t.Fatalf("ledger changed after failed adds")
	}
}

func TestUpdateExpenseDelta(t *testing.T) {
	l := New(0)
	a, _ := l.AddExpense(draft(4550, "Grocer"))
	l.AddExpense(draft(6200, "Fuel"))

	updated, err := l.UpdateExpense(a.ID, draft(5000, "Market", "m1"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != a.ID {
		t.Fatalf("id must survive update")
	}
	if !updated.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("creation timestamp must survive update")
	}
	if updated.Source != "Market" || len(updated.MemberIDs) != 1 {
		t.Fatalf("fields not replaced: %+v", updated)
	}
	// Balance moved by exactly oldAmount - newAmount.
	if l.Balance().Cents != -(4550+6200)+(4550-5000) {
		t.Fatalf("balance = %d", l.Balance().Cents)
	}
}

func TestUpdateExpenseNotFound(t *testing.T) {
	l := New(0)
	l.AddExpense(draft(100, "A"))
	before := l.Balance().Cents
	_, err := l.UpdateExpense("missing", draft(200, "B"))
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if l.Balance().Cents != before {
		t.Fatalf("balance changed on failed update")
	}
}

func TestDeleteExpenseRefunds(t *testing.T) {
	l := New(0)
	a, _ := l.AddExpense(draft(4550, "Grocer"))
	b, _ := l.AddExpense(draft(6200, "Fuel"))

	if err := l.DeleteExpense(b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if l.Balance().Cents != -4550 {
		t.Fatalf("balance = %d, want -4550", l.Balance().Cents)
	}
	if err := l.DeleteExpense(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if l.Balance().Cents != 0 {
		t.Fatalf("balance = %d, want 0", l.Balance().Cents)
	}
	if !errors.Is(l.DeleteExpense(a.ID), core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeated delete")
	}
}

// Balance invariant: after any sequence of add/update/delete starting from
// B0, balance == B0 - sum(live expense amounts).
func TestBalanceInvariantRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const b0 = 123456
	l := New(b0)

	var ids []string
	for op := 0; op < 500; op++ {
		switch rng.Intn(3) {
		case 0:
			e, err := l.AddExpense(draft(int64(rng.Intn(10000)+1), "Src"))
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			ids = append(ids, e.ID)
		case 1:
			if len(ids) == 0 {
				continue
			}
			id := ids[rng.Intn(len(ids))]
			_, err := l.UpdateExpense(id, draft(int64(rng.Intn(10000)+1), "Other"))
			if err != nil && !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("update: %v", err)
			}
		case 2:
			if len(ids) == 0 {
				continue
			}
			i := rng.Intn(len(ids))
			err := l.DeleteExpense(ids[i])
			if err != nil && !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("delete: %v", err)
			}
			ids = append(ids[:i], ids[i+1:]...)
		}

		if got, want := l.Balance().Cents, b0-liveTotal(l); got != want {
			t.Fatalf("op %d: balance %d, want %d", op, got, want)
		}
	}
}

func TestDeleteCategoryPolicies(t *testing.T) {
	l := New(0)
	l.AddExpense(draft(100, "Grocer"))
	l.AddExpense(draft(200, "Grocer"))
	l.AddExpense(draft(300, "Fuel"))
	before := l.Balance().Cents

	if err := l.DeleteCategory("Grocer", FieldSource, KeepExpenses); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	for _, s := range l.Sources() {
		if s == "Grocer" {
			t.Fatalf("label still in catalog")
		}
	}
	for _, e := range l.Expenses() {
		if e.Source == core.Uncategorized {
			t.Fatalf("keep policy must not rewrite expenses")
		}
	}

	if err := l.DeleteCategory("Fuel", FieldSource, ReassignExpenses); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	reassigned := 0
	for _, e := range l.Expenses() {
		if e.Source == core.Uncategorized {
			reassigned++
		}
	}
	if reassigned != 1 {
		t.Fatalf("expected one reassigned expense, got %d", reassigned)
	}
	if l.Balance().Cents != before {
		t.Fatalf("category deletion must not touch the balance")
	}
}

func TestDeleteCategoryPaymentMethod(t *testing.T) {
	l := New(0)
	d := draft(100, "Grocer")
	d.PaymentMethod = "Card"
	l.AddExpense(d)

	if err := l.DeleteCategory("Card", FieldPaymentMethod, ReassignExpenses); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if got := l.Expenses()[0].PaymentMethod; got != core.Uncategorized {
		t.Fatalf("payment method = %q", got)
	}
}

func TestDeleteProjectDetach(t *testing.T) {
	l := New(0)
	p, _ := l.AddProject("Kitchen", "", "")
	d := draft(500, "Tiles")
	d.ProjectID = p.ID
	l.AddExpense(d)
	before := l.Balance().Cents

	if err := l.DeleteProject(p.ID, DetachExpenses); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if len(l.Projects()) != 0 {
		t.Fatalf("project not removed")
	}
	got := l.Expenses()
	if len(got) != 1 || got[0].ProjectID != "" {
		t.Fatalf("expected detached expense, got %+v", got)
	}
	if l.Balance().Cents != before {
		t.Fatalf("detach must not touch the balance")
	}
}

func TestDeleteProjectPurge(t *testing.T) {
	l := New(0)
	p, _ := l.AddProject("Kitchen", "", "")
	for _, cents := range []int64{500, 700} {
		d := draft(cents, "Tiles")
		d.ProjectID = p.ID
		l.AddExpense(d)
	}
	l.AddExpense(draft(300, "Other"))

	if err := l.DeleteProject(p.ID, PurgeExpenses); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if len(l.Expenses()) != 1 {
		t.Fatalf("expected only the unrelated expense to survive")
	}
	// 500+700 refunded, 300 still outstanding.
	if l.Balance().Cents != -300 {
		t.Fatalf("balance = %d, want -300", l.Balance().Cents)
	}
}

func TestDeleteProjectNotFound(t *testing.T) {
	l := New(0)
	if !errors.Is(l.DeleteProject("missing", DetachExpenses), core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound")
	}
}

func TestAddProjectRegistersSource(t *testing.T) {
	l := New(0)
	l.AddProject("Kitchen", "remodel", "")
	if !containsFold(l.Sources(), "Kitchen") {
		t.Fatalf("project name not registered as source")
	}
	// Existing label, case-insensitively, is not duplicated.
	l.AddProject("kitchen", "", "")
	count := 0
	for _, s := range l.Sources() {
		if s == "Kitchen" || s == "kitchen" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("duplicate source label registered")
	}
}

func TestMembers(t *testing.T) {
	l := New(0)
	m, err := l.AddMember("Ana", "parent")
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := l.AddMember("  ", ""); err == nil {
		t.Fatalf("expected error for blank name")
	}

	updated, err := l.UpdateMember(m.ID, "Ana Maria", "parent")
	if err != nil || updated.Name != "Ana Maria" {
		t.Fatalf("update member: %v %+v", err, updated)
	}

	if err := l.RemoveMember(m.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if !errors.Is(l.RemoveMember(m.ID), core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := New(0)
	l.AddMember("Ana", "parent")
	l.AddProject("Kitchen", "", "")
	l.AddExpense(draft(4550, "Grocer"))

	snap := l.Snapshot()
	restored := New(0)
	restored.Restore(snap)

	if restored.Balance().Cents != l.Balance().Cents {
		t.Fatalf("balance not restored")
	}
	if len(restored.Expenses()) != 1 || len(restored.Members()) != 1 || len(restored.Projects()) != 1 {
		t.Fatalf("state not restored: %+v", restored.Snapshot())
	}

	// The snapshot is a value copy: mutating the source afterwards must not
	// leak into the restored ledger.
	l.AddExpense(draft(100, "Extra"))
	if len(restored.Expenses()) != 1 {
		t.Fatalf("snapshot aliased the live ledger")
	}
}

func TestSnapshotRollover(t *testing.T) {
	snap := Snapshot{
		BalanceCents: -4550,
		Expenses:     []core.Expense{{ID: "e1"}},
		Members:      []core.Member{{ID: "m1", Name: "Ana"}},
		Sources:      []string{"Grocer"},
		ResetMonth:   "2025-05",
	}

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rolled, reset := snap.Rollover(now)
	if !reset {
		t.Fatalf("expected rollover into new month")
	}
	if rolled.BalanceCents != 0 || len(rolled.Expenses) != 0 {
		t.Fatalf("balance/expenses not reset: %+v", rolled)
	}
	if len(rolled.Members) != 1 || len(rolled.Sources) != 1 {
		t.Fatalf("catalogs must survive rollover")
	}
	if rolled.ResetMonth != "2025-06" {
		t.Fatalf("reset month = %q", rolled.ResetMonth)
	}

	again, reset := rolled.Rollover(now)
	if reset {
		t.Fatalf("same month must not reset twice")
	}
	if again.ResetMonth != "2025-06" {
		t.Fatalf("reset month changed on no-op")
	}
}

// Scenario from the household bookkeeping rules: two expenses, one split
// across two members and one unassigned, then the second is deleted.
func TestExampleScenario(t *testing.T) {
	l := New(0)
	l.AddExpense(draft(4550, "Grocer", "m1", "m2"))
	if l.Balance().Cents != -4550 {
		t.Fatalf("balance = %d, want -4550", l.Balance().Cents)
	}
	fuel, _ := l.AddExpense(draft(6200, "Fuel"))
	if l.Balance().Cents != -10750 {
		t.Fatalf("balance = %d, want -10750", l.Balance().Cents)
	}
	l.DeleteExpense(fuel.ID)
	if l.Balance().Cents != -4550 {
		t.Fatalf("balance = %d, want -4550 after refund", l.Balance().Cents)
	}
}
