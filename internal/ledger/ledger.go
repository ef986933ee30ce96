// Package ledger owns the canonical expense list and the running balance.
// Every mutation adjusts the balance exactly once, together with the list
// change; a failed mutation leaves the ledger untouched.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"financas/internal/core"
)

// CategoryField selects which expense label a category operation targets.
type CategoryField string

const (
	FieldSource        CategoryField = "source"
	FieldPaymentMethod CategoryField = "paymentMethod"
)

// CategoryPolicy controls what happens to expenses that reference a deleted
// category label. The label itself is metadata, not a foreign key, so the
// expenses survive either way.
type CategoryPolicy int

const (
	// KeepExpenses leaves expenses using the deleted label as they are.
	KeepExpenses CategoryPolicy = iota
	// ReassignExpenses rewrites them to the "Uncategorized" sentinel.
	ReassignExpenses
)

// ProjectPolicy controls what happens to a deleted project's expenses.
type ProjectPolicy int

const (
	// DetachExpenses clears the project reference; balance is unchanged.
	DetachExpenses ProjectPolicy = iota
	// PurgeExpenses deletes them and refunds their summed amount.
	PurgeExpenses
)

// Ledger is the single owner of the expense list and the running balance.
// It is not safe for concurrent use; the service layer serializes access.
type Ledger struct {
	balance        int64 // cents
	expenses       []core.Expense
	members        []core.Member
	projects       []core.Project
	sources        []string
	paymentMethods []string

	now func() time.Time
}

// New returns an empty ledger starting at the given balance.
func New(openingBalanceCents int64) *Ledger {
	return &Ledger{balance: openingBalanceCents, now: time.Now}
}

// SetClock overrides the time source. Used by tests.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// Balance returns the current balance in cents.
func (l *Ledger) Balance() core.Money {
	return core.Money{Cents: l.balance}
}

// Expenses returns a copy of the expense list, newest first.
func (l *Ledger) Expenses() []core.Expense {
	out := make([]core.Expense, len(l.expenses))
	copy(out, l.expenses)
	return out
}

// Members returns a copy of the member list.
func (l *Ledger) Members() []core.Member {
	out := make([]core.Member, len(l.members))
	copy(out, l.members)
	return out
}

// Projects returns a copy of the project list.
func (l *Ledger) Projects() []core.Project {
	out := make([]core.Project, len(l.projects))
	copy(out, l.projects)
	return out
}

// Sources returns a copy of the known source labels.
func (l *Ledger) Sources() []string {
	return append([]string(nil), l.sources...)
}

// PaymentMethods returns a copy of the known payment method labels.
func (l *Ledger) PaymentMethods() []string {
	return append([]string(nil), l.paymentMethods...)
}

// AddExpense validates the draft, creates an expense with a fresh id and
// timestamp, prepends it, and decreases the balance by the amount.
func (l *Ledger) AddExpense(draft core.Draft) (core.Expense, error) {
	if err := draft.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	e := core.Expense{
		ID:            core.NewID(),
		Amount:        draft.Amount,
		Date:          draft.Date,
		Source:        strings.TrimSpace(draft.Source),
		PaymentMethod: strings.TrimSpace(draft.PaymentMethod),
		MemberIDs:     append([]string(nil), draft.MemberIDs...),
		ProjectID:     draft.ProjectID,
		Notes:         draft.Notes,
		CreatedAt:     l.now(),
	}

	l.expenses = append([]core.Expense{e}, l.expenses...)
	l.balance -= e.Amount.Cents
	l.rememberLabels(e.Source, e.PaymentMethod)
	return e, nil
}

// UpdateExpense replaces every field of the identified expense except its
// id and creation timestamp, adjusting the balance by the amount delta.
func (l *Ledger) UpdateExpense(id string, draft core.Draft) (core.Expense, error) {
	if err := draft.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	idx := l.indexOf(id)
	if idx < 0 {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", id, core.ErrNotFound)
	}

	old := l.expenses[idx]
	updated := core.Expense{
		ID:            old.ID,
		Amount:        draft.Amount,
		Date:          draft.Date,
		Source:        strings.TrimSpace(draft.Source),
		PaymentMethod: strings.TrimSpace(draft.PaymentMethod),
		MemberIDs:     append([]string(nil), draft.MemberIDs...),
		ProjectID:     draft.ProjectID,
		Notes:         draft.Notes,
		CreatedAt:     old.CreatedAt,
	}

	l.expenses[idx] = updated
	// Delta only; never re-derive the balance from the whole list.
	l.balance += old.Amount.Cents - updated.Amount.Cents
	l.rememberLabels(updated.Source, updated.PaymentMethod)
	return updated, nil
}

// DeleteExpense removes the expense and refunds its full amount.
func (l *Ledger) DeleteExpense(id string) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("delete expense %s: %w", id, core.ErrNotFound)
	}
	refund := l.expenses[idx].Amount.Cents
	l.expenses = append(l.expenses[:idx], l.expenses[idx+1:]...)
	l.balance += refund
	return nil
}

// DeleteCategory removes a label from the source or payment method catalog.
// Expenses using the label are kept or reassigned to the sentinel label
// according to the policy; the balance never changes.
func (l *Ledger) DeleteCategory(label string, field CategoryField, policy CategoryPolicy) error {
	var catalog *[]string
	switch field {
	case FieldSource:
		catalog = &l.sources
	case FieldPaymentMethod:
		catalog = &l.paymentMethods
	default:
		return fmt.Errorf("delete category: unknown field %q", field)
	}

	*catalog = removeLabel(*catalog, label)

	if policy == ReassignExpenses {
		for i := range l.expenses {
			switch field {
			case FieldSource:
				if l.expenses[i].Source == label {
					l.expenses[i].Source = core.Uncategorized
				}
			case FieldPaymentMethod:
				if l.expenses[i].PaymentMethod == label {
					l.expenses[i].PaymentMethod = core.Uncategorized
				}
			}
		}
	}
	return nil
}

// DeleteProject removes the project. Detach clears the reference on its
// expenses; Purge deletes them and refunds their summed amount in one step.
func (l *Ledger) DeleteProject(id string, policy ProjectPolicy) error {
	found := false
	for i, p := range l.projects {
		if p.ID == id {
			l.projects = append(l.projects[:i], l.projects[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("delete project %s: %w", id, core.ErrNotFound)
	}

	switch policy {
	case DetachExpenses:
		for i := range l.expenses {
			if l.expenses[i].ProjectID == id {
				l.expenses[i].ProjectID = ""
			}
		}
	case PurgeExpenses:
		var refund int64
		kept := l.expenses[:0]
		for _, e := range l.expenses {
			if e.ProjectID == id {
				refund += e.Amount.Cents
				continue
			}
			kept = append(kept, e)
		}
		l.expenses = kept
		l.balance += refund
	}
	return nil
}

// AddMember registers a household member with a fresh id.
func (l *Ledger) AddMember(name, role string) (core.Member, error) {
	m := core.Member{ID: core.NewID(), Name: strings.TrimSpace(name), Role: strings.TrimSpace(role)}
	if err := m.Validate(); err != nil {
		return core.Member{}, fmt.Errorf("add member: %w", err)
	}
	l.members = append(l.members, m)
	return m, nil
}

// UpdateMember replaces the name and role of an existing member.
func (l *Ledger) UpdateMember(id, name, role string) (core.Member, error) {
	for i, m := range l.members {
		if m.ID != id {
			continue
		}
		updated := core.Member{ID: id, Name: strings.TrimSpace(name), Role: strings.TrimSpace(role)}
		if err := updated.Validate(); err != nil {
			return core.Member{}, fmt.Errorf("update member: %w", err)
		}
		l.members[i] = updated
		return updated, nil
	}
	return core.Member{}, fmt.Errorf("update member %s: %w", id, core.ErrNotFound)
}

// RemoveMember deletes the member. Expenses referencing it keep the id;
// attribution reports the dangling share under "Other".
func (l *Ledger) RemoveMember(id string) error {
	for i, m := range l.members {
		if m.ID == id {
			l.members = append(l.members[:i], l.members[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove member %s: %w", id, core.ErrNotFound)
}

// AddProject registers a project and, as the views expect, makes its name
// available as a source label if it is not one already.
func (l *Ledger) AddProject(name, description, notes string) (core.Project, error) {
	p := core.Project{ID: core.NewID(), Name: strings.TrimSpace(name), Description: description, Notes: notes}
	if err := p.Validate(); err != nil {
		return core.Project{}, fmt.Errorf("add project: %w", err)
	}
	l.projects = append(l.projects, p)
	if !containsFold(l.sources, p.Name) {
		l.sources = append(l.sources, p.Name)
	}
	return p, nil
}

// AddCategory registers a new source or payment method label.
func (l *Ledger) AddCategory(label string, field CategoryField) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Errorf("add category: %w", core.ErrEmptyName)
	}
	switch field {
	case FieldSource:
		if !containsFold(l.sources, label) {
			l.sources = append(l.sources, label)
		}
	case FieldPaymentMethod:
		if !containsFold(l.paymentMethods, label) {
			l.paymentMethods = append(l.paymentMethods, label)
		}
	default:
		return fmt.Errorf("add category: unknown field %q", field)
	}
	return nil
}

func (l *Ledger) indexOf(id string) int {
	for i, e := range l.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) rememberLabels(source, method string) {
	if source != "" && !containsFold(l.sources, source) {
		l.sources = append(l.sources, source)
	}
	if method != "" && !containsFold(l.paymentMethods, method) {
		l.paymentMethods = append(l.paymentMethods, method)
	}
}

func removeLabel(labels []string, label string) []string {
	out := labels[:0]
	for _, v := range labels {
		if v != label {
			out = append(out, v)
		}
	}
	return out
}

func containsFold(labels []string, label string) bool {
	for _, v := range labels {
		if strings.EqualFold(v, label) {
			return true
		}
	}
	return false
}
