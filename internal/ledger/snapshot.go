package ledger

import (
	"time"

	"financas/internal/core"
)

// Snapshot is the persistable value-copy of a ledger: the whole state the
// storage collaborator keeps as a blob keyed by user.
type Snapshot struct {
	BalanceCents   int64          `json:"balanceCents"`
	Expenses       []core.Expense `json:"expenses"`
	Members        []core.Member  `json:"members"`
	Projects       []core.Project `json:"projects"`
	Sources        []string       `json:"sources"`
	PaymentMethods []string       `json:"paymentMethods"`
	// ResetMonth is the "2006-01" month the ledger was last rolled over to.
	ResetMonth string `json:"resetMonth,omitempty"`
}

// Snapshot returns a deep copy of the current state.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		BalanceCents:   l.balance,
		Expenses:       l.Expenses(),
		Members:        l.Members(),
		Projects:       l.Projects(),
		Sources:        l.Sources(),
		PaymentMethods: l.PaymentMethods(),
	}
}

// Restore replaces the ledger state wholesale with the snapshot contents.
func (l *Ledger) Restore(s Snapshot) {
	l.balance = s.BalanceCents
	l.expenses = append([]core.Expense(nil), s.Expenses...)
	l.members = append([]core.Member(nil), s.Members...)
	l.projects = append([]core.Project(nil), s.Projects...)
	l.sources = append([]string(nil), s.Sources...)
	l.paymentMethods = append([]string(nil), s.PaymentMethods...)
}

// Rollover resets balance and expenses when the snapshot was taken in an
// earlier month, keeping members, projects and category catalogs. It
// returns the snapshot stamped with the current month and whether a reset
// happened.
func (s Snapshot) Rollover(now time.Time) (Snapshot, bool) {
	month := now.Format("2006-01")
	if s.ResetMonth == month {
		return s, false
	}
	s.BalanceCents = 0
	s.Expenses = nil
	s.ResetMonth = month
	return s, true
}
