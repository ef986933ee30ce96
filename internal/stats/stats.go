// Package stats builds grouped spending totals over a filtered slice of
// the ledger. All group-bys come out of one pass over the expense list.
package stats

import (
	"time"

	"financas/internal/core"
	"financas/internal/search"
)

// Period selects the date window of a query, measured at query time.
type Period string

const (
	PeriodAll         Period = "all"
	PeriodLast7Days   Period = "7d"  // rolling, not calendar-aligned
	PeriodLast30Days  Period = "30d" // rolling, not calendar-aligned
	PeriodCurrentYear Period = "year"
	PeriodCustom      Period = "custom"
)

// MemberAll and MemberUnassigned are the non-id states of the member filter.
const (
	MemberAll        = "all"
	MemberUnassigned = "none"
)

// Filter describes one aggregation query. All active conditions are
// conjunctive. Zero values mean "no filtering" for their condition.
type Filter struct {
	Period Period
	// Start/End bound PeriodCustom, inclusive on both ends. A zero Date
	// leaves that side unbounded.
	Start core.Date
	End   core.Date

	// Member is MemberAll, MemberUnassigned or a specific member id.
	Member string
	// Source keeps only expenses with this exact source label.
	Source string
	// ProjectID keeps only expenses of this project.
	ProjectID string
	// Query keeps only expenses whose source or notes fuzzy-match it.
	Query string
}

// Summary is the result of one aggregation pass.
type Summary struct {
	// BySource sums amounts per source label, in cents.
	BySource map[string]int64
	// ByMember sums attribution shares per bucket label, in fractional
	// cents. Split expenses contribute a fraction to each bucket.
	ByMember map[string]float64
	// ByDay sums amounts per ISO date, in cents.
	ByDay map[string]int64

	TotalCents int64
	Count      int
}

// Compute filters the expense list and builds all three group-bys, the
// grand total and the count in a single scan. An empty filtered set is a
// valid result, not an error.
func Compute(expenses []core.Expense, members []core.Member, now time.Time, f Filter) Summary {
	s := Summary{
		BySource: make(map[string]int64),
		ByMember: make(map[string]float64),
		ByDay:    make(map[string]int64),
	}

	for _, e := range expenses {
		if !matches(e, now, f) {
			continue
		}
		s.BySource[e.Source] += e.Amount.Cents
		for bucket, share := range core.Attribute(e, members) {
			s.ByMember[bucket] += share
		}
		s.ByDay[e.Date.String()] += e.Amount.Cents
		s.TotalCents += e.Amount.Cents
		s.Count++
	}
	return s
}

// FilterExpenses returns the expenses the filter keeps, newest date first.
// The history view uses this alongside Compute.
func FilterExpenses(expenses []core.Expense, now time.Time, f Filter) []core.Expense {
	var out []core.Expense
	for _, e := range expenses {
		if matches(e, now, f) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e core.Expense, now time.Time, f Filter) bool {
	if !inPeriod(e.Date, now, f) {
		return false
	}
	switch f.Member {
	case "", MemberAll:
	case MemberUnassigned:
		if !e.Unassigned() {
			return false
		}
	default:
		if !e.Assigned(f.Member) {
			return false
		}
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if f.ProjectID != "" && e.ProjectID != f.ProjectID {
		return false
	}
	if f.Query != "" && !search.MatchAny(f.Query, e.Source, e.Notes) {
		return false
	}
	return true
}

func inPeriod(d core.Date, now time.Time, f Filter) bool {
	switch f.Period {
	case PeriodLast7Days:
		return now.Sub(d.Time) < 7*24*time.Hour
	case PeriodLast30Days:
		return now.Sub(d.Time) < 30*24*time.Hour
	case PeriodCurrentYear:
		return d.Year() == now.Year()
	case PeriodCustom:
		if !f.Start.IsZero() && d.Before(f.Start) {
			return false
		}
		if !f.End.IsZero() && f.End.Before(d) {
			return false
		}
		return true
	default:
		return true
	}
}
