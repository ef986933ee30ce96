// Package report turns an expense list into a grouped, chronologically
// ordered report with per-group subtotals and a grand total. The grouping
// logic is shared by the tabular and narrative renderers; only the final
// string formatting differs.
package report

import (
	"sort"
	"strings"

	"financas/internal/core"
)

// Dimension selects the primary grouping of a report.
type Dimension string

const (
	Chronological Dimension = "chronological"
	ByMember      Dimension = "member"
	BySource      Dimension = "source"
	ByProject     Dimension = "project"
)

// NoProject labels the group collecting expenses with no project in a
// ByProject report, so every expense lands in exactly one group.
const NoProject = "No project"

// Line is one rendered expense row.
type Line struct {
	Date    core.Date
	Members string // joined attributed names, "Household" when none
	Source  string
	Amount  core.Money
	Notes   string
}

// Group is a labeled report section with its subtotal.
type Group struct {
	Label    string
	Lines    []Line
	Subtotal core.Money
}

// Report is the structured result; renderers turn it into strings.
type Report struct {
	Dimension  Dimension
	Groups     []Group
	GrandTotal core.Money
}

// Generate partitions the expenses along the chosen dimension. Groups are
// ordered by label; expenses inside each group are sorted by date ascending
// (creation time breaks ties), never by insertion order. An empty input
// yields a report with zero groups and a zero grand total.
func Generate(expenses []core.Expense, members []core.Member, projects []core.Project, dim Dimension) Report {
	r := Report{Dimension: dim}

	memberNames := make(map[string]string, len(members))
	for _, m := range members {
		memberNames[m.ID] = m.Name
	}
	projectNames := make(map[string]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}

	buckets := make(map[string][]core.Expense)
	var order []string
	add := func(label string, e core.Expense) {
		if _, seen := buckets[label]; !seen {
			order = append(order, label)
		}
		buckets[label] = append(buckets[label], e)
	}

	for _, e := range expenses {
		switch dim {
		case ByMember:
			add(memberLabel(e, memberNames), e)
		case BySource:
			add(e.Source, e)
		case ByProject:
			add(projectLabel(e, projectNames), e)
		default:
			add("", e)
		}
	}

	sort.Strings(order)
	for _, label := range order {
		group := Group{Label: label}
		exps := buckets[label]
		sort.SliceStable(exps, func(i, j int) bool {
			if !exps[i].Date.Equal(exps[j].Date.Time) {
				return exps[i].Date.Before(exps[j].Date)
			}
			return exps[i].CreatedAt.Before(exps[j].CreatedAt)
		})
		for _, e := range exps {
			group.Lines = append(group.Lines, Line{
				Date:    e.Date,
				Members: memberLabel(e, memberNames),
				Source:  e.Source,
				Amount:  e.Amount,
				Notes:   e.Notes,
			})
			group.Subtotal.Cents += e.Amount.Cents
		}
		r.GrandTotal.Cents += group.Subtotal.Cents
		r.Groups = append(r.Groups, group)
	}
	return r
}

// projectLabel names the expense's project group. Projectless expenses fall
// under NoProject; a dangling project id renders as "Other".
func projectLabel(e core.Expense, names map[string]string) string {
	if e.ProjectID == "" {
		return NoProject
	}
	if name, ok := names[e.ProjectID]; ok {
		return name
	}
	return core.BucketOther
}

// memberLabel joins every attributed member's name. Unknown ids render as
// "Other"; an empty set means the household at large.
func memberLabel(e core.Expense, names map[string]string) string {
	if len(e.MemberIDs) == 0 {
		return core.BucketHousehold
	}
	parts := make([]string, 0, len(e.MemberIDs))
	for _, id := range e.MemberIDs {
		if name, ok := names[id]; ok {
			parts = append(parts, name)
		} else {
			parts = append(parts, core.BucketOther)
		}
	}
	return strings.Join(parts, ", ")
}
