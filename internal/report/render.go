package report

import (
	"strings"
	"time"
)

const tabularSeparator = ";"

var chapterTitles = map[Dimension]string{
	Chronological: "EXPENSES IN CHRONOLOGICAL ORDER",
	ByMember:      "EXPENSES BY HOUSEHOLD MEMBER",
	BySource:      "EXPENSES BY SOURCE",
	ByProject:     "EXPENSES BY PROJECT",
}

// RenderTabular renders the report as ";"-delimited rows for spreadsheet
// import: a header row, one row per expense, subtotal and total rows.
func (r Report) RenderTabular() string {
	var b strings.Builder
	b.WriteString(strings.Join([]string{"date", "member", "source", "amount", "notes"}, tabularSeparator))
	b.WriteString("\n")
	for _, g := range r.Groups {
		for _, line := range g.Lines {
			b.WriteString(strings.Join([]string{
				line.Date.String(),
				line.Members,
				line.Source,
				line.Amount.Format(),
				line.Notes,
			}, tabularSeparator))
			b.WriteString("\n")
		}
		if g.Label != "" {
			b.WriteString("SUBTOTAL " + g.Label + tabularSeparator + g.Subtotal.Format() + "\n")
		}
	}
	b.WriteString("TOTAL" + tabularSeparator + r.GrandTotal.Format() + "\n")
	return b.String()
}

// RenderNarrative renders the report as chaptered plain text in the style
// of the exported household statement.
func (r Report) RenderNarrative() string {
	var b strings.Builder
	b.WriteString(chapterTitles[r.Dimension] + "\n")
	for _, g := range r.Groups {
		if g.Label != "" {
			b.WriteString("\n> " + strings.ToUpper(g.Label) + "\n")
		}
		for _, line := range g.Lines {
			b.WriteString(line.Date.String() + "  " + line.Members + "  " + line.Source + "  " + line.Amount.Format())
			if line.Notes != "" {
				b.WriteString("  (" + line.Notes + ")")
			}
			b.WriteString("\n")
		}
		if g.Label != "" {
			b.WriteString("TOTAL " + g.Label + ": " + g.Subtotal.Format() + "\n")
		}
	}
	b.WriteString("GRAND TOTAL: " + r.GrandTotal.Format() + "\n")
	return b.String()
}

// FullStatement renders every dimension as one narrative document, the
// four-chapter export offered by the share screen.
func FullStatement(reports []Report, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("HOUSEHOLD FINANCE STATEMENT\n")
	b.WriteString("Date: " + generatedAt.Format("2006-01-02 15:04") + "\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	for i, r := range reports {
		b.WriteString("\nCHAPTER " + string(rune('1'+i)) + ": ")
		b.WriteString(r.RenderNarrative())
	}
	b.WriteString("\n" + strings.Repeat("=", 50) + "\n")
	b.WriteString("END OF STATEMENT\n")
	return b.String()
}
