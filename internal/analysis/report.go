package analysis

import (
	"fmt"
	"strings"
)

// Markdown renders a compact inspection report of a prepared table.
func (r *Result) Markdown(name string) string {
	var b strings.Builder
	b.WriteString("[LEASE DATASET]\n")
	if name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d (retained %d, dropped %d without coordinates)\n", r.RowsRead, r.RowsRetained, r.RowsRead-r.RowsRetained))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", r.Frame.Ncol()))

	b.WriteString("[COLUMN RESOLUTION]\n")
	for _, role := range Roles {
		col, ok := r.Columns[role]
		if !ok {
			col = "(none)"
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", role, safeName(col)))
	}

	b.WriteString("\n[DERIVED COLUMNS]\n")
	writeDerived(&b, SafetyColumn, r.Safety)
	writeDerived(&b, AccessibilityColumn, r.Access)
	writeDerived(&b, SquareFootageColumn, r.SquareFeet)

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeDerived(b *strings.Builder, name string, c ColumnReport) {
	src := safeName(c.Source)
	if c.Source == "" {
		src = "(none)"
	}
	b.WriteString(fmt.Sprintf("- %s <- %s", name, src))
	if c.Neutral {
		b.WriteString(" (neutral default)")
	}
	if c.Filled > 0 {
		b.WriteString(fmt.Sprintf("; filled %d missing with mean", c.Filled))
	}
	if c.Rescaled {
		b.WriteString("; rescaled to [0,1]")
	}
	if c.Result.Count > 0 {
		b.WriteString(fmt.Sprintf(", min %.4g, mean %.4g, max %.4g", c.Result.Min, c.Result.Mean, c.Result.Max))
	}
	b.WriteString("\n")
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
