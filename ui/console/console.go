// Package console renders a conversion report in a compact ANSI format.
package console

import (
	"fmt"
	"io"
	"strings"

	"tablegraph/internal/convert"
	"tablegraph/internal/infer"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Print renders the conversion summary to the writer.
func Print(w io.Writer, summary *convert.Summary) {
	fmt.Fprintf(w, "%s%s %s%s\n", colorCyan, "■", "TABLEGRAPH CONVERSION REPORT", colorReset)

	fmt.Fprintf(w, "%s─ Tables%s\n", colorCyan, colorReset)
	for _, table := range summary.Tables {
		schema := summary.Schemas[table]
		label := table
		if len(label) > 20 {
			label = label[:17] + "..."
		}
		dots := strings.Repeat("·", 22-len(label))
		fmt.Fprintf(w, "  %s%s%s %6d rows  key=%s\n",
			label, colorCyan+dots+colorReset, "", schema.RowCount, schema.PrimaryKey)
	}

	if len(summary.References) > 0 {
		fmt.Fprintf(w, "%s─ Inferred references%s\n", colorCyan, colorReset)
		for _, ref := range summary.References {
			marker := colorGreen + "✓" + colorReset
			if ref.Rule == infer.RuleCardinality {
				marker = colorYellow + "~" + colorReset
			}
			fmt.Fprintf(w, "  %s %s.%s → %s  (%.0f%% overlap, %d edges)\n",
				marker, ref.SourceTable, ref.Column, ref.TargetTable, ref.Ratio*100, ref.EdgeCount)
		}
	}

	if len(summary.Categories) > 0 {
		fmt.Fprintf(w, "%s─ Categories%s\n", colorCyan, colorReset)
		for _, cat := range summary.Categories {
			fmt.Fprintf(w, "  %s%s%s %s.%s → %d category nodes\n",
				colorGreen, "✓", colorReset, cat.Table, cat.Column, cat.ValueCount)
		}
	}

	fmt.Fprintf(w, "%s─ Summary%s: %d tables | %d rows | %d nodes | %d reference edges\n\n",
		colorCyan, colorReset,
		len(summary.Tables), summary.TotalRows, summary.NodeCount, summary.ReferenceEdgeCount)
}
