package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tablegraph/ui/tui/state"
	"tablegraph/ui/tui/styles"
)

// RenderConvert draws the conversion page: progress while running, the
// inference report once done.
func RenderConvert(s state.AppState, spinnerView string, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render("CONVERT // FULL GRAPH REBUILD")

	if s.Converting {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			lipgloss.NewStyle().Padding(1, 2).Render(
				fmt.Sprintf("%s introspecting, inferring relationships, materializing...", spinnerView)))
	}

	if s.Err != nil {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			lipgloss.NewStyle().Padding(1, 2).Foreground(lipgloss.Color("#e06c75")).
				Render("Conversion failed: "+s.Err.Error()))
	}

	if s.Summary == nil {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			styles.CopyStyle.Render("Press Enter to convert the configured source."))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d tables, %d rows → %d nodes, %d reference edges\n",
		len(s.Summary.Tables), s.Summary.TotalRows, s.Summary.NodeCount, s.Summary.ReferenceEdgeCount)
	if !s.LastConvert.IsZero() {
		fmt.Fprintf(&b, "completed %s\n", s.LastConvert.Format("15:04:05"))
	}
	b.WriteString("\n")

	for _, ref := range s.Summary.References {
		fmt.Fprintf(&b, "  %s.%s → %s  (%.0f%%, %d edges, %s)\n",
			ref.SourceTable, ref.Column, ref.TargetTable, ref.Ratio*100, ref.EdgeCount, ref.Rule)
	}
	for _, cat := range s.Summary.Categories {
		fmt.Fprintf(&b, "  %s.%s → %d categories\n", cat.Table, cat.Column, cat.ValueCount)
	}

	controls := lipgloss.NewStyle().Foreground(lipgloss.Color("#333")).
		Render("[Enter] Re-run • [Esc] Back")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		styles.CardStyle.Render(strings.TrimRight(b.String(), "\n")),
		lipgloss.NewStyle().PaddingLeft(2).Render(controls),
	)
}
