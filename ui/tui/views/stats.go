package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tablegraph/ui/tui/state"
	"tablegraph/ui/tui/styles"
)

// RenderStats draws graph statistics around a pre-rendered node count chart.
func RenderStats(s state.AppState, chartView string, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render("GRAPH STATISTICS")

	if s.Catalog == nil {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			styles.CopyStyle.Render("Run a conversion first to populate the graph."))
	}

	chart := styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, "Nodes per label", chartView))

	rels := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		"Relationship types",
		strings.Join(s.Catalog.RelationshipTypes, "\n")))

	controls := lipgloss.NewStyle().Foreground(lipgloss.Color("#333")).Render("[Esc] Back")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, chart, rels),
		lipgloss.NewStyle().PaddingLeft(2).Render(controls),
	)
}
