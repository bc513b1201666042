package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tablegraph/ui/tui/state"
	"tablegraph/ui/tui/styles"
)

// RenderSchema draws the introspected table schemas.
func RenderSchema(s state.AppState, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render("SCHEMA BROWSER")

	if s.Summary == nil {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			styles.CopyStyle.Render("Run a conversion first to introspect the source."))
	}

	var cards []string
	for _, table := range s.Summary.Tables {
		schema := s.Summary.Schemas[table]

		var b strings.Builder
		fmt.Fprintf(&b, "%s  (%d rows)\n", table, schema.RowCount)
		for _, col := range schema.Columns {
			marker := "  "
			if col.Name == schema.PrimaryKey {
				marker = "🔑"
			}
			fmt.Fprintf(&b, " %s %-20s %s\n", marker, col.Name, col.DeclaredType)
		}
		cards = append(cards, styles.CardStyle.Render(strings.TrimRight(b.String(), "\n")))
	}

	controls := lipgloss.NewStyle().Foreground(lipgloss.Color("#333")).Render("[Esc] Back")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinVertical(lipgloss.Left, cards...),
		lipgloss.NewStyle().PaddingLeft(2).Render(controls),
	)
}
