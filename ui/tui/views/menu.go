package views

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"tablegraph/ui/tui/styles"
)

// MenuOptions are the top-level pages in selection order.
var MenuOptions = []string{
	"Convert Database to Graph",
	"Ask Questions (Dual Path)",
	"Schema Browser",
	"Graph Statistics",
}

// RenderMenu draws the animated main menu.
func RenderMenu(props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render("TABLEGRAPH // RELATIONAL → KNOWLEDGE GRAPH")

	var menuItems []string
	listStartY := 6

	for i, option := range MenuOptions {
		// Spring cursor: items near the animated position pop out.
		dist := math.Abs(float64(i) - props.AnimCursor)
		selectionStrength := 0.0
		if dist < 1.0 {
			selectionStrength = 1.0 - dist
		}

		itemCenterY := listStartY + (i * 3) + 1
		mouseDistY := math.Abs(float64(props.MouseY - itemCenterY))

		borderColor := styles.BaseColor
		if mouseDistY < 10 && (1.0-mouseDistY/10.0) > 0.5 {
			borderColor = lipgloss.Color("#aaa")
		}
		if selectionStrength > 0.1 || i == props.MenuCursor {
			borderColor = styles.BrandColor
		}

		popOut := int(selectionStrength * 2)
		boxStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1).
			MarginLeft(2 + popOut).
			Width(40)

		if i == props.MenuCursor {
			boxStyle = boxStyle.Bold(true).Foreground(lipgloss.Color("#FFF"))
		} else {
			boxStyle = boxStyle.Foreground(lipgloss.Color("#AAA"))
		}

		text := fmt.Sprintf("%02d. %s", i+1, option)
		menuItems = append(menuItems, zone.Mark(fmt.Sprintf("menu_%d", i), boxStyle.Render(text)))
	}

	menuContent := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(2).Foreground(styles.BrandColor).Render("WORKBENCH"),
		styles.CopyStyle.Render("Infer a knowledge graph from any relational database."),
		lipgloss.JoinVertical(lipgloss.Left, menuItems...),
	)

	controls := lipgloss.NewStyle().Foreground(lipgloss.Color("#333")).
		Render("\n[↑/↓] Navigate • [Enter] Select • [Q] Quit")
	footer := lipgloss.NewStyle().PaddingLeft(2).Render(controls)

	body := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(1, 0).MarginTop(1).Render(menuContent),
		footer,
	)

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, header, body))
}
