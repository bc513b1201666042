package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tablegraph/internal/orchestrator"
	"tablegraph/ui/tui/state"
	"tablegraph/ui/tui/styles"
)

// RenderChat draws the dual-path question view: history on top, input below.
func RenderChat(s state.AppState, inputView, spinnerView string, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render("ASK // SQL + GRAPH")

	var history []string
	for _, ex := range s.Exchanges {
		history = append(history, styles.QuestionStyle.Render("Q: "+ex.Question))
		if ex.Answer != nil {
			history = append(history, renderPath(ex.Answer.SQL))
			history = append(history, renderPath(ex.Answer.Graph))
		}
		history = append(history, "")
	}

	if s.Asking {
		history = append(history, fmt.Sprintf("%s thinking...", spinnerView))
	}

	// Keep the tail visible when the log outgrows the window.
	lines := strings.Split(strings.Join(history, "\n"), "\n")
	maxLines := props.Height - 8
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	input := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BrandColor).
		Padding(0, 1).
		Width(props.Width - 4).
		Render(inputView)

	controls := lipgloss.NewStyle().Foreground(lipgloss.Color("#333")).
		Render("[Enter] Ask • [Esc] Back")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n")),
		input,
		lipgloss.NewStyle().PaddingLeft(2).Render(controls),
	)
}

func renderPath(r orchestrator.PathResult) string {
	label := lipgloss.NewStyle().Bold(true).Foreground(styles.BrandColor).Render(r.Method)
	answer := styles.AnswerStyle.Render(r.Answer)

	parts := []string{fmt.Sprintf("%s (%d rows)", label, r.RowCount), answer}
	if r.Degraded {
		parts = append(parts, styles.DegradedStyle.Render("degraded: "+r.Explanation))
	}
	return strings.Join(parts, "\n")
}
