// Package tui is the interactive workbench: convert a source, browse its
// schema, inspect graph statistics, and ask dual-path questions.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"tablegraph/internal/convert"
	"tablegraph/internal/graph"
	"tablegraph/internal/orchestrator"
	"tablegraph/ui/tui/state"
	"tablegraph/ui/tui/styles"
	"tablegraph/ui/tui/views"
)

// ConvertRunner runs one full conversion.
type ConvertRunner interface {
	ConvertAllTables(ctx context.Context) (*convert.Summary, error)
}

// Asker answers a question over both query paths.
type Asker interface {
	Ask(ctx context.Context, question string) *orchestrator.DualAnswer
}

// CatalogReader reads the materialized graph catalogue.
type CatalogReader interface {
	Catalog(ctx context.Context) (*graph.Catalog, error)
}

// Deps wires the workbench to the pipeline.
type Deps struct {
	Converter ConvertRunner
	Asker     Asker
	Catalog   CatalogReader
}

// MainModel is the Bubble Tea model acting as the controller.
type MainModel struct {
	deps       Deps
	state      state.AppState
	spinner    spinner.Model
	input      textinput.Model
	nodeChart  barchart.Model
	menuCursor int
	animCursor float64
	velocity   float64
	spring     harmonica.Spring
	mouseX     int
	mouseY     int
	quitting   bool
	width      int
	height     int
}

// Messages
type AnimateMsg time.Time
type ConversionDoneMsg struct {
	Summary *convert.Summary
	Err     error
}
type AnswerMsg struct {
	Question string
	Answer   *orchestrator.DualAnswer
}
type CatalogMsg struct {
	Catalog *graph.Catalog
	Err     error
}

func InitialModel(deps Deps) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.BrandColor)

	input := textinput.New()
	input.Placeholder = "Ask about your data..."
	input.CharLimit = 300

	spring := harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9)

	return MainModel{
		deps:    deps,
		spinner: s,
		input:   input,
		spring:  spring,
		state:   state.AppState{CurrentPage: state.PageMenu},
	}
}

func (m *MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	return tea.Batch(m.spinner.Tick, animateCmd())
}

// Commands
func animateCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*16, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

func convertCmd(runner ConvertRunner) tea.Cmd {
	return func() tea.Msg {
		summary, err := runner.ConvertAllTables(context.Background())
		return ConversionDoneMsg{Summary: summary, Err: err}
	}
}

func askCmd(asker Asker, question string) tea.Cmd {
	return func() tea.Msg {
		return AnswerMsg{Question: question, Answer: asker.Ask(context.Background(), question)}
	}
}

func catalogCmd(reader CatalogReader) tea.Cmd {
	return func() tea.Msg {
		catalog, err := reader.Catalog(context.Background())
		return CatalogMsg{Catalog: catalog, Err: err}
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case AnimateMsg:
		var v float64 = m.velocity
		m.animCursor, v = m.spring.Update(m.animCursor, float64(m.menuCursor), v)
		m.velocity = v
		return m, animateCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 8
		return m, nil

	case ConversionDoneMsg:
		m.state.Converting = false
		m.state.Err = msg.Err
		if msg.Err == nil {
			m.state.Summary = msg.Summary
			m.state.LastConvert = time.Now()
			return m, catalogCmd(m.deps.Catalog)
		}
		return m, nil

	case AnswerMsg:
		m.state.Asking = false
		m.state.Exchanges = append(m.state.Exchanges, state.Exchange{
			Question: msg.Question,
			Answer:   msg.Answer,
			AskedAt:  time.Now(),
		})
		return m, nil

	case CatalogMsg:
		if msg.Err == nil {
			m.state.Catalog = msg.Catalog
			m.rebuildChart()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// The chat input swallows printable keys, so quit shortcuts come first.
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state.CurrentPage {
	case state.PageMenu:
		switch key {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.menuCursor > 0 {
				m.menuCursor--
			}
		case "down", "j":
			if m.menuCursor < len(views.MenuOptions)-1 {
				m.menuCursor++
			}
		case "enter":
			return m, m.navigateTo(m.menuCursor)
		}
		return m, nil

	case state.PageChat:
		switch key {
		case "esc":
			m.input.Blur()
			m.state.CurrentPage = state.PageMenu
			return m, nil
		case "enter":
			question := m.input.Value()
			if question == "" || m.state.Asking {
				return m, nil
			}
			m.input.Reset()
			m.state.Asking = true
			return m, askCmd(m.deps.Asker, question)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case state.PageConvert:
		if key == "enter" && !m.state.Converting {
			m.state.Converting = true
			m.state.Err = nil
			return m, convertCmd(m.deps.Converter)
		}
	}

	if key == "b" || key == "esc" || key == "backspace" {
		m.state.CurrentPage = state.PageMenu
	}
	return m, nil
}

func (m *MainModel) navigateTo(cursor int) tea.Cmd {
	switch cursor {
	case 0:
		m.state.CurrentPage = state.PageConvert
	case 1:
		m.state.CurrentPage = state.PageChat
		return m.input.Focus()
	case 2:
		m.state.CurrentPage = state.PageSchema
	case 3:
		m.state.CurrentPage = state.PageStats
		return catalogCmd(m.deps.Catalog)
	}
	return nil
}

func (m *MainModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.mouseX = msg.X
	m.mouseY = msg.Y

	if msg.Action == tea.MouseActionRelease && m.state.CurrentPage == state.PageMenu {
		for i := range views.MenuOptions {
			if zone.Get(fmt.Sprintf("menu_%d", i)).InBounds(msg) {
				m.menuCursor = i
				return m, m.navigateTo(i)
			}
		}
	}
	return m, nil
}

func (m *MainModel) rebuildChart() {
	width := m.width/2 - 8
	if width < 20 {
		width = 20
	}
	bc := barchart.New(width, 10)
	for _, lc := range m.state.Catalog.Labels {
		bc.Push(barchart.BarData{
			Label: lc.Label,
			Values: []barchart.BarValue{{
				Name:  lc.Label,
				Value: float64(lc.Count),
				Style: lipgloss.NewStyle().Foreground(styles.BrandColor),
			}},
		})
	}
	bc.Draw()
	m.nodeChart = bc
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	props := views.ViewProps{
		Width:      m.width,
		Height:     m.height,
		MenuCursor: m.menuCursor,
		AnimCursor: m.animCursor,
		MouseX:     m.mouseX,
		MouseY:     m.mouseY,
	}

	switch m.state.CurrentPage {
	case state.PageConvert:
		return views.RenderConvert(m.state, m.spinner.View(), props)
	case state.PageChat:
		return views.RenderChat(m.state, m.input.View(), m.spinner.View(), props)
	case state.PageSchema:
		return views.RenderSchema(m.state, props)
	case state.PageStats:
		return views.RenderStats(m.state, m.nodeChart.View(), props)
	default:
		return views.RenderMenu(props)
	}
}

// Start runs the workbench until the user quits.
func Start(deps Deps) error {
	m := InitialModel(deps)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
