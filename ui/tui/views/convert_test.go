package views

import (
	"errors"
	"strings"
	"testing"
	"time"

	"tablegraph/internal/convert"
	"tablegraph/ui/tui/state"
)

func TestRenderConvertShowsCompletionTime(t *testing.T) {
	s := state.AppState{
		Summary: &convert.Summary{
			Tables:             []string{"customers", "orders"},
			TotalRows:          120,
			NodeCount:          120,
			ReferenceEdgeCount: 100,
		},
		LastConvert: time.Date(2026, 8, 30, 14, 7, 33, 0, time.UTC),
	}

	out := RenderConvert(s, "", ViewProps{Width: 80})
	if !strings.Contains(out, "2 tables, 120 rows") {
		t.Errorf("missing summary line in:\n%s", out)
	}
	if !strings.Contains(out, "completed 14:07:33") {
		t.Errorf("missing completion time in:\n%s", out)
	}
}

func TestRenderConvertWithoutRun(t *testing.T) {
	out := RenderConvert(state.AppState{}, "", ViewProps{Width: 80})
	if !strings.Contains(out, "Press Enter") {
		t.Errorf("missing idle prompt in:\n%s", out)
	}
	if strings.Contains(out, "completed") {
		t.Errorf("unexpected completion time before any run:\n%s", out)
	}
}

func TestRenderConvertError(t *testing.T) {
	s := state.AppState{Err: errors.New("neo4j unreachable")}
	out := RenderConvert(s, "", ViewProps{Width: 80})
	if !strings.Contains(out, "neo4j unreachable") {
		t.Errorf("missing error in:\n%s", out)
	}
}
