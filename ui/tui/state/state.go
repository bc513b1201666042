package state

import (
	"time"

	"tablegraph/internal/convert"
	"tablegraph/internal/graph"
	"tablegraph/internal/orchestrator"
)

type Page int

const (
	PageMenu Page = iota
	PageConvert
	PageChat
	PageSchema
	PageStats
)

// Exchange is one question with its two answers.
type Exchange struct {
	Question string
	Answer   *orchestrator.DualAnswer
	AskedAt  time.Time
}

// AppState holds the current snapshot of the application.
type AppState struct {
	Summary     *convert.Summary
	Catalog     *graph.Catalog
	Exchanges   []Exchange
	Err         error
	LastConvert time.Time
	CurrentPage Page
	Converting  bool
	Asking      bool
}
