// Package infer decides which columns of a table reference another table's
// key and which column of a table is categorical, using only column names
// and value overlap. No declared foreign-key metadata is consulted.
package infer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tablegraph/internal/source"
)

// Outcome classifies one attempted reference detection.
type Outcome int

const (
	// NotMatched means no column of the source qualifies.
	NotMatched Outcome = iota
	// Matched means a column was accepted as a reference to the target key.
	Matched
	// Inconclusive means a candidate existed but its verification query
	// failed; the pair is treated as non-matching and the run continues.
	Inconclusive
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Inconclusive:
		return "inconclusive"
	default:
		return "not_matched"
	}
}

// Rule names the detection rule that produced a match.
type Rule string

const (
	RuleNamePattern Rule = "name_pattern"
	RuleCardinality Rule = "cardinality"
)

// Detection is the result of probing one (source, target) table pair.
type Detection struct {
	Outcome Outcome
	Column  string
	Rule    Rule
	Ratio   float64
	Reason  string
}

// Config holds the inference tunables.
type Config struct {
	// SampleLimit is how many distinct values the name-pattern rule samples.
	SampleLimit int
	// FallbackSampleLimit is how many values the cardinality rule samples.
	FallbackSampleLimit int
	// MatchThreshold is the minimum value-overlap ratio for the
	// name-pattern rule. The cardinality rule accepts any overlap.
	MatchThreshold float64
	// CardinalityRatio is the distinct-to-total ratio below which a column
	// is considered reference-like.
	CardinalityRatio float64
	// CategoryValueLimit caps distinct values per categorical column.
	CategoryValueLimit int
}

// DefaultConfig returns the tuning the detection rules were calibrated on.
func DefaultConfig() Config {
	return Config{
		SampleLimit:         10,
		FallbackSampleLimit: 5,
		MatchThreshold:      0.3,
		CardinalityRatio:    0.1,
		CategoryValueLimit:  20,
	}
}

// categoricalPriority is the fixed priority list of attribute names checked
// for categorical treatment. First name present in a table wins; at most
// one categorical column is processed per table.
var categoricalPriority = []string{
	"department", "city", "category", "status", "type",
	"name", "product", "country", "genre", "title",
}

// Engine runs the detection rules against a relational source.
type Engine struct {
	src    *source.Source
	cfg    Config
	logger *slog.Logger
}

// New creates an Engine. A zero-valued Config is replaced with defaults.
func New(src *source.Source, cfg Config, logger *slog.Logger) *Engine {
	if cfg.SampleLimit == 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{src: src, cfg: cfg, logger: logger}
}

// DetectReference decides whether some column of src references target's
// primary key. First matching rule wins. A failed verification query marks
// the pair Inconclusive instead of failing the run.
func (e *Engine) DetectReference(ctx context.Context, src, target *source.TableSchema) Detection {
	selfPair := src.Name == target.Name
	patterns := []string{
		strings.ToLower(target.Name) + "_id",
		strings.ToLower(target.PrimaryKey),
	}

	var inconclusive *Detection

	// Rule 1: name pattern, verified by value overlap.
	for _, col := range src.Columns {
		if selfPair && col.Name == src.PrimaryKey {
			continue
		}
		colLower := strings.ToLower(col.Name)
		if !containsAny(colLower, patterns) {
			continue
		}

		values, err := e.src.DistinctValues(ctx, src.Name, col.Name, e.cfg.SampleLimit)
		if err != nil {
			inconclusive = e.inconclusive(src.Name, col.Name, err)
			continue
		}
		if len(values) == 0 {
			continue
		}

		matched, err := e.src.CountMatching(ctx, target.Name, target.PrimaryKey, values)
		if err != nil {
			inconclusive = e.inconclusive(src.Name, col.Name, err)
			continue
		}

		ratio := float64(matched) / float64(len(values))
		if ratio > e.cfg.MatchThreshold {
			return Detection{Outcome: Matched, Column: col.Name, Rule: RuleNamePattern, Ratio: ratio}
		}
	}

	// Rule 2: low cardinality suggests a reference rather than a free
	// attribute. Looser acceptance: any overlap at all.
	for _, col := range src.Columns {
		if selfPair && col.Name == src.PrimaryKey {
			continue
		}

		distinct, err := e.src.CountDistinct(ctx, src.Name, col.Name)
		if err != nil {
			inconclusive = e.inconclusive(src.Name, col.Name, err)
			continue
		}
		if distinct <= 1 || float64(distinct) >= float64(src.RowCount)*e.cfg.CardinalityRatio {
			continue
		}

		values, err := e.src.DistinctValues(ctx, src.Name, col.Name, e.cfg.FallbackSampleLimit)
		if err != nil {
			inconclusive = e.inconclusive(src.Name, col.Name, err)
			continue
		}
		if len(values) == 0 {
			continue
		}

		matched, err := e.src.CountMatching(ctx, target.Name, target.PrimaryKey, values)
		if err != nil {
			inconclusive = e.inconclusive(src.Name, col.Name, err)
			continue
		}
		if matched > 0 {
			ratio := float64(matched) / float64(len(values))
			return Detection{Outcome: Matched, Column: col.Name, Rule: RuleCardinality, Ratio: ratio}
		}
	}

	if inconclusive != nil {
		return *inconclusive
	}
	return Detection{Outcome: NotMatched}
}

func (e *Engine) inconclusive(table, column string, err error) *Detection {
	e.logger.Warn("reference verification failed",
		"table", table, "column", column, "error", err)
	return &Detection{
		Outcome: Inconclusive,
		Column:  column,
		Reason:  fmt.Sprintf("verification query failed: %v", err),
	}
}

// Categorical holds the designated categorical column of a table and its
// distinct non-empty values, capped at CategoryValueLimit.
type Categorical struct {
	Column string
	Values []string
}

// DetectCategorical picks at most one categorical column per table from the
// fixed priority list. Returns nil when no listed name is present.
func (e *Engine) DetectCategorical(ctx context.Context, schema *source.TableSchema) (*Categorical, error) {
	column := ""
	for _, cand := range categoricalPriority {
		for _, col := range schema.Columns {
			if strings.ToLower(col.Name) == cand {
				column = col.Name
				break
			}
		}
		if column != "" {
			break
		}
	}
	if column == "" {
		return nil, nil
	}

	raw, err := e.src.DistinctValues(ctx, schema.Name, column, e.cfg.CategoryValueLimit)
	if err != nil {
		return nil, fmt.Errorf("categorical values %s.%s: %w", schema.Name, column, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		text := strings.TrimSpace(v.String())
		if text == "" {
			continue
		}
		values = append(values, text)
		if len(values) == e.cfg.CategoryValueLimit {
			break
		}
	}

	return &Categorical{Column: column, Values: values}, nil
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}
