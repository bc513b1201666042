// Package convert drives a full conversion run: introspect the relational
// source, infer relationships, and materialize the graph.
package convert

import (
	"context"
	"fmt"
	"log/slog"

	"tablegraph/internal/graph"
	"tablegraph/internal/infer"
	"tablegraph/internal/source"
)

// Reference records one accepted reference edge kind.
type Reference struct {
	SourceTable string
	Column      string
	TargetTable string
	Rule        infer.Rule
	Ratio       float64
	EdgeCount   int
}

// Category records one table's categorical column.
type Category struct {
	Table      string
	Column     string
	ValueCount int
}

// Summary is the result of a conversion run. Deterministic given identical
// source contents.
type Summary struct {
	Tables             []string
	Schemas            map[string]*source.TableSchema
	TotalRows          int64
	NodeCount          int
	ReferenceEdgeCount int
	References         []Reference
	Categories         []Category
}

// Converter owns one conversion pipeline. Runs are sequential and rebuild
// the whole graph; a single writer per target graph is assumed.
type Converter struct {
	src    *source.Source
	engine *infer.Engine
	store  graph.Store
	logger *slog.Logger
}

// New creates a Converter.
func New(src *source.Source, engine *infer.Engine, store graph.Store, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{src: src, engine: engine, store: store, logger: logger}
}

// ConvertAllTables converts every table of the source into the graph:
// one node per row, one edge kind per inferred reference, one shared
// category node per distinct categorical value.
func (c *Converter) ConvertAllTables(ctx context.Context) (*Summary, error) {
	info, err := c.src.Introspect(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store.Reset(ctx); err != nil {
		return nil, err
	}

	summary := &Summary{
		Tables:    info.Tables,
		Schemas:   info.Schemas,
		TotalRows: info.TotalRows,
	}

	// Phase 1: all entity nodes first, so every later edge has both
	// endpoints available.
	tableRows := make(map[string][]source.Row, len(info.Tables))
	for _, table := range info.Tables {
		schema := info.Schemas[table]

		rows, err := c.src.ScanTable(ctx, table)
		if err != nil {
			return nil, err
		}
		tableRows[table] = rows

		count, err := c.upsertNodes(ctx, schema, rows)
		if err != nil {
			return nil, err
		}
		summary.NodeCount += count

		if err := c.store.DeclareUniqueConstraint(ctx, table, schema.PrimaryKey); err != nil {
			return nil, err
		}
		c.logger.Info("created entity nodes", "table", table, "nodes", count)
	}

	// Phase 2: reference edges for every ordered table pair, including the
	// self-pair. A failed pair is logged and skipped, never fatal.
	for _, src := range info.Tables {
		for _, target := range info.Tables {
			ref := c.materializeReference(ctx, info.Schemas[src], info.Schemas[target], tableRows[src])
			if ref != nil {
				summary.References = append(summary.References, *ref)
				summary.ReferenceEdgeCount += ref.EdgeCount
			}
		}
	}

	// Phase 3: categorical value nodes, at most one column per table.
	for _, table := range info.Tables {
		cat, err := c.engine.DetectCategorical(ctx, info.Schemas[table])
		if err != nil {
			c.logger.Warn("categorical detection failed", "table", table, "error", err)
			continue
		}
		if cat == nil || len(cat.Values) == 0 {
			continue
		}
		if err := c.store.UpsertCategoryEdges(ctx, table, cat.Column, cat.Values); err != nil {
			c.logger.Warn("categorical materialization failed",
				"table", table, "column", cat.Column, "error", err)
			continue
		}
		summary.Categories = append(summary.Categories, Category{
			Table:      table,
			Column:     cat.Column,
			ValueCount: len(cat.Values),
		})
		c.logger.Info("created category nodes",
			"table", table, "column", cat.Column, "values", len(cat.Values))
	}

	return summary, nil
}

// upsertNodes converts rows to sanitized property maps and merges them.
// Rows with a null primary key cannot be identified and are skipped.
func (c *Converter) upsertNodes(ctx context.Context, schema *source.TableSchema, rows []source.Row) (int, error) {
	props := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if row[schema.PrimaryKey].IsNull() {
			c.logger.Warn("skipping row with null key", "table", schema.Name, "key", schema.PrimaryKey)
			continue
		}
		node := make(map[string]any, len(row))
		for col, val := range row {
			if val.IsNull() {
				continue
			}
			node[graph.SafeIdentifier(col)] = val.Native()
		}
		props = append(props, node)
	}

	count, err := c.store.UpsertEntityNodes(ctx, schema.Name, schema.PrimaryKey, props)
	if err != nil {
		return 0, fmt.Errorf("materialize %s: %w", schema.Name, err)
	}
	return count, nil
}

// materializeReference probes one (source, target) pair and, on a match,
// merges an edge per row with a non-null reference value. Rows whose target
// node is missing are dropped by the store, not counted, not an error.
func (c *Converter) materializeReference(ctx context.Context, src, target *source.TableSchema, rows []source.Row) *Reference {
	det := c.engine.DetectReference(ctx, src, target)
	switch det.Outcome {
	case infer.Matched:
	case infer.Inconclusive:
		c.logger.Warn("reference detection inconclusive",
			"source", src.Name, "target", target.Name, "column", det.Column, "reason", det.Reason)
		return nil
	default:
		return nil
	}

	var pairs []graph.KeyPair
	for _, row := range rows {
		sourceID := row[src.PrimaryKey]
		targetID := row[det.Column]
		if sourceID.IsNull() || targetID.IsNull() {
			continue
		}
		pairs = append(pairs, graph.KeyPair{SourceID: sourceID.Native(), TargetID: targetID.Native()})
	}

	spec := graph.EdgeSpec{
		SourceLabel: src.Name,
		SourceKey:   src.PrimaryKey,
		TargetLabel: target.Name,
		TargetKey:   target.PrimaryKey,
		Column:      det.Column,
	}
	count, err := c.store.UpsertReferenceEdges(ctx, spec, pairs)
	if err != nil {
		c.logger.Warn("reference materialization failed",
			"source", src.Name, "target", target.Name, "column", det.Column, "error", err)
		return nil
	}

	c.logger.Info("created reference edges",
		"source", src.Name, "column", det.Column, "target", target.Name,
		"rule", string(det.Rule), "ratio", det.Ratio, "edges", count)

	return &Reference{
		SourceTable: src.Name,
		Column:      det.Column,
		TargetTable: target.Name,
		Rule:        det.Rule,
		Ratio:       det.Ratio,
		EdgeCount:   count,
	}
}
