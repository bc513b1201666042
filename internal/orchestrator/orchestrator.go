// Package orchestrator answers a natural-language question over both the
// relational source and the materialized graph. Every question yields two
// answers; execution failures degrade to schema-only answers instead of
// propagating.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tablegraph/internal/graph"
	"tablegraph/internal/source"
)

const (
	// MethodSQL and MethodGraph name the two query paths.
	MethodSQL   = "SQL"
	MethodGraph = "Knowledge Graph"

	// cypherResultLimit bounds graph path result sets.
	cypherResultLimit = 50

	// fallbackGraphSchema is used when the catalogue query itself fails.
	fallbackGraphSchema = "Knowledge graph with multiple connected entities"
)

// Generator is the text-generation surface the orchestrator consumes.
type Generator interface {
	GenerateSQL(ctx context.Context, question, schema string) (string, error)
	GenerateCypher(ctx context.Context, question, schema string) (string, error)
	SynthesizeAnswer(ctx context.Context, question string, rows []map[string]any, method string) (string, error)
	FallbackAnswer(ctx context.Context, question, schema, method string) (string, error)
}

// PathResult is the structured outcome of one query path.
type PathResult struct {
	Method      string
	Query       string
	Rows        []map[string]any
	RowCount    int
	Answer      string
	Explanation string
	Degraded    bool
}

// DualAnswer carries one result per path.
type DualAnswer struct {
	SQL   PathResult
	Graph PathResult
}

// Orchestrator executes the dual-path query flow.
type Orchestrator struct {
	src    *source.Source
	store  graph.Store
	llm    Generator
	logger *slog.Logger
	info   *source.SchemaInfo
}

// New creates an Orchestrator. The source schema is introspected once up
// front so every question reuses the same schema description.
func New(ctx context.Context, src *source.Source, store graph.Store, llm Generator, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := src.Introspect(ctx)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{src: src, store: store, llm: llm, logger: logger, info: info}, nil
}

// Ask runs both paths. It never returns an error: a failed path degrades to
// a schema-only answer with an explanation.
func (o *Orchestrator) Ask(ctx context.Context, question string) *DualAnswer {
	return &DualAnswer{
		SQL:   o.sqlPath(ctx, question),
		Graph: o.graphPath(ctx, question),
	}
}

func (o *Orchestrator) sqlPath(ctx context.Context, question string) PathResult {
	result := PathResult{Method: MethodSQL}
	schema := SQLSchemaText(o.info)

	query, err := o.llm.GenerateSQL(ctx, question, schema)
	if err != nil {
		return o.degrade(ctx, result, question, schema, fmt.Errorf("query generation failed: %w", err))
	}
	result.Query = query

	rows, err := o.src.Query(ctx, query)
	if err != nil {
		return o.degrade(ctx, result, question, schema, err)
	}
	result.Rows = rowsToMaps(rows)
	result.RowCount = len(result.Rows)

	answer, err := o.llm.SynthesizeAnswer(ctx, question, result.Rows, result.Method)
	if err != nil {
		return o.degrade(ctx, result, question, schema, fmt.Errorf("answer synthesis failed: %w", err))
	}
	result.Answer = answer
	return result
}

func (o *Orchestrator) graphPath(ctx context.Context, question string) PathResult {
	result := PathResult{Method: MethodGraph}
	schema := o.graphSchemaText(ctx)

	query, err := o.llm.GenerateCypher(ctx, question, schema)
	if err != nil {
		return o.degrade(ctx, result, question, schema, fmt.Errorf("query generation failed: %w", err))
	}
	result.Query = boundCypher(query)

	rows, err := o.store.ExecuteCypher(ctx, result.Query)
	if err != nil {
		return o.degrade(ctx, result, question, schema, err)
	}
	result.Rows = rows
	result.RowCount = len(rows)

	answer, err := o.llm.SynthesizeAnswer(ctx, question, rows, result.Method)
	if err != nil {
		return o.degrade(ctx, result, question, schema, fmt.Errorf("answer synthesis failed: %w", err))
	}
	result.Answer = answer
	return result
}

// degrade fills a failed path with a schema-only answer. If even the
// fallback generation fails, the explanation still reaches the caller.
func (o *Orchestrator) degrade(ctx context.Context, result PathResult, question, schema string, cause error) PathResult {
	o.logger.Warn("query path degraded", "method", result.Method, "error", cause)

	result.Rows = nil
	result.RowCount = 0
	result.Degraded = true
	result.Explanation = fmt.Sprintf("Query failed: %v - using schema knowledge", cause)

	answer, err := o.llm.FallbackAnswer(ctx, question, schema, result.Method)
	if err != nil {
		o.logger.Warn("fallback answer failed", "method", result.Method, "error", err)
		result.Answer = "Unable to generate an answer for this path."
		return result
	}
	result.Answer = answer
	return result
}

// SQLSchemaText renders a one-line-per-table schema description.
func SQLSchemaText(info *source.SchemaInfo) string {
	var b strings.Builder
	for _, table := range info.Tables {
		schema := info.Schemas[table]
		cols := make([]string, len(schema.Columns))
		for i, col := range schema.Columns {
			cols[i] = col.Name
		}
		fmt.Fprintf(&b, "Table `%s`: %s\n", table, strings.Join(cols, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (o *Orchestrator) graphSchemaText(ctx context.Context) string {
	catalog, err := o.store.Catalog(ctx)
	if err != nil {
		o.logger.Warn("graph catalogue unavailable", "error", err)
		return fallbackGraphSchema
	}

	labels := make([]string, len(catalog.Labels))
	for i, l := range catalog.Labels {
		labels[i] = l.Label
	}
	return fmt.Sprintf("Nodes: %s\nRelationships: %s",
		strings.Join(labels, ", "), strings.Join(catalog.RelationshipTypes, ", "))
}

// boundCypher appends a result cap when the generated query lacks one.
func boundCypher(query string) string {
	if strings.Contains(strings.ToUpper(query), "LIMIT") {
		return query
	}
	return fmt.Sprintf("%s LIMIT %d", query, cypherResultLimit)
}

func rowsToMaps(rows []source.Row) []map[string]any {
	if rows == nil {
		return nil
	}
	result := make([]map[string]any, len(rows))
	for i, row := range rows {
		m := make(map[string]any, len(row))
		for col, val := range row {
			m[col] = val.Native()
		}
		result[i] = m
	}
	return result
}
