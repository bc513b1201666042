// Package mcpserver exposes conversion and dual-path querying as MCP tools
// over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"tablegraph/internal/convert"
	"tablegraph/internal/graph"
	"tablegraph/internal/infer"
	"tablegraph/internal/llm"
	"tablegraph/internal/orchestrator"
	"tablegraph/internal/source"
)

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
	SourcePath    string
	GeminiAPIKey  string
	GeminiModel   string // Model key: flash, pro, flash-2, experimental
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string
	Inference     infer.Config
}

// Server wraps the MCP server with tablegraph capabilities.
type Server struct {
	mcpServer *mcp.Server
	cfg       Config
	store     graph.Store
	llmClient *llm.Client
	logger    *slog.Logger
}

// NewServer creates a new MCP server instance.
func NewServer(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	llmClient, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	store, err := graph.NewNeo4jStore(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase, logger)
	if err != nil {
		llmClient.Close()
		return nil, fmt.Errorf("failed to create neo4j store: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}

	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		cfg:       cfg,
		store:     store,
		llmClient: llmClient,
		logger:    logger,
	}
	s.registerTools()
	return s, nil
}

// ConvertArgs defines the input for the convert_database tool.
type ConvertArgs struct {
	SourcePath string `json:"source_path,omitempty" jsonschema:"path to the database file; defaults to the configured source"`
}

// ConvertResult summarizes a conversion run.
type ConvertResult struct {
	Tables             []string `json:"tables" jsonschema:"converted tables"`
	TotalRows          int64    `json:"total_rows" jsonschema:"total rows across tables"`
	NodeCount          int      `json:"node_count" jsonschema:"entity nodes created"`
	ReferenceEdgeCount int      `json:"reference_edge_count" jsonschema:"reference edges created"`
}

// AskArgs defines the input for the ask_database tool.
type AskArgs struct {
	Question string `json:"question" jsonschema:"the question to answer over both query paths"`
}

// PathAnswer is one query path's answer.
type PathAnswer struct {
	Method      string `json:"method" jsonschema:"query path"`
	Query       string `json:"query" jsonschema:"generated query"`
	RowCount    int    `json:"row_count" jsonschema:"result rows"`
	Answer      string `json:"answer" jsonschema:"synthesized answer"`
	Explanation string `json:"explanation,omitempty" jsonschema:"degradation explanation if the query failed"`
}

// AskResult carries both answers.
type AskResult struct {
	SQL   PathAnswer `json:"sql_path" jsonschema:"relational path answer"`
	Graph PathAnswer `json:"graph_path" jsonschema:"graph path answer"`
}

// QueryGraphArgs defines the input for the query_graph tool.
type QueryGraphArgs struct {
	Cypher string `json:"cypher" jsonschema:"Cypher query to execute"`
}

// QueryGraphResult wraps graph query results.
type QueryGraphResult struct {
	Data any `json:"data" jsonschema:"query results"`
}

// SchemaArgs defines the input for the get_schema tool.
type SchemaArgs struct {
	Table string `json:"table,omitempty" jsonschema:"when set, only this table's relational schema is described"`
}

// SchemaResult describes both the relational and graph schemas.
type SchemaResult struct {
	SQLSchema         string   `json:"sql_schema" jsonschema:"relational schema description"`
	GraphLabels       []string `json:"graph_labels" jsonschema:"node labels in the graph"`
	RelationshipTypes []string `json:"relationship_types" jsonschema:"relationship types in the graph"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "convert_database",
		Description: "Convert a relational database into a knowledge graph: one node per row, inferred reference edges between tables, and shared category nodes. Rebuilds the whole graph.",
	}, s.handleConvert)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "ask_database",
		Description: "Answer a natural-language question over both the relational database (SQL) and the knowledge graph (Cypher). Always returns an answer per path, degraded to schema knowledge if a query fails.",
	}, s.handleAsk)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_graph",
		Description: "Execute Cypher queries directly on the Neo4j graph. Node labels are the source table names plus Category.",
	}, s.handleQueryGraph)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_schema",
		Description: "Describe the relational schema and the materialized graph schema (labels and relationship types).",
	}, s.handleGetSchema)
}

func (s *Server) openSource(path string) (*source.Source, error) {
	if path == "" {
		path = s.cfg.SourcePath
	}
	return source.New(path)
}

func (s *Server) handleConvert(ctx context.Context, _ *mcp.CallToolRequest, args ConvertArgs) (*mcp.CallToolResult, ConvertResult, error) {
	src, err := s.openSource(args.SourcePath)
	if err != nil {
		return nil, ConvertResult{}, err
	}

	engine := infer.New(src, s.cfg.Inference, s.logger)
	converter := convert.New(src, engine, s.store, s.logger)

	summary, err := converter.ConvertAllTables(ctx)
	if err != nil {
		return nil, ConvertResult{}, fmt.Errorf("conversion failed: %w", err)
	}

	return nil, ConvertResult{
		Tables:             summary.Tables,
		TotalRows:          summary.TotalRows,
		NodeCount:          summary.NodeCount,
		ReferenceEdgeCount: summary.ReferenceEdgeCount,
	}, nil
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, args AskArgs) (*mcp.CallToolResult, AskResult, error) {
	src, err := s.openSource("")
	if err != nil {
		return nil, AskResult{}, err
	}

	orch, err := orchestrator.New(ctx, src, s.store, s.llmClient, s.logger)
	if err != nil {
		return nil, AskResult{}, fmt.Errorf("orchestrator init failed: %w", err)
	}

	answer := orch.Ask(ctx, args.Question)
	return nil, AskResult{
		SQL:   toPathAnswer(answer.SQL),
		Graph: toPathAnswer(answer.Graph),
	}, nil
}

func toPathAnswer(r orchestrator.PathResult) PathAnswer {
	return PathAnswer{
		Method:      r.Method,
		Query:       r.Query,
		RowCount:    r.RowCount,
		Answer:      r.Answer,
		Explanation: r.Explanation,
	}
}

func (s *Server) handleQueryGraph(ctx context.Context, _ *mcp.CallToolRequest, args QueryGraphArgs) (*mcp.CallToolResult, QueryGraphResult, error) {
	result, err := s.store.ExecuteCypher(ctx, args.Cypher)
	if err != nil {
		return nil, QueryGraphResult{}, fmt.Errorf("cypher query failed: %w", err)
	}
	return nil, QueryGraphResult{Data: result}, nil
}

func (s *Server) handleGetSchema(ctx context.Context, _ *mcp.CallToolRequest, args SchemaArgs) (*mcp.CallToolResult, SchemaResult, error) {
	src, err := s.openSource("")
	if err != nil {
		return nil, SchemaResult{}, err
	}

	var result SchemaResult
	if args.Table != "" {
		schema, err := src.Schema(ctx, args.Table)
		if err != nil {
			return nil, SchemaResult{}, err
		}
		if len(schema.Columns) == 0 {
			return nil, SchemaResult{}, fmt.Errorf("unknown table %q", args.Table)
		}
		cols := make([]string, len(schema.Columns))
		for i, col := range schema.Columns {
			cols[i] = col.Name
		}
		result.SQLSchema = fmt.Sprintf("Table `%s`: %s", schema.Name, strings.Join(cols, ", "))
	} else {
		info, err := src.Introspect(ctx)
		if err != nil {
			return nil, SchemaResult{}, err
		}
		result.SQLSchema = orchestrator.SQLSchemaText(info)
	}

	catalog, err := s.store.Catalog(ctx)
	if err != nil {
		s.logger.Warn("graph catalogue unavailable", "error", err)
		return nil, result, nil
	}
	for _, l := range catalog.Labels {
		result.GraphLabels = append(result.GraphLabels, l.Label)
	}
	result.RelationshipTypes = catalog.RelationshipTypes
	return nil, result, nil
}

// Start runs the MCP server on stdio until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting tablegraph MCP server on stdio")
	transport := &mcp.StdioTransport{}
	return s.mcpServer.Run(ctx, transport)
}

// Close releases the graph store handle and the LLM client.
func (s *Server) Close(ctx context.Context) error {
	if s.llmClient != nil {
		s.llmClient.Close()
	}
	if s.store != nil {
		return s.store.Close(ctx)
	}
	return nil
}
