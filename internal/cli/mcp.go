package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tablegraph/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run as an MCP server over stdio",
		Long: `Exposes conversion, dual-path question answering, raw Cypher
queries, and schema introspection as MCP tools for LLM clients.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := mcpserver.NewServer(ctx, mcpserver.Config{
				ServerName:    "tablegraph",
				ServerVersion: Version,
				SourcePath:    cfg.Source.Path,
				GeminiAPIKey:  cfg.Gemini.APIKey,
				GeminiModel:   cfg.Gemini.Model,
				Neo4jURI:      cfg.Neo4j.URI,
				Neo4jUser:     cfg.Neo4j.Username,
				Neo4jPassword: cfg.Neo4j.Password,
				Neo4jDatabase: cfg.Neo4j.Database,
				Inference:     cfg.InferConfig(),
			}, logger)
			if err != nil {
				return err
			}
			defer srv.Close(ctx)

			return srv.Start(ctx)
		},
	}
}
