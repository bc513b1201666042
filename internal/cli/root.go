// Package cli provides the tablegraph command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tablegraph/internal/config"
	"tablegraph/internal/graph"
	"tablegraph/internal/source"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

var (
	cfgFile    string
	sourceFlag string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tablegraph",
		Short: "tablegraph - relational database to knowledge graph converter",
		Long: `tablegraph infers a knowledge graph from any relational database
without declared foreign-key metadata: one node per row, reference edges
detected from column names and value overlap, and shared category nodes
for low-cardinality attributes.

Questions are answered over both the relational form (SQL) and the graph
form (Cypher), each path always producing an answer.`,
		Version: fmt.Sprintf("%s (%s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			if sourceFlag != "" {
				cfg.Source.Path = sourceFlag
			}
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default tablegraph.yaml)")
	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "", "database file to operate on")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newConvertCmd(),
		newAskCmd(),
		newTUICmd(),
		newMCPCmd(),
		newSampleCmd(),
	)
	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func openSource() (*source.Source, error) {
	if cfg.Source.Path == "" {
		return nil, fmt.Errorf("no source database configured (use --source or set source.path)")
	}
	return source.New(cfg.Source.Path,
		source.WithThreads(cfg.Source.Threads),
		source.WithMemoryLimit(cfg.Source.MemoryLimitGB),
	)
}

func openStore() (*graph.Neo4jStore, error) {
	return graph.NewNeo4jStore(
		cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database, logger)
}
