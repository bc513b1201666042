package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tablegraph/internal/llm"
	"tablegraph/internal/orchestrator"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question over both the SQL and the graph path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			src, err := openSource()
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			llmClient, err := llm.NewClient(cmd.Context(), cfg.Gemini.APIKey, cfg.Gemini.Model)
			if err != nil {
				return err
			}
			defer llmClient.Close()

			orch, err := orchestrator.New(cmd.Context(), src, store, llmClient, logger)
			if err != nil {
				return err
			}

			answer := orch.Ask(cmd.Context(), question)
			printPath(answer.SQL)
			printPath(answer.Graph)
			return nil
		},
	}
}

func printPath(r orchestrator.PathResult) {
	fmt.Printf("── %s ──\n", r.Method)
	fmt.Printf("Query: %s\n", r.Query)
	if r.Degraded {
		fmt.Printf("(%s)\n", r.Explanation)
	}
	if len(r.Rows) > 0 {
		printRows(r.Rows)
	}
	fmt.Printf("Answer: %s\n\n", r.Answer)
}

// printRows renders result rows with a stable column order.
func printRows(rows []map[string]any) {
	var cols []string
	for col := range rows[0] {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(header)
	for _, row := range rows {
		out := make(table.Row, len(cols))
		for i, col := range cols {
			out[i] = row[col]
		}
		t.AppendRow(out)
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
