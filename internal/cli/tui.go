package cli

import (
	"github.com/spf13/cobra"

	"tablegraph/internal/convert"
	"tablegraph/internal/infer"
	"tablegraph/internal/llm"
	"tablegraph/internal/orchestrator"
	"tablegraph/ui/tui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive terminal workbench",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			src, err := openSource()
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			llmClient, err := llm.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
			if err != nil {
				return err
			}
			defer llmClient.Close()

			engine := infer.New(src, cfg.InferConfig(), logger)
			converter := convert.New(src, engine, store, logger)

			orch, err := orchestrator.New(ctx, src, store, llmClient, logger)
			if err != nil {
				return err
			}

			return tui.Start(tui.Deps{
				Converter: converter,
				Asker:     orch,
				Catalog:   store,
			})
		},
	}
}
