package cli

import (
	"os"

	"github.com/spf13/cobra"

	"tablegraph/internal/convert"
	"tablegraph/internal/infer"
	"tablegraph/ui/console"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Convert the source database into a knowledge graph",
		Long: `Convert introspects every table of the source database, infers
reference and categorical relationships, and rebuilds the target graph
from scratch. Re-running on unchanged data yields an identical graph.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := openSource()
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			engine := infer.New(src, cfg.InferConfig(), logger)
			converter := convert.New(src, engine, store, logger)

			summary, err := converter.ConvertAllTables(cmd.Context())
			if err != nil {
				return err
			}

			console.Print(os.Stdout, summary)
			return nil
		},
	}
}
