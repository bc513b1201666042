package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tablegraph/internal/source"
)

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample <path>",
		Short: "Create a sample employees database for trying things out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := source.CreateSampleDatabase(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Sample database written to %s\n", args[0])
			fmt.Println("Try: tablegraph convert -s", args[0])
			return nil
		},
	}
}
