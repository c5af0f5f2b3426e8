package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"treedelta.dev/pkg/treedelta/internal/domain"
	m "treedelta.dev/pkg/treedelta/internal/model"
)

// parseCmd represents the parse command.
var parseCmd = newParseCmd()

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the tree of one file",
		Long: `Parse FILE with the front end for its language and print the tree.

With --format yaml or json the tree is written as a nested description, and
with --format tree as an indented .tree file. treedelta reads both back as
input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			display, err := displayArgs()
			if err != nil {
				return err
			}

			return workflow.Parse(context.Background(), domain.ParseArgs{
				Path:    m.Path(args[0]),
				Display: display,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
