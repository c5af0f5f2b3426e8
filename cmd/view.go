package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"treedelta.dev/pkg/treedelta/internal/domain"
	m "treedelta.dev/pkg/treedelta/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view REPORT",
		Short: "View reports saved by diff --save",
		Long:  "Display the reports of a file written by diff --save (.json or .yaml, optionally .lz4).",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			display, err := displayArgs()
			if err != nil {
				return err
			}

			return workflow.View(context.Background(), domain.ViewArgs{
				Reports: m.Path(args[0]),
				Display: display,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
