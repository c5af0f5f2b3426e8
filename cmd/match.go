package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"treedelta.dev/pkg/treedelta/internal/domain"
	m "treedelta.dev/pkg/treedelta/internal/model"
)

// matchCmd represents the match command.
var matchCmd = newMatchCmd()

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match SOURCE DESTINATION",
		Short: "Print the node mapping between two files",
		Long:  "Match the nodes of two files and print the pairs without computing an edit script.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			display, err := displayArgs()
			if err != nil {
				return err
			}

			return workflow.Match(context.Background(), domain.MatchArgs{
				Source:      m.Path(args[0]),
				Destination: m.Path(args[1]),
				Options:     matchOptions(),
				Display:     display,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
