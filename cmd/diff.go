package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"treedelta.dev/pkg/treedelta/internal/domain"
	m "treedelta.dev/pkg/treedelta/internal/model"
)

const diffLongDescription = `Compute the edit script that turns SOURCE into DESTINATION.

SOURCE and DESTINATION are two files or two directories. Directories are
compared file by file; files present on one side only are reported as added
or removed.

--filter keeps the actions an expression accepts. The expression sees Kind,
Type, Label, NewLabel, ParentType and Position, e.g.

  treedelta diff --filter 'Kind == "Move" && Type == "FuncDecl"' old.go new.go`

var (
	diffFilterFlag     string
	diffVerifyFlag     bool
	diffSaveFlag       string
	diffSourceDiffFlag bool
	diffParallelFlag   int
)

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff SOURCE DESTINATION",
		Short: "Print the edit script between two files or directories",
		Long:  diffLongDescription,
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			display, err := displayArgs()
			if err != nil {
				return err
			}

			return workflow.Diff(context.Background(), domain.DiffArgs{
				Source:      m.Path(args[0]),
				Destination: m.Path(args[1]),
				Options:     matchOptions(),
				Display:     display,
				Filter:      diffFilterFlag,
				Verify:      viper.GetBool(diffVerifyKey),
				SourceDiff:  diffSourceDiffFlag,
				Save:        m.Path(diffSaveFlag),
				Parallel:    viper.GetInt(diffParallelKey),
			})
		},
	}

	configureDiffFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func configureDiffFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&diffFilterFlag, filterFlagName, "", "expression selecting the actions to show")
	cmd.Flags().StringVar(&diffSaveFlag, saveFlagName, "", "save the reports to a .json or .yaml file, .lz4 suffix compresses")
	cmd.Flags().BoolVar(&diffSourceDiffFlag, sourceDiffFlagName, false, "append a unified line diff of the inputs")

	cmd.Flags().BoolVar(&diffVerifyFlag, verifyFlagName, defaultDiffVerify, "replay each edit script and fail unless it reproduces the destination")
	bindFlagToConfig(cmd.Flags().Lookup(verifyFlagName), diffVerifyKey)

	cmd.Flags().IntVarP(&diffParallelFlag, parallelFlagName, "p", defaultDiffParallel, "file pairs diffed at once when comparing directories")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), diffParallelKey)
}
