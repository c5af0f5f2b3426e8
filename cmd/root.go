// Package cmd provides the root command and CLI setup for treedelta.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"treedelta.dev/pkg/treedelta/internal/adapter"
	"treedelta.dev/pkg/treedelta/internal/controller"
	"treedelta.dev/pkg/treedelta/internal/domain"
)

var parserRegistry *adapter.ParserRegistry
var sourceFSAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var workflow domain.Workflow
var ui controller.UI

var (
	formatFlag    string
	noTreesFlag   bool
	labelDiffFlag bool
	noColorFlag   bool
	verboseFlag   bool

	minAnchorSizeFlag       int
	similarityThresholdFlag float64
	labelSimilarityFlag     float64
	pairRootsFlag           bool
	matchWorkersFlag        int
)

func init() {
	configureRootFlags(rootCmd)

	treeParser, err := adapter.NewTreeFileAdapter()
	cobra.CheckErr(err)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	parserRegistry = adapter.NewDefaultParserRegistry(
		adapter.NewGoFileAdapter(adapter.WithComments(viper.GetBool(parseCommentsKey))),
		treeParser,
	)
	sourceFSAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	workflow = domain.NewWorkflow(
		sourceFSAdapter,
		reportStore,
		ui,
		parserRegistry,
		domain.WithSpillFactory(newReportSpill),
	)
}

const rootLongDescription = `treedelta computes the edit script between two trees: a sequence of
Insert, Delete, Move and Update actions that turns the first tree into the
second.

Inputs are Go source files, tree descriptions (.yaml, .yml, .json) or
indented .tree files. Two directories are compared file by file.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "treedelta",
		Short:        "Structural diff of syntax trees",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd returns a fresh root command with the shared flags, for tests.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&formatFlag, formatFlagName, "f", viper.GetString(formatKey), "output format: text, summary, yaml, json, or tree for parse")
	bindFlagToConfig(flags.Lookup(formatFlagName), formatKey)

	flags.BoolVar(&noTreesFlag, noTreesFlagName, viper.GetBool(noTreesKey), "do not print the trees before the actions")
	bindFlagToConfig(flags.Lookup(noTreesFlagName), noTreesKey)

	flags.BoolVar(&labelDiffFlag, labelDiffFlagName, viper.GetBool(labelDiffKey), "show a character diff of old and new label on Update lines")
	bindFlagToConfig(flags.Lookup(labelDiffFlagName), labelDiffKey)

	flags.BoolVar(&noColorFlag, noColorFlagName, viper.GetBool(noColorKey), "disable colors")
	bindFlagToConfig(flags.Lookup(noColorFlagName), noColorKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.IntVar(&minAnchorSizeFlag, minAnchorFlagName, viper.GetInt(minAnchorSizeKey), "smallest subtree, in nodes, that may anchor the matching")
	bindFlagToConfig(flags.Lookup(minAnchorFlagName), minAnchorSizeKey)

	flags.Float64Var(&similarityThresholdFlag, similarityFlagName, viper.GetFloat64(similarityThresholdKey), "minimum dice coefficient for matching two containers")
	bindFlagToConfig(flags.Lookup(similarityFlagName), similarityThresholdKey)

	flags.Float64Var(&labelSimilarityFlag, labelSimFlagName, viper.GetFloat64(labelSimilarityKey), "minimum label ratio for matching two leaves with different labels")
	bindFlagToConfig(flags.Lookup(labelSimFlagName), labelSimilarityKey)

	flags.BoolVar(&pairRootsFlag, pairRootsFlagName, viper.GetBool(pairRootsKey), "pair the two roots up front when their types match")
	bindFlagToConfig(flags.Lookup(pairRootsFlagName), pairRootsKey)

	flags.IntVar(&matchWorkersFlag, matchWorkersFlagName, viper.GetInt(matchWorkersKey), "workers used to bucket subtrees while matching")
	bindFlagToConfig(flags.Lookup(matchWorkersFlagName), matchWorkersKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// displayArgs collects the display flags shared by every command.
func displayArgs() (domain.DisplayArgs, error) {
	format, err := controller.ParseFormat(viper.GetString(formatKey))
	if err != nil {
		return domain.DisplayArgs{}, err
	}

	return domain.DisplayArgs{
		Format:    format,
		NoTrees:   viper.GetBool(noTreesKey),
		LabelDiff: viper.GetBool(labelDiffKey),
		NoColor:   viper.GetBool(noColorKey),
	}, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
