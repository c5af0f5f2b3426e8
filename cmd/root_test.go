package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treedelta.dev/pkg/treedelta/internal/controller"
	"treedelta.dev/pkg/treedelta/internal/domain/matching"
)

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "treedelta", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, rootLongDescription, cmd.Long)

	for _, name := range []string{
		formatFlagName, noTreesFlagName, labelDiffFlagName, noColorFlagName, verboseFlagName,
		minAnchorFlagName, similarityFlagName, labelSimFlagName, pairRootsFlagName, matchWorkersFlagName,
	} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_HelpOutput(t *testing.T) {
	cmd, _, out := newTestRoot(t, newDiffCmd())

	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "edit script")
	assert.Contains(t, out.String(), "diff")
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"diff", "match", "parse", "view", "init", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestInit(t *testing.T) {
	assert.NotNil(t, ui)
	assert.NotNil(t, parserRegistry)
	assert.NotNil(t, sourceFSAdapter)
	assert.NotNil(t, reportStore)
	assert.NotNil(t, workflow)

	assert.True(t, parserRegistry.Supports("main.go"))
	assert.True(t, parserRegistry.Supports("tree.yaml"))
}

func TestMatchOptions_Defaults(t *testing.T) {
	_ = newRootCmd()

	assert.Equal(t, matching.DefaultOptions(), matchOptions())
}

func TestDisplayArgs(t *testing.T) {
	_ = newRootCmd()

	args, err := displayArgs()
	require.NoError(t, err)
	assert.Equal(t, controller.FormatText, args.Format)
	assert.False(t, args.NoTrees)

	t.Setenv("TREEDELTA_DISPLAY_FORMAT", "json")
	t.Setenv("TREEDELTA_DISPLAY_NO_TREES", "true")

	args, err = displayArgs()
	require.NoError(t, err)
	assert.Equal(t, controller.FormatJSON, args.Format)
	assert.True(t, args.NoTrees)

	t.Setenv("TREEDELTA_DISPLAY_FORMAT", "html")

	_, err = displayArgs()
	assert.Error(t, err)
}

func TestExecute(t *testing.T) {
	originalRootCmd := rootCmd
	defer func() { rootCmd = originalRootCmd }()

	mockCmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	mockCmd.SetOut(&bytes.Buffer{})
	mockCmd.SetErr(&bytes.Buffer{})

	rootCmd = mockCmd

	Execute()
}

func TestExecute_ProcessLevel_Failure(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS_FAIL") == "1" {
		originalRootCmd := rootCmd
		mockCmd := &cobra.Command{
			Use: "test",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(os.Stderr, "error occurred")
				return fmt.Errorf("command failed")
			},
		}
		mockCmd.SetOut(os.Stdout)
		mockCmd.SetErr(os.Stderr)
		rootCmd = mockCmd
		defer func() { rootCmd = originalRootCmd }()

		Execute()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestExecute_ProcessLevel_Failure")
	cmd.Env = append(os.Environ(), "TEST_EXECUTE_SUBPROCESS_FAIL=1")
	output, err := cmd.CombinedOutput()

	require.Error(t, err)

	if exitErr, ok := err.(*exec.ExitError); ok {
		assert.Equal(t, 1, exitErr.ExitCode())
	} else {
		assert.Fail(t, "expected exec.ExitError", "got %T", err)
	}

	assert.Contains(t, string(output), "error occurred")
}
