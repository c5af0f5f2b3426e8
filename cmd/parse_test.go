package cmd

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"treedelta.dev/pkg/treedelta/internal/controller"
	"treedelta.dev/pkg/treedelta/internal/domain"
	m "treedelta.dev/pkg/treedelta/internal/model"
)

func TestParseCmd(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRoot(t, newParseCmd())

	mockWorkflow.On("Parse", mock.Anything, mock.MatchedBy(func(args domain.ParseArgs) bool {
		return args.Path == m.Path("main.go") && args.Display.Format == controller.FormatYAML
	})).Return(nil)

	cmd.SetArgs([]string{"parse", "main.go", "--format", "yaml"})
	require.NoError(t, cmd.Execute())
}

func TestParseCmd_TreeFormat(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRoot(t, newParseCmd())

	mockWorkflow.On("Parse", mock.Anything, mock.MatchedBy(func(args domain.ParseArgs) bool {
		return args.Display.Format == controller.FormatTree
	})).Return(nil)

	cmd.SetArgs([]string{"parse", "x.tree", "--format", "tree"})
	require.NoError(t, cmd.Execute())
}

func TestParseCmd_RejectsExtraArgs(t *testing.T) {
	cmd, _, _ := newTestRoot(t, newParseCmd())

	cmd.SetArgs([]string{"parse", "a.go", "b.go"})
	require.Error(t, cmd.Execute())
}
