package cmd

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"treedelta.dev/pkg/treedelta/internal/controller"
	"treedelta.dev/pkg/treedelta/internal/domain"
	m "treedelta.dev/pkg/treedelta/internal/model"
)

func TestViewCmd_ReportPathIsPassedThrough(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRoot(t, newViewCmd())

	mockWorkflow.On("View", mock.Anything, mock.MatchedBy(func(args domain.ViewArgs) bool {
		return args.Reports == m.Path("out/reports.yaml") &&
			args.Display.Format == controller.FormatSummary
	})).Return(nil)

	cmd.SetArgs([]string{"view", "out/reports.yaml", "--format", "summary"})
	require.NoError(t, cmd.Execute())
}

func TestViewCmd_RequiresReportPath(t *testing.T) {
	cmd, _, _ := newTestRoot(t, newViewCmd())

	cmd.SetArgs([]string{"view"})
	require.Error(t, cmd.Execute())
}
