package controller

import (
	"context"

	"github.com/spf13/cobra"

	m "treedelta.dev/pkg/treedelta/internal/model"
)

// SimpleUI implements UI by writing straight to the command's output.
type SimpleUI struct {
	cmd *cobra.Command
	r   *renderer
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd, r: newRenderer(cmd.OutOrStdout(), newStartConfig(nil))}
}

// Start applies the display options of a run.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.r = newRenderer(s.cmd.OutOrStdout(), newStartConfig(options))

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait returns at once; everything is already written.
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayTree prints one tree.
func (s *SimpleUI) DisplayTree(ctx context.Context, name string, view m.TreeView) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.r.displayTree(view)
}

// DisplayMapping prints the matched node pairs of a report.
func (s *SimpleUI) DisplayMapping(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.r.displayMapping(report)
}

// DisplayReport prints one report.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.r.displayReport(report)
}

// DisplaySummary prints the summary table.
func (s *SimpleUI) DisplaySummary(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.r.displaySummary(reports)
}
