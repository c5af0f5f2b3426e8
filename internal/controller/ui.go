// Package controller renders trees, mappings and edit scripts for the
// terminal.
package controller

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "treedelta.dev/pkg/treedelta/internal/model"
)

// Format selects how reports are written.
type Format string

// Available formats.
const (
	// FormatText prints trees and one line per action.
	FormatText Format = "text"
	// FormatSummary prints a table of action counts only.
	FormatSummary Format = "summary"
	// FormatYAML writes each report as a YAML document.
	FormatYAML Format = "yaml"
	// FormatJSON writes each report as one JSON object per line.
	FormatJSON Format = "json"
	// FormatTree writes a parsed tree in the indented .tree format.
	FormatTree Format = "tree"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatSummary, FormatYAML, FormatJSON, FormatTree:
		return f, nil
	}

	return "", fmt.Errorf("unknown format %q (want text, summary, yaml, json or tree)", s)
}

// StartOption is a functional option for Start.
type StartOption func(*StartConfig)

// StartConfig holds the display settings of one run.
type StartConfig struct {
	format    Format
	trees     bool
	labelDiff bool
	color     bool
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{format: FormatText, trees: true}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// WithFormat sets the output format.
func WithFormat(f Format) StartOption {
	return func(c *StartConfig) {
		c.format = f
	}
}

// WithTrees toggles printing the two trees before the actions.
func WithTrees(enabled bool) StartOption {
	return func(c *StartConfig) {
		c.trees = enabled
	}
}

// WithLabelDiff appends a character diff of old and new label to Update
// lines.
func WithLabelDiff(enabled bool) StartOption {
	return func(c *StartConfig) {
		c.labelDiff = enabled
	}
}

// WithColor toggles ANSI colors.
func WithColor(enabled bool) StartOption {
	return func(c *StartConfig) {
		c.color = enabled
	}
}

// UI displays the results of treedelta's use cases.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	// Wait blocks until the user is done with the output.
	Wait(ctx context.Context)
	DisplayTree(ctx context.Context, name string, view m.TreeView) error
	DisplayMapping(ctx context.Context, report m.Report) error
	DisplayReport(ctx context.Context, report m.Report) error
	DisplaySummary(ctx context.Context, reports []m.Report) error
}

// NewUI returns the pager UI for terminals and the plain UI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
