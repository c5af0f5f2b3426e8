// Package domain wires the tree diff core into treedelta's use cases: parse,
// match, diff and view.
package domain

import (
	"treedelta.dev/pkg/treedelta/internal/domain/actions"
	"treedelta.dev/pkg/treedelta/internal/domain/matching"
	"treedelta.dev/pkg/treedelta/internal/domain/tree"
)

// Differ is the entry point to the diff core. Match and Diff can be used
// independently.
type Differ interface {
	Match(src, dst *tree.Tree) *matching.Mapping
	Diff(src, dst *tree.Tree) *actions.Script
	// Generate derives the script for a mapping obtained from Match.
	Generate(src, dst *tree.Tree, mapping *matching.Mapping) *actions.Script
	Options() matching.Options
}

type differ struct {
	opts matching.Options
}

// NewDiffer returns a Differ using opts for every match.
func NewDiffer(opts matching.Options) Differ {
	return &differ{opts: opts}
}

func (d *differ) Options() matching.Options {
	return d.opts
}

func (d *differ) Match(src, dst *tree.Tree) *matching.Mapping {
	return matching.Match(src, dst, d.opts)
}

func (d *differ) Diff(src, dst *tree.Tree) *actions.Script {
	return d.Generate(src, dst, d.Match(src, dst))
}

func (d *differ) Generate(src, dst *tree.Tree, mapping *matching.Mapping) *actions.Script {
	return actions.Generate(src, dst, mapping)
}
