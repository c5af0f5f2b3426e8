// Package actions derives an edit script from a matching and replays scripts
// on trees.
package actions

import (
	"fmt"
	"strconv"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
)

// Kind is the variant of an Action.
type Kind int

const (
	Insert Kind = iota
	Delete
	Move
	Update
)

var kindNames = [...]string{"Insert", "Delete", "Move", "Update"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindNames[k]
}

// NodeInfo snapshots a working-tree node when an action is recorded. ID is
// NoNode for the top of the working tree, above the root.
type NodeInfo struct {
	ID    tree.NodeID
	Type  string
	Label string
}

func (n NodeInfo) String() string {
	if n.ID == tree.NoNode {
		return "top"
	}

	return tree.Pretty(n.Type, n.Label) + "(" + strconv.Itoa(int(n.ID)) + ")"
}

// Action is one edit. Node IDs live in the working-tree ID space: source IDs
// for original nodes and fresh IDs, starting at the source length, for
// inserted ones.
//
// Insert and Move use Parent and Position; Position indexes the parent's
// children after the node has been detached. Update uses Label. Dst is the
// destination counterpart, NoNode for deletes.
type Action struct {
	Kind     Kind
	Node     NodeInfo
	Parent   NodeInfo
	Position int
	Label    string
	Dst      tree.NodeID
}

func (a Action) String() string {
	switch a.Kind {
	case Insert, Move:
		return fmt.Sprintf("%s %s into %s at %d", a.Kind, a.Node, a.Parent, a.Position)
	case Update:
		return fmt.Sprintf("Update %s to %s", a.Node, a.Label)
	default:
		return fmt.Sprintf("%s %s", a.Kind, a.Node)
	}
}

// Script is the result of Generate.
type Script struct {
	Actions []Action
	// Mapped is the number of pairs in the mapping the script was derived from.
	Mapped int
}

// Len returns the number of actions.
func (s *Script) Len() int {
	return len(s.Actions)
}

// Counts tallies the actions per kind.
func (s *Script) Counts() map[Kind]int {
	counts := make(map[Kind]int, len(kindNames))
	for _, a := range s.Actions {
		counts[a.Kind]++
	}

	return counts
}

// Strings renders every action on its own line.
func (s *Script) Strings() []string {
	out := make([]string, len(s.Actions))
	for i, a := range s.Actions {
		out[i] = a.String()
	}

	return out
}
