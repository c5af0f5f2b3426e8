// Package tree provides the labeled, ordered, rooted tree used on both sides of a diff.
//
// Nodes live in an arena owned by the Tree and refer to each other by NodeID,
// so parent links are plain indices and never imply ownership. A Tree is
// immutable once built; derived data (pre-order rank, subtree size, height,
// depth and structural signature) is computed once at construction.
package tree

import (
	"iter"
)

// NodeID identifies a node inside one tree. IDs are assigned at construction
// and equal the node's index in the construction sequence.
type NodeID int

// NoNode is the parent of the root and the zero reference for "no node".
const NoNode NodeID = -1

// Position is optional source location metadata. It is never used by the
// matcher or the generator.
type Position struct {
	StartLine   int `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	StartCol    int `json:"start_col,omitempty" yaml:"start_col,omitempty"`
	StartOffset int `json:"start_offset,omitempty" yaml:"start_offset,omitempty"`
	EndLine     int `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndCol      int `json:"end_col,omitempty" yaml:"end_col,omitempty"`
	EndOffset   int `json:"end_offset,omitempty" yaml:"end_offset,omitempty"`
}

// Node is a read-only view of one arena entry.
type Node struct {
	ID     NodeID
	Type   string
	Label  string
	Pos    *Position
	Parent NodeID
}

type node struct {
	typ      string
	label    string
	pos      *Position
	parent   NodeID
	children []NodeID
}

// Tree owns its root and, transitively, every descendant.
type Tree struct {
	nodes []node
	root  NodeID

	pre    []int
	order  []NodeID
	size   []int
	height []int
	depth  []int
	sig    []Signature
}

// Root returns the root node ID.
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a read-only view of id.
func (t *Tree) Node(id NodeID) Node {
	n := &t.nodes[id]

	return Node{ID: id, Type: n.typ, Label: n.label, Pos: n.pos, Parent: n.parent}
}

// Type returns the type tag of id.
func (t *Tree) Type(id NodeID) string {
	return t.nodes[id].typ
}

// Label returns the label of id.
func (t *Tree) Label(id NodeID) string {
	return t.nodes[id].label
}

// Position returns the source position of id, or nil.
func (t *Tree) Position(id NodeID) *Position {
	return t.nodes[id].pos
}

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// Children returns the ordered children of id. The slice must not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].children
}

// IsLeaf reports whether id has no children.
func (t *Tree) IsLeaf(id NodeID) bool {
	return len(t.nodes[id].children) == 0
}

// ChildPosition returns the index of id among its siblings, -1 for the root.
func (t *Tree) ChildPosition(id NodeID) int {
	parent := t.nodes[id].parent
	if parent == NoNode {
		return -1
	}

	for i, c := range t.nodes[parent].children {
		if c == id {
			return i
		}
	}

	return -1
}

// Size returns the number of nodes in the subtree rooted at id.
func (t *Tree) Size(id NodeID) int {
	return t.size[id]
}

// Height returns the height of the subtree rooted at id; leaves have height 1.
func (t *Tree) Height(id NodeID) int {
	return t.height[id]
}

// Depth returns the number of edges between id and the root.
func (t *Tree) Depth(id NodeID) int {
	return t.depth[id]
}

// PreOrderRank returns the index of id in a pre-order traversal.
func (t *Tree) PreOrderRank(id NodeID) int {
	return t.pre[id]
}

// IsDescendant reports whether n lies strictly below ancestor.
func (t *Tree) IsDescendant(n, ancestor NodeID) bool {
	pn, pa := t.pre[n], t.pre[ancestor]

	return pa < pn && pn < pa+t.size[ancestor]
}

// PreOrder yields every node, parents before children, siblings in order.
func (t *Tree) PreOrder() iter.Seq[NodeID] {
	return t.Subtree(t.root)
}

// Subtree yields id and its descendants in pre-order.
func (t *Tree) Subtree(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		start := t.pre[id]
		for _, n := range t.order[start : start+t.size[id]] {
			if !yield(n) {
				return
			}
		}
	}
}

// Descendants yields the nodes strictly below id in pre-order.
func (t *Tree) Descendants(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		start := t.pre[id] + 1
		for _, n := range t.order[start : t.pre[id]+t.size[id]] {
			if !yield(n) {
				return
			}
		}
	}
}

// PostOrder yields every node, children before parents.
func (t *Tree) PostOrder() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		postOrder(t, t.root, yield)
	}
}

func postOrder(t *Tree, id NodeID, yield func(NodeID) bool) bool {
	for _, c := range t.nodes[id].children {
		if !postOrder(t, c, yield) {
			return false
		}
	}

	return yield(id)
}

// PrettyString renders id as "type: label", or just "type" when unlabeled.
func (t *Tree) PrettyString(id NodeID) string {
	return Pretty(t.nodes[id].typ, t.nodes[id].label)
}

// Pretty renders a type and label the way PrettyString does.
func Pretty(typ, label string) string {
	if label == "" {
		return typ
	}

	return typ + ": " + label
}
