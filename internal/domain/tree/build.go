package tree

import (
	"errors"
	"fmt"
)

// ErrMalformedTree is wrapped by every MalformedTreeError.
var ErrMalformedTree = errors.New("malformed tree")

// MalformedTreeError reports a tree description that cannot be placed into a
// single rooted, acyclic tree.
type MalformedTreeError struct {
	Index  int // offending entry, -1 when the whole input is at fault
	Reason string
}

func (e *MalformedTreeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed tree: %s", e.Reason)
	}

	return fmt.Sprintf("malformed tree: entry %d: %s", e.Index, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrMalformedTree).
func (e *MalformedTreeError) Unwrap() error {
	return ErrMalformedTree
}

func malformed(index int, format string, args ...any) error {
	return &MalformedTreeError{Index: index, Reason: fmt.Sprintf(format, args...)}
}

// DepthEntry describes one node of a pre-order listing by its depth.
type DepthEntry struct {
	Type  string
	Label string
	Depth int
	Pos   *Position
}

// ParentEntry describes one node by the index of its parent entry (-1 for the root).
type ParentEntry struct {
	Type   string
	Label  string
	Parent int
	Pos    *Position
}

// FromDepths builds a tree from a pre-order listing where each entry carries
// its depth. The first entry must be the root at depth 0 and depth may grow by
// at most one between consecutive entries.
func FromDepths(entries []DepthEntry) (*Tree, error) {
	if len(entries) == 0 {
		return nil, malformed(-1, "empty tree")
	}

	if entries[0].Depth != 0 {
		return nil, malformed(0, "root must have depth 0, got %d", entries[0].Depth)
	}

	b := NewBuilder()
	stack := make([]NodeID, 0, 16)

	for i, e := range entries {
		if i > 0 && e.Depth == 0 {
			return nil, malformed(i, "second root")
		}

		if e.Depth < 0 || e.Depth > len(stack) {
			return nil, malformed(i, "depth %d has no parent (previous depth %d)", e.Depth, len(stack)-1)
		}

		stack = stack[:e.Depth]

		parent := NoNode
		if e.Depth > 0 {
			parent = stack[e.Depth-1]
		}

		stack = append(stack, b.Add(parent, e.Type, e.Label, e.Pos))
	}

	return b.Build()
}

// FromParents builds a tree from entries that name their parent by index.
// Entries may appear in any order; IDs equal the entry indices.
func FromParents(entries []ParentEntry) (*Tree, error) {
	if len(entries) == 0 {
		return nil, malformed(-1, "empty tree")
	}

	t := &Tree{nodes: make([]node, len(entries)), root: NoNode}

	for i, e := range entries {
		t.nodes[i] = node{typ: e.Type, label: e.Label, pos: e.Pos, parent: NodeID(e.Parent)}
	}

	for i, e := range entries {
		switch {
		case e.Parent == -1:
			if t.root != NoNode {
				return nil, malformed(i, "second root (first root is entry %d)", t.root)
			}

			t.root = NodeID(i)
		case e.Parent < -1 || e.Parent >= len(entries):
			return nil, malformed(i, "parent %d out of range", e.Parent)
		case e.Parent == i:
			return nil, malformed(i, "node is its own parent")
		default:
			t.nodes[e.Parent].children = append(t.nodes[e.Parent].children, NodeID(i))
		}
	}

	if t.root == NoNode {
		return nil, malformed(-1, "no root")
	}

	if err := t.index(); err != nil {
		return nil, err
	}

	return t, nil
}

// Builder assembles a tree node by node. Children are appended in call order.
type Builder struct {
	nodes []node
	err   error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make([]node, 0, 64)}
}

// Add appends a node under parent (NoNode for the root) and returns its ID.
// Errors are deferred to Build.
func (b *Builder) Add(parent NodeID, typ, label string, pos *Position) NodeID {
	id := NodeID(len(b.nodes))

	switch {
	case b.err != nil:
	case parent == NoNode && len(b.nodes) > 0:
		b.err = malformed(int(id), "second root")
	case parent != NoNode && (parent < 0 || int(parent) >= len(b.nodes)):
		b.err = malformed(int(id), "parent %d does not exist", parent)
	case parent != NoNode:
		b.nodes[parent].children = append(b.nodes[parent].children, id)
	}

	b.nodes = append(b.nodes, node{typ: typ, label: label, pos: pos, parent: parent})

	return id
}

// Len returns the number of nodes added so far.
func (b *Builder) Len() int {
	return len(b.nodes)
}

// Build finalizes the tree. The Builder must not be used afterwards.
func (b *Builder) Build() (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}

	if len(b.nodes) == 0 {
		return nil, malformed(-1, "empty tree")
	}

	t := &Tree{nodes: b.nodes, root: 0}
	b.nodes = nil

	if err := t.index(); err != nil {
		return nil, err
	}

	return t, nil
}

// index computes the derived per-node data and rejects cycles and nodes that
// are not reachable from the root.
func (t *Tree) index() error {
	n := len(t.nodes)
	t.pre = make([]int, n)
	t.order = make([]NodeID, 0, n)
	t.size = make([]int, n)
	t.height = make([]int, n)
	t.depth = make([]int, n)
	t.sig = make([]Signature, n)

	for i := range t.pre {
		t.pre[i] = -1
	}

	type frame struct {
		id   NodeID
		next int
	}

	stack := []frame{{id: t.root}}
	t.pre[t.root] = 0
	t.order = append(t.order, t.root)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := t.nodes[top.id].children

		if top.next < len(children) {
			c := children[top.next]
			top.next++

			if t.pre[c] >= 0 {
				return malformed(int(c), "node reached twice")
			}

			t.pre[c] = len(t.order)
			t.order = append(t.order, c)
			t.depth[c] = t.depth[top.id] + 1
			stack = append(stack, frame{id: c})

			continue
		}

		id := top.id
		stack = stack[:len(stack)-1]

		size, height := 1, 0
		for _, c := range children {
			size += t.size[c]
			height = max(height, t.height[c])
		}

		t.size[id] = size
		t.height[id] = height + 1
		t.sig[id] = t.signature(id)
	}

	if len(t.order) != n {
		for i, rank := range t.pre {
			if rank < 0 {
				return malformed(i, "node not reachable from the root (cycle)")
			}
		}
	}

	return nil
}
