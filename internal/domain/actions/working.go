package actions

import (
	"slices"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
)

// working is a mutable copy of a tree. The root hangs below an implicit top
// node, addressed as NoNode, so a script may replace the root.
type working struct {
	typ      []string
	label    []string
	pos      []*tree.Position
	parent   []tree.NodeID
	children [][]tree.NodeID
	alive    []bool
	top      []tree.NodeID
}

func newWorking(t *tree.Tree) *working {
	n := t.Len()
	w := &working{
		typ:      make([]string, n),
		label:    make([]string, n),
		pos:      make([]*tree.Position, n),
		parent:   make([]tree.NodeID, n),
		children: make([][]tree.NodeID, n),
		alive:    make([]bool, n),
		top:      []tree.NodeID{t.Root()},
	}

	for i := range n {
		id := tree.NodeID(i)
		w.typ[i] = t.Type(id)
		w.label[i] = t.Label(id)
		w.pos[i] = t.Position(id)
		w.parent[i] = t.Parent(id)
		w.children[i] = slices.Clone(t.Children(id))
		w.alive[i] = true
	}

	return w
}

func (w *working) len() int {
	return len(w.typ)
}

func (w *working) contains(id tree.NodeID) bool {
	return id >= 0 && int(id) < len(w.alive) && w.alive[id]
}

// add allocates a detached node and returns its ID.
func (w *working) add(typ, label string, pos *tree.Position) tree.NodeID {
	id := tree.NodeID(len(w.typ))
	w.typ = append(w.typ, typ)
	w.label = append(w.label, label)
	w.pos = append(w.pos, pos)
	w.parent = append(w.parent, tree.NoNode)
	w.children = append(w.children, nil)
	w.alive = append(w.alive, true)

	return id
}

func (w *working) kids(p tree.NodeID) *[]tree.NodeID {
	if p == tree.NoNode {
		return &w.top
	}

	return &w.children[p]
}

func (w *working) index(id tree.NodeID) int {
	return slices.Index(*w.kids(w.parent[id]), id)
}

func (w *working) detach(id tree.NodeID) {
	kids := w.kids(w.parent[id])
	if i := slices.Index(*kids, id); i >= 0 {
		*kids = slices.Delete(*kids, i, i+1)
	}

	w.parent[id] = tree.NoNode
}

func (w *working) attach(id, parent tree.NodeID, at int) {
	kids := w.kids(parent)
	*kids = slices.Insert(*kids, at, id)
	w.parent[id] = parent
}

func (w *working) remove(id tree.NodeID) {
	w.detach(id)
	w.alive[id] = false
}

// within reports whether n is a or lies below it.
func (w *working) within(n, a tree.NodeID) bool {
	for ; n != tree.NoNode; n = w.parent[n] {
		if n == a {
			return true
		}
	}

	return false
}

func (w *working) info(id tree.NodeID) NodeInfo {
	if id == tree.NoNode {
		return NodeInfo{ID: tree.NoNode}
	}

	return NodeInfo{ID: id, Type: w.typ[id], Label: w.label[id]}
}

// postOrder lists the attached nodes, children before parents.
func (w *working) postOrder() []tree.NodeID {
	var (
		out  []tree.NodeID
		walk func(tree.NodeID)
	)

	walk = func(id tree.NodeID) {
		for _, c := range w.children[id] {
			walk(c)
		}

		out = append(out, id)
	}

	for _, r := range w.top {
		walk(r)
	}

	return out
}

// build freezes the working copy into a Tree. IDs are renumbered in
// pre-order.
func (w *working) build() (*tree.Tree, error) {
	b := tree.NewBuilder()

	var walk func(id, parent tree.NodeID)

	walk = func(id, parent tree.NodeID) {
		nid := b.Add(parent, w.typ[id], w.label[id], w.pos[id])
		for _, c := range w.children[id] {
			walk(c, nid)
		}
	}

	for _, r := range w.top {
		walk(r, tree.NoNode)
	}

	return b.Build()
}
