package actions

import (
	"log/slog"

	"treedelta.dev/pkg/treedelta/internal/domain/matching"
	"treedelta.dev/pkg/treedelta/internal/domain/tree"
	pkg "treedelta.dev/pkg/treedelta/pkg"
)

type generator struct {
	dst *tree.Tree
	w   *working

	// wToD and dToW map working nodes to destination nodes and back. The top
	// of both trees (NoNode) is implicitly mapped to itself.
	wToD []tree.NodeID
	dToW []tree.NodeID

	srcInOrder []bool
	dstInOrder []bool

	actions []Action
}

// Generate derives the edit script turning src into dst under m. Actions are
// ordered so that replaying them one by one on a copy of src is always valid,
// and the replay ends isomorphic to dst.
//
// Destination nodes are visited in pre-order: unmapped ones are inserted,
// mapped ones are updated and moved under the partner of their destination
// parent, then the children of each pair are aligned, keeping a longest
// common subsequence in place. Unmapped source nodes are deleted last, in
// post-order. An empty mapping deletes the whole source first and inserts
// the whole destination afterwards.
func Generate(src, dst *tree.Tree, m *matching.Mapping) *Script {
	g := &generator{
		dst:        dst,
		w:          newWorking(src),
		wToD:       make([]tree.NodeID, src.Len()),
		dToW:       make([]tree.NodeID, dst.Len()),
		srcInOrder: make([]bool, src.Len()),
		dstInOrder: make([]bool, dst.Len()),
	}

	for i := range g.wToD {
		g.wToD[i] = tree.NoNode
	}

	for i := range g.dToW {
		g.dToW[i] = tree.NoNode
	}

	for p := range m.All() {
		g.wToD[p.Src] = p.Dst
		g.dToW[p.Dst] = p.Src
	}

	if m.Len() == 0 {
		for id := range src.PostOrder() {
			g.delete(id)
		}
	}

	for x := range dst.PreOrder() {
		g.visit(x)
	}

	for _, id := range g.w.postOrder() {
		if g.wToD[id] == tree.NoNode {
			g.delete(id)
		}
	}

	slog.Debug("generated edit script", "mapped", m.Len(), "actions", len(g.actions))

	return &Script{Actions: g.actions, Mapped: m.Len()}
}

func (g *generator) partnerOf(x tree.NodeID) tree.NodeID {
	if x == tree.NoNode {
		return tree.NoNode
	}

	return g.dToW[x]
}

func (g *generator) visit(x tree.NodeID) {
	z := g.partnerOf(g.dst.Parent(x))
	w := g.dToW[x]

	if w == tree.NoNode {
		w = g.w.add(g.dst.Type(x), g.dst.Label(x), g.dst.Position(x))
		g.wToD = append(g.wToD, x)
		g.srcInOrder = append(g.srcInOrder, false)
		g.dToW[x] = w

		k := g.findPos(x)
		g.w.attach(w, z, k)
		g.emit(Action{Kind: Insert, Node: g.w.info(w), Parent: g.w.info(z), Position: k, Dst: x})
	} else {
		if label := g.dst.Label(x); g.w.label[w] != label {
			g.emit(Action{Kind: Update, Node: g.w.info(w), Label: label, Dst: x})
			g.w.label[w] = label
		}

		if g.w.parent[w] != z {
			g.w.detach(w)
			k := g.findPos(x)
			g.w.attach(w, z, k)
			g.emit(Action{Kind: Move, Node: g.w.info(w), Parent: g.w.info(z), Position: k, Dst: x})
		}
	}

	g.srcInOrder[w] = true
	g.dstInOrder[x] = true

	g.alignChildren(w, x)
}

// alignChildren reorders the children of w that are mapped to children of x.
// A longest common subsequence stays put; every other child is moved.
func (g *generator) alignChildren(w, x tree.NodeID) {
	for _, c := range g.w.children[w] {
		g.srcInOrder[c] = false
	}

	for _, c := range g.dst.Children(x) {
		g.dstInOrder[c] = false
	}

	var s1, s2 []tree.NodeID

	for _, a := range g.w.children[w] {
		if d := g.wToD[a]; d != tree.NoNode && g.dst.Parent(d) == x {
			s1 = append(s1, a)
		}
	}

	for _, b := range g.dst.Children(x) {
		if a := g.dToW[b]; a != tree.NoNode && g.w.parent[a] == w {
			s2 = append(s2, b)
		}
	}

	mapped := func(a, b tree.NodeID) bool { return g.wToD[a] == b }

	for _, p := range pkg.LCS(s1, s2, mapped) {
		g.srcInOrder[s1[p[0]]] = true
		g.dstInOrder[s2[p[1]]] = true
	}

	for _, b := range s2 {
		a := g.dToW[b]
		if g.srcInOrder[a] {
			continue
		}

		g.w.detach(a)
		k := g.findPos(b)
		g.w.attach(a, w, k)
		g.emit(Action{Kind: Move, Node: g.w.info(a), Parent: g.w.info(w), Position: k, Dst: b})

		g.srcInOrder[a] = true
		g.dstInOrder[b] = true
	}
}

// findPos returns where the partner of x goes among its new siblings: right
// after the partner of the nearest in-order sibling left of x, or first.
// The node being placed must already be detached.
func (g *generator) findPos(x tree.NodeID) int {
	y := g.dst.Parent(x)
	if y == tree.NoNode {
		return 0
	}

	siblings := g.dst.Children(y)
	for i := g.dst.ChildPosition(x) - 1; i >= 0; i-- {
		if v := siblings[i]; g.dstInOrder[v] {
			return g.w.index(g.dToW[v]) + 1
		}
	}

	return 0
}

func (g *generator) delete(id tree.NodeID) {
	g.emit(Action{Kind: Delete, Node: g.w.info(id), Dst: tree.NoNode})
	g.w.remove(id)
}

func (g *generator) emit(a Action) {
	g.actions = append(g.actions, a)
}
