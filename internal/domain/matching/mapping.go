// Package matching computes a structural correspondence between the nodes of
// a source tree and a destination tree.
package matching

import (
	"iter"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
)

// Pair is one (source, destination) entry of a Mapping.
type Pair struct {
	Src tree.NodeID `json:"src" yaml:"src"`
	Dst tree.NodeID `json:"dst" yaml:"dst"`
}

// Mapping is a partial bijection between source and destination node IDs.
// Each node takes part in at most one pair.
type Mapping struct {
	src   *tree.Tree
	dst   *tree.Tree
	toDst []tree.NodeID
	toSrc []tree.NodeID
	size  int
}

// NewMapping returns an empty mapping between src and dst.
func NewMapping(src, dst *tree.Tree) *Mapping {
	m := &Mapping{
		src:   src,
		dst:   dst,
		toDst: make([]tree.NodeID, src.Len()),
		toSrc: make([]tree.NodeID, dst.Len()),
	}

	for i := range m.toDst {
		m.toDst[i] = tree.NoNode
	}

	for i := range m.toSrc {
		m.toSrc[i] = tree.NoNode
	}

	return m
}

// Source returns the source tree.
func (m *Mapping) Source() *tree.Tree {
	return m.src
}

// Destination returns the destination tree.
func (m *Mapping) Destination() *tree.Tree {
	return m.dst
}

// Add records (s, d). It refuses, returning false, when either node is
// already mapped.
func (m *Mapping) Add(s, d tree.NodeID) bool {
	if m.toDst[s] != tree.NoNode || m.toSrc[d] != tree.NoNode {
		return false
	}

	m.toDst[s] = d
	m.toSrc[d] = s
	m.size++

	return true
}

// Dst returns the partner of source node s.
func (m *Mapping) Dst(s tree.NodeID) (tree.NodeID, bool) {
	d := m.toDst[s]

	return d, d != tree.NoNode
}

// Src returns the partner of destination node d.
func (m *Mapping) Src(d tree.NodeID) (tree.NodeID, bool) {
	s := m.toSrc[d]

	return s, s != tree.NoNode
}

// HasSrc reports whether source node s is mapped.
func (m *Mapping) HasSrc(s tree.NodeID) bool {
	return m.toDst[s] != tree.NoNode
}

// HasDst reports whether destination node d is mapped.
func (m *Mapping) HasDst(d tree.NodeID) bool {
	return m.toSrc[d] != tree.NoNode
}

// Len returns the number of pairs.
func (m *Mapping) Len() int {
	return m.size
}

// All yields the pairs ordered by the source node's pre-order rank.
func (m *Mapping) All() iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		for s := range m.src.PreOrder() {
			if d := m.toDst[s]; d != tree.NoNode {
				if !yield(Pair{Src: s, Dst: d}) {
					return
				}
			}
		}
	}
}

// Pairs returns All as a slice.
func (m *Mapping) Pairs() []Pair {
	pairs := make([]Pair, 0, m.size)
	for p := range m.All() {
		pairs = append(pairs, p)
	}

	return pairs
}

// addRecursively maps two isomorphic subtrees node by node.
func (m *Mapping) addRecursively(s, d tree.NodeID) {
	m.Add(s, d)

	sc, dc := m.src.Children(s), m.dst.Children(d)
	for i := range sc {
		m.addRecursively(sc[i], dc[i])
	}
}

// subtreeFree reports whether no node of either subtree is mapped yet.
func (m *Mapping) subtreeFree(s, d tree.NodeID) bool {
	for n := range m.src.Subtree(s) {
		if m.HasSrc(n) {
			return false
		}
	}

	for n := range m.dst.Subtree(d) {
		if m.HasDst(n) {
			return false
		}
	}

	return true
}

// Dice scores how many descendants of s are mapped to descendants of d,
// as 2*common / (|desc(s)| + |desc(d)|). Two leaves score 0.
func (m *Mapping) Dice(s, d tree.NodeID) float64 {
	total := m.src.Size(s) - 1 + m.dst.Size(d) - 1
	if total == 0 {
		return 0
	}

	common := 0

	for n := range m.src.Descendants(s) {
		if p, ok := m.Dst(n); ok && m.dst.IsDescendant(p, d) {
			common++
		}
	}

	return 2 * float64(common) / float64(total)
}
