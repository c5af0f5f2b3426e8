package tree

import (
	"encoding/binary"
	"hash/fnv"
)

// Signature is a structural digest of a subtree: equal subtrees always have
// equal signatures. Unequal subtrees may collide, so Isomorphic confirms.
type Signature uint64

// Signature returns the structural signature of the subtree rooted at id.
func (t *Tree) Signature(id NodeID) Signature {
	return t.sig[id]
}

// signature is called in post-order, so children are already signed.
func (t *Tree) signature(id NodeID) Signature {
	n := &t.nodes[id]
	h := fnv.New64a()

	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(len(n.typ)))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(n.typ))
	binary.LittleEndian.PutUint64(buf[:], uint64(len(n.label)))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(n.label))

	for _, c := range n.children {
		binary.LittleEndian.PutUint64(buf[:], uint64(t.sig[c]))
		_, _ = h.Write(buf[:])
	}

	return Signature(h.Sum64())
}

// Isomorphic reports whether the subtree at ai in a and the subtree at bi in b
// have identical types, labels and, recursively, children in the same order.
func Isomorphic(a *Tree, ai NodeID, b *Tree, bi NodeID) bool {
	if a.sig[ai] != b.sig[bi] || a.size[ai] != b.size[bi] || a.height[ai] != b.height[bi] {
		return false
	}

	return sameShape(a, ai, b, bi)
}

func sameShape(a *Tree, ai NodeID, b *Tree, bi NodeID) bool {
	na, nb := &a.nodes[ai], &b.nodes[bi]
	if na.typ != nb.typ || na.label != nb.label || len(na.children) != len(nb.children) {
		return false
	}

	for i := range na.children {
		if !sameShape(a, na.children[i], b, nb.children[i]) {
			return false
		}
	}

	return true
}

// Equal reports whether two whole trees are isomorphic.
func Equal(a, b *Tree) bool {
	return Isomorphic(a, a.root, b, b.root)
}
