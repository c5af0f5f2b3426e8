package matching

import (
	"log/slog"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
)

type matcher struct {
	src  *tree.Tree
	dst  *tree.Tree
	opts Options
	m    *Mapping
}

// Match computes a mapping between src and dst: an anchor phase pairing
// isomorphic subtrees, then a containment phase pairing nodes nested inside
// already matched ancestors. Match never fails; unrelated trees yield an
// empty mapping. Isomorphic trees are mapped node for node whatever the
// options, so an identical pair never produces actions.
func Match(src, dst *tree.Tree, opts Options) *Mapping {
	mt := &matcher{
		src:  src,
		dst:  dst,
		opts: opts.normalized(),
		m:    NewMapping(src, dst),
	}

	if tree.Equal(src, dst) {
		mt.m.addRecursively(src.Root(), dst.Root())
		slog.Debug("matched identical trees", "nodes", src.Len())

		return mt.m
	}

	mt.anchor()
	anchored := mt.m.Len()

	mt.containment()

	slog.Debug("matched trees",
		"src_nodes", src.Len(),
		"dst_nodes", dst.Len(),
		"anchored", anchored,
		"mapped", mt.m.Len(),
	)

	return mt.m
}
