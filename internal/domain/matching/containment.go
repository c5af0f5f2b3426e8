package matching

import (
	"github.com/pmezard/go-difflib/difflib"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
	pkg "treedelta.dev/pkg/treedelta/pkg"
)

// containment visits source nodes top-down. Unmatched containers are paired
// with the best scoring destination container under the corresponding
// matched ancestor; matched pairs then recover their unmatched children.
func (mt *matcher) containment() {
	if mt.opts.PairRoots {
		s, d := mt.src.Root(), mt.dst.Root()
		if mt.src.Type(s) == mt.dst.Type(d) {
			mt.m.Add(s, d)
		}
	}

	for s := range mt.src.PreOrder() {
		if !mt.m.HasSrc(s) && !mt.src.IsLeaf(s) {
			mt.matchContainer(s)
		}

		if d, ok := mt.m.Dst(s); ok {
			mt.recover(s, d)
		}
	}
}

func (mt *matcher) matchContainer(s tree.NodeID) {
	anchor := tree.NoNode

	for p := mt.src.Parent(s); p != tree.NoNode; p = mt.src.Parent(p) {
		if d, ok := mt.m.Dst(p); ok {
			anchor = d
			break
		}
	}

	best, bestScore := tree.NoNode, 0.0

	mt.walkFree(anchor, func(d tree.NodeID) {
		if mt.dst.IsLeaf(d) || mt.dst.Type(d) != mt.src.Type(s) {
			return
		}

		score := mt.m.Dice(s, d)

		switch {
		case best == tree.NoNode, score > bestScore:
		case score == bestScore && mt.dst.Label(d) == mt.src.Label(s) && mt.dst.Label(best) != mt.src.Label(s):
		default:
			return
		}

		best, bestScore = d, score
	})

	// A zero score means no shared evidence at all, whatever the threshold.
	if best != tree.NoNode && bestScore > 0 && bestScore >= mt.opts.SimilarityThreshold {
		mt.m.Add(s, best)
	}
}

// walkFree calls fn, in pre-order, for every unmatched destination node whose
// nearest matched ancestor is anchor (NoNode: no matched ancestor at all).
func (mt *matcher) walkFree(anchor tree.NodeID, fn func(tree.NodeID)) {
	var visit func(tree.NodeID)

	visit = func(d tree.NodeID) {
		if mt.m.HasDst(d) {
			return
		}

		fn(d)

		for _, c := range mt.dst.Children(d) {
			visit(c)
		}
	}

	if anchor == tree.NoNode {
		visit(mt.dst.Root())
		return
	}

	for _, c := range mt.dst.Children(anchor) {
		visit(c)
	}
}

// recover pairs unmatched children of the matched pair (s, d) in four
// passes of decreasing strictness.
func (mt *matcher) recover(s, d tree.NodeID) {
	free := func() ([]tree.NodeID, []tree.NodeID) {
		return mt.freeSrc(mt.src.Children(s)), mt.freeDst(mt.dst.Children(d))
	}

	fs, fd := free()
	if len(fs) == 0 || len(fd) == 0 {
		return
	}

	for _, p := range pkg.LCS(fs, fd, mt.isomorphic) {
		if mt.m.subtreeFree(fs[p[0]], fd[p[1]]) {
			mt.m.addRecursively(fs[p[0]], fd[p[1]])
		}
	}

	fs, fd = free()
	for _, p := range pkg.LCS(fs, fd, mt.sameTypeAndLabel) {
		mt.m.Add(fs[p[0]], fd[p[1]])
	}

	fs, fd = free()
	mt.matchUniqueTypes(fs, fd)

	fs, fd = free()
	for _, p := range pkg.LCS(fs, fd, mt.similarLeaves) {
		mt.m.Add(fs[p[0]], fd[p[1]])
	}
}

func (mt *matcher) matchUniqueTypes(fs, fd []tree.NodeID) {
	srcCount := make(map[string]int, len(fs))
	for _, s := range fs {
		srcCount[mt.src.Type(s)]++
	}

	dstByType := make(map[string]tree.NodeID, len(fd))
	dstCount := make(map[string]int, len(fd))

	for _, d := range fd {
		dstByType[mt.dst.Type(d)] = d
		dstCount[mt.dst.Type(d)]++
	}

	for _, s := range fs {
		typ := mt.src.Type(s)
		if srcCount[typ] == 1 && dstCount[typ] == 1 {
			mt.m.Add(s, dstByType[typ])
		}
	}
}

func (mt *matcher) isomorphic(s, d tree.NodeID) bool {
	return tree.Isomorphic(mt.src, s, mt.dst, d)
}

func (mt *matcher) sameTypeAndLabel(s, d tree.NodeID) bool {
	return mt.src.Type(s) == mt.dst.Type(d) && mt.src.Label(s) == mt.dst.Label(d)
}

func (mt *matcher) similarLeaves(s, d tree.NodeID) bool {
	return mt.src.Type(s) == mt.dst.Type(d) &&
		mt.src.IsLeaf(s) && mt.dst.IsLeaf(d) &&
		LabelRatio(mt.src.Label(s), mt.dst.Label(d)) >= mt.opts.LabelSimilarity
}

// LabelRatio scores two labels between 0 and 1 as the ratio of matching
// characters, 2*M/T, computed with difflib's sequence matcher. Two empty
// labels score 1.
func LabelRatio(a, b string) float64 {
	if a == b {
		return 1
	}

	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}

	return out
}
