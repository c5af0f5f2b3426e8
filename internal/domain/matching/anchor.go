package matching

import (
	"cmp"
	"slices"

	"golang.org/x/sync/errgroup"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
)

type bucketKey struct {
	sig    tree.Signature
	size   int
	height int
}

// class holds the subtrees of both trees that are isomorphic to each other.
type class struct {
	size   int
	height int
	first  int // smallest source pre-order rank, for ordering
	src    []tree.NodeID
	dst    []tree.NodeID
}

type candidate struct {
	src, dst tree.NodeID
	size     int
	dice     float64
}

// anchor runs the top-down phase: it pairs isomorphic subtrees of at least
// MinAnchorSize nodes, largest first.
//
// The selection is greedy and therefore a heuristic. A class with exactly one
// free subtree on each side is paired at once; classes with several choices
// are deferred and resolved afterwards by parent context (dice of the parents'
// descendants under the mapping built so far), then by node order. No attempt
// is made to find the globally optimal assignment.
func (mt *matcher) anchor() {
	classes := mt.classes()

	var deferred []*class

	for _, c := range classes {
		srcFree := mt.freeSrc(c.src)
		dstFree := mt.freeDst(c.dst)

		switch {
		case len(srcFree) == 0 || len(dstFree) == 0:
		case len(srcFree) == 1 && len(dstFree) == 1:
			if mt.m.subtreeFree(srcFree[0], dstFree[0]) {
				mt.m.addRecursively(srcFree[0], dstFree[0])
			}
		default:
			deferred = append(deferred, c)
		}
	}

	var candidates []candidate

	for _, c := range deferred {
		for _, s := range mt.freeSrc(c.src) {
			for _, d := range mt.freeDst(c.dst) {
				candidates = append(candidates, candidate{src: s, dst: d, size: c.size, dice: mt.parentDice(s, d)})
			}
		}
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		if a.size != b.size {
			return cmp.Compare(b.size, a.size)
		}

		if a.dice != b.dice {
			return cmp.Compare(b.dice, a.dice)
		}

		if a.src != b.src {
			return cmp.Compare(mt.src.PreOrderRank(a.src), mt.src.PreOrderRank(b.src))
		}

		return cmp.Compare(mt.dst.PreOrderRank(a.dst), mt.dst.PreOrderRank(b.dst))
	})

	for _, c := range candidates {
		if mt.m.subtreeFree(c.src, c.dst) {
			mt.m.addRecursively(c.src, c.dst)
		}
	}
}

func (mt *matcher) parentDice(s, d tree.NodeID) float64 {
	ps, pd := mt.src.Parent(s), mt.dst.Parent(d)

	switch {
	case ps == tree.NoNode && pd == tree.NoNode:
		return 1
	case ps == tree.NoNode || pd == tree.NoNode:
		return 0
	default:
		return mt.m.Dice(ps, pd)
	}
}

func (mt *matcher) freeSrc(ids []tree.NodeID) []tree.NodeID {
	free := make([]tree.NodeID, 0, len(ids))
	for _, id := range ids {
		if !mt.m.HasSrc(id) {
			free = append(free, id)
		}
	}

	return free
}

func (mt *matcher) freeDst(ids []tree.NodeID) []tree.NodeID {
	free := make([]tree.NodeID, 0, len(ids))
	for _, id := range ids {
		if !mt.m.HasDst(id) {
			free = append(free, id)
		}
	}

	return free
}

// classes groups the anchor-sized subtrees of both trees into isomorphism
// classes present on both sides, ordered largest first.
func (mt *matcher) classes() []*class {
	srcBuckets := bucketize(mt.src, mt.opts.MinAnchorSize, mt.opts.Workers)
	dstBuckets := bucketize(mt.dst, mt.opts.MinAnchorSize, mt.opts.Workers)

	var classes []*class

	for key, srcIDs := range srcBuckets {
		dstIDs, ok := dstBuckets[key]
		if !ok {
			continue
		}

		classes = append(classes, mt.split(key, srcIDs, dstIDs)...)
	}

	slices.SortFunc(classes, func(a, b *class) int {
		if a.size != b.size {
			return cmp.Compare(b.size, a.size)
		}

		if a.height != b.height {
			return cmp.Compare(b.height, a.height)
		}

		return cmp.Compare(a.first, b.first)
	})

	return classes
}

// split separates a bucket into true isomorphism classes. Buckets share a
// signature, so this only does work on hash collisions.
func (mt *matcher) split(key bucketKey, srcIDs, dstIDs []tree.NodeID) []*class {
	var out []*class

	for _, s := range srcIDs {
		placed := false

		for _, c := range out {
			if tree.Isomorphic(mt.src, c.src[0], mt.src, s) {
				c.src = append(c.src, s)
				placed = true

				break
			}
		}

		if !placed {
			out = append(out, &class{size: key.size, height: key.height, first: mt.src.PreOrderRank(s), src: []tree.NodeID{s}})
		}
	}

	for _, d := range dstIDs {
		for _, c := range out {
			if tree.Isomorphic(mt.src, c.src[0], mt.dst, d) {
				c.dst = append(c.dst, d)

				break
			}
		}
	}

	return slices.DeleteFunc(out, func(c *class) bool { return len(c.dst) == 0 })
}

// bucketize groups every subtree of at least minSize nodes by signature. With
// more than one worker the pre-order is cut into chunks bucketed concurrently
// and merged in chunk order, so bucket contents stay in pre-order.
func bucketize(t *tree.Tree, minSize, workers int) map[bucketKey][]tree.NodeID {
	order := slices.Collect(t.PreOrder())
	chunks := chunk(order, workers)
	partial := make([]map[bucketKey][]tree.NodeID, len(chunks))

	var group errgroup.Group
	group.SetLimit(workers)

	for i, ids := range chunks {
		group.Go(func() error {
			buckets := make(map[bucketKey][]tree.NodeID)

			for _, id := range ids {
				if t.Size(id) < minSize {
					continue
				}

				key := bucketKey{sig: t.Signature(id), size: t.Size(id), height: t.Height(id)}
				buckets[key] = append(buckets[key], id)
			}

			partial[i] = buckets

			return nil
		})
	}

	// Workers never fail; Wait only joins them.
	_ = group.Wait()

	merged := make(map[bucketKey][]tree.NodeID)

	for _, buckets := range partial {
		for key, ids := range buckets {
			merged[key] = append(merged[key], ids...)
		}
	}

	return merged
}

func chunk(ids []tree.NodeID, n int) [][]tree.NodeID {
	if n <= 1 || len(ids) < 2*n {
		return [][]tree.NodeID{ids}
	}

	step := (len(ids) + n - 1) / n
	out := make([][]tree.NodeID, 0, n)

	for start := 0; start < len(ids); start += step {
		out = append(out, ids[start:min(start+step, len(ids))])
	}

	return out
}
