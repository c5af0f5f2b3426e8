// Package treetest generates trees for tests.
package treetest

import (
	"math/rand/v2"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
)

var (
	types  = []string{"block", "call", "ident", "lit", "if", "return"}
	labels = []string{"", "", "a", "b", "c", "x", "y", "1", "2"}
)

// Random returns the entries of a random tree of n nodes. Every parent index
// is smaller than its child's index.
func Random(r *rand.Rand, n int) []tree.ParentEntry {
	entries := make([]tree.ParentEntry, n)
	entries[0] = tree.ParentEntry{Type: "file", Parent: -1}

	for i := 1; i < n; i++ {
		entries[i] = tree.ParentEntry{
			Type:   types[r.IntN(len(types))],
			Label:  labels[r.IntN(len(labels))],
			Parent: r.IntN(i),
		}
	}

	return entries
}

// Mutate returns a copy of entries with about edits random relabels,
// reparentings, deletions and insertions applied.
func Mutate(r *rand.Rand, entries []tree.ParentEntry, edits int) []tree.ParentEntry {
	out := append([]tree.ParentEntry(nil), entries...)

	for range edits {
		i := 1 + r.IntN(max(len(out)-1, 1))
		if i >= len(out) {
			out = append(out, tree.ParentEntry{Type: "ident", Label: "z", Parent: 0})
			continue
		}

		switch r.IntN(4) {
		case 0:
			out[i].Label = labels[r.IntN(len(labels))]
		case 1:
			out[i].Parent = r.IntN(i)
		case 2:
			out = remove(out, i)
		default:
			out = append(out, tree.ParentEntry{
				Type:   types[r.IntN(len(types))],
				Label:  labels[r.IntN(len(labels))],
				Parent: r.IntN(len(out)),
			})
		}
	}

	return out
}

// remove drops entry i, hands its children to its parent and renumbers the
// entries after it.
func remove(entries []tree.ParentEntry, i int) []tree.ParentEntry {
	parent := entries[i].Parent
	out := make([]tree.ParentEntry, 0, len(entries)-1)

	for j, e := range entries {
		if j == i {
			continue
		}

		switch {
		case e.Parent == i:
			e.Parent = parent
		case e.Parent > i:
			e.Parent--
		}

		out = append(out, e)
	}

	return out
}

// Build is tree.FromParents for entries known to be well formed.
func Build(entries []tree.ParentEntry) *tree.Tree {
	t, err := tree.FromParents(entries)
	if err != nil {
		panic(err)
	}

	return t
}
