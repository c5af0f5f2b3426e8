package tree

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDepths(t *testing.T) {
	tr, err := FromDepths([]DepthEntry{
		{Type: "root", Depth: 0},
		{Type: "x", Depth: 1},
		{Type: "y", Label: "1", Depth: 2},
		{Type: "z", Depth: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, tr.Len())
	assert.Equal(t, NodeID(0), tr.Root())
	assert.Equal(t, []NodeID{1, 3}, tr.Children(0))
	assert.Equal(t, NodeID(1), tr.Parent(2))
	assert.Equal(t, NoNode, tr.Parent(0))
	assert.Equal(t, 1, tr.ChildPosition(3))
	assert.Equal(t, -1, tr.ChildPosition(0))
	assert.Equal(t, 4, tr.Size(0))
	assert.Equal(t, 2, tr.Size(1))
	assert.Equal(t, 3, tr.Height(0))
	assert.Equal(t, 1, tr.Height(3))
	assert.Equal(t, 2, tr.Depth(2))
	assert.Equal(t, "y: 1", tr.PrettyString(2))
	assert.Equal(t, "root(x(y:1), z)", tr.Notation())
}

func TestFromDepths_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		entries []DepthEntry
		index   int
	}{
		{"empty", nil, -1},
		{"root not at depth zero", []DepthEntry{{Type: "a", Depth: 1}}, 0},
		{"depth jump", []DepthEntry{{Type: "a"}, {Type: "b", Depth: 2}}, 1},
		{"negative depth", []DepthEntry{{Type: "a"}, {Type: "b", Depth: -1}}, 1},
		{"second root", []DepthEntry{{Type: "a"}, {Type: "b", Depth: 1}, {Type: "c"}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDepths(tt.entries)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrMalformedTree)

			var mErr *MalformedTreeError
			require.True(t, errors.As(err, &mErr))
			assert.Equal(t, tt.index, mErr.Index)
		})
	}
}

func TestFromParents(t *testing.T) {
	// Entries are deliberately out of pre-order.
	tr, err := FromParents([]ParentEntry{
		{Type: "leaf", Label: "b", Parent: 2},
		{Type: "leaf", Label: "a", Parent: 2},
		{Type: "root", Parent: -1},
	})
	require.NoError(t, err)

	assert.Equal(t, NodeID(2), tr.Root())
	assert.Equal(t, []NodeID{0, 1}, tr.Children(2))
	assert.Equal(t, "root(leaf:b, leaf:a)", tr.Notation())
	assert.Equal(t, 0, tr.PreOrderRank(2))
	assert.Equal(t, 1, tr.PreOrderRank(0))
}

func TestFromParents_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		entries []ParentEntry
	}{
		{"empty", nil},
		{"no root", []ParentEntry{{Type: "a", Parent: 1}, {Type: "b", Parent: 0}}},
		{"two roots", []ParentEntry{{Type: "a", Parent: -1}, {Type: "b", Parent: -1}}},
		{"out of range", []ParentEntry{{Type: "a", Parent: -1}, {Type: "b", Parent: 7}}},
		{"self parent", []ParentEntry{{Type: "a", Parent: -1}, {Type: "b", Parent: 1}}},
		{"cycle", []ParentEntry{{Type: "a", Parent: -1}, {Type: "b", Parent: 2}, {Type: "c", Parent: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromParents(tt.entries)
			require.ErrorIs(t, err, ErrMalformedTree)
		})
	}
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := NewBuilder().Build()
		require.ErrorIs(t, err, ErrMalformedTree)
	})

	t.Run("second root", func(t *testing.T) {
		b := NewBuilder()
		b.Add(NoNode, "a", "", nil)
		b.Add(NoNode, "b", "", nil)
		_, err := b.Build()
		require.ErrorIs(t, err, ErrMalformedTree)
	})

	t.Run("unknown parent", func(t *testing.T) {
		b := NewBuilder()
		b.Add(NoNode, "a", "", nil)
		b.Add(5, "b", "", nil)
		_, err := b.Build()
		require.ErrorIs(t, err, ErrMalformedTree)
	})
}

func TestTraversals(t *testing.T) {
	tr := MustParseNotation("a(b(c, d), e(f))")

	pre := slices.Collect(tr.PreOrder())
	assert.Equal(t, []NodeID{0, 1, 2, 3, 4, 5}, pre)

	// Restartable.
	assert.Equal(t, pre, slices.Collect(tr.PreOrder()))

	post := slices.Collect(tr.PostOrder())
	assert.Equal(t, []NodeID{2, 3, 1, 5, 4, 0}, post)

	assert.Equal(t, []NodeID{2, 3}, slices.Collect(tr.Descendants(1)))
	assert.Equal(t, []NodeID{4, 5}, slices.Collect(tr.Subtree(4)))

	assert.True(t, tr.IsDescendant(3, 1))
	assert.True(t, tr.IsDescendant(5, 0))
	assert.False(t, tr.IsDescendant(1, 1))
	assert.False(t, tr.IsDescendant(5, 1))

	var first []NodeID
	for id := range tr.PreOrder() {
		first = append(first, id)
		if len(first) == 2 {
			break
		}
	}
	assert.Equal(t, []NodeID{0, 1}, first)
}

func TestIsomorphic(t *testing.T) {
	a := MustParseNotation("r(x(y:1, z), x(y:1, z), w)")
	b := MustParseNotation("q(w, x(y:1, z))")

	assert.True(t, Isomorphic(a, 1, a, 4))
	assert.True(t, Isomorphic(a, 1, b, 2))
	assert.Equal(t, a.Signature(1), b.Signature(2))
	assert.False(t, Isomorphic(a, 0, b, 0))
	assert.False(t, Isomorphic(a, 2, a, 3))

	c := MustParseNotation("r(x(y:2, z))")
	assert.False(t, Isomorphic(a, 1, c, 1))
	assert.NotEqual(t, a.Signature(1), c.Signature(1))

	assert.True(t, Equal(a, MustParseNotation(a.Notation())))
}

func TestSignature_OrderMatters(t *testing.T) {
	a := MustParseNotation("r(a, b)")
	b := MustParseNotation("r(b, a)")

	assert.NotEqual(t, a.Signature(0), b.Signature(0))
	assert.False(t, Equal(a, b))
}

func TestNotation(t *testing.T) {
	t.Run("quoted words", func(t *testing.T) {
		tr := MustParseNotation(`call:"fmt.Println"(lit:"hello, world", lit:"")`)
		assert.Equal(t, "fmt.Println", tr.Label(0))
		assert.Equal(t, "hello, world", tr.Label(1))
		assert.Equal(t, "", tr.Label(2))
		assert.Equal(t, `call:fmt.Println(lit:"hello, world", lit)`, tr.Notation())
	})

	t.Run("errors", func(t *testing.T) {
		for _, in := range []string{"", "a(", "a(b", "a b", `a:"x`, "a(,)"} {
			_, err := ParseNotation(in)
			assert.ErrorIs(t, err, ErrMalformedTree, in)
		}
	})
}

func TestString(t *testing.T) {
	tr := MustParseNotation("root(x:1(y), z)")
	assert.Equal(t, "root (0)\n  x: 1 (1)\n    y (2)\n  z (3)\n", tr.String())
}
