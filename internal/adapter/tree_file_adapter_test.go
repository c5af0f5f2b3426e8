package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
	m "treedelta.dev/pkg/treedelta/internal/model"
)

func newTreeFileAdapter(t *testing.T) *TreeFileAdapter {
	t.Helper()

	a, err := NewTreeFileAdapter()
	require.NoError(t, err)

	return a
}

func TestTreeFileAdapter_Parse(t *testing.T) {
	tests := []struct {
		name    string
		path    m.Path
		content string
		want    string
	}{
		{
			name: "yaml document",
			path: "a.yaml",
			content: `type: block
children:
  - type: call
    label: print
    children:
      - type: arg
        label: x
  - type: return
`,
			want: `block(call:print(arg:x), return)`,
		},
		{
			name:    "json document",
			path:    "a.json",
			content: `{"type": "block", "children": [{"type": "n", "label": 3}, {"type": "b", "label": true}]}`,
			want:    `block(n:3, b:true)`,
		},
		{
			name: "indented lines",
			path: "a.tree",
			content: `# comment
block
  call: print
    arg: " x "

  return
`,
			want: `block(call:print(arg:" x "), return)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTreeFileAdapter(t).Parse(context.Background(), tt.path, []byte(tt.content))
			require.NoError(t, err)

			want := tree.MustParseNotation(tt.want)
			assert.True(t, tree.Equal(want, got), "got %s, want %s", got.Notation(), want.Notation())
		})
	}
}

func TestTreeFileAdapter_Parse_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		path     m.Path
		content  string
		wantErr  error
		wantLine int
	}{
		{name: "missing type", path: "a.yaml", content: "label: x\n", wantErr: ErrSchema},
		{name: "unknown field", path: "a.json", content: `{"type": "a", "kids": []}`, wantErr: ErrSchema},
		{name: "nested label object", path: "a.yaml", content: "type: a\nchildren:\n  - type: b\n    label: {x: 1}\n", wantErr: ErrSchema},
		{name: "broken yaml", path: "a.yaml", content: "type: [a\n"},
		{name: "depth jump", path: "a.tree", content: "a\n  b\n\n      c\n", wantErr: tree.ErrMalformedTree, wantLine: 4},
		{name: "second root", path: "a.tree", content: "a\nb\n", wantErr: tree.ErrMalformedTree, wantLine: 2},
		{name: "odd indent", path: "a.tree", content: "a\n   b\n", wantLine: 2},
		{name: "empty", path: "a.tree", content: "# nothing\n", wantErr: tree.ErrMalformedTree},
		{name: "bad quote", path: "a.tree", content: "a: \"x\n", wantLine: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTreeFileAdapter(t).Parse(context.Background(), tt.path, []byte(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantLine, pe.Line)
			assert.Equal(t, tt.path, pe.Path)
		})
	}
}

func TestFormatIndented_RoundTrip(t *testing.T) {
	src := tree.MustParseNotation(`file(func:main(stmt:" padded", stmt:"\"q\""), var:x)`)

	text := FormatIndented(src)
	assert.Equal(t, "file\n  func: main\n    stmt: \" padded\"\n    stmt: \"\\\"q\\\"\"\n  var: x\n", text)

	got, err := newTreeFileAdapter(t).Parse(context.Background(), "x.tree", []byte(text))
	require.NoError(t, err)
	assert.True(t, tree.Equal(src, got))
}

func TestDocument(t *testing.T) {
	src := tree.MustParseNotation(`a(b:1(c), d)`)

	assert.Equal(t, m.TreeDocument{
		Type: "a",
		Children: []m.TreeDocument{
			{Type: "b", Label: "1", Children: []m.TreeDocument{{Type: "c"}}},
			{Type: "d"},
		},
	}, Document(src))
}
