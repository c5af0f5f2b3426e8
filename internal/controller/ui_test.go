package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	m "treedelta.dev/pkg/treedelta/internal/model"
)

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer

	cmd := &cobra.Command{Use: "treedelta"}
	cmd.SetOut(&out)

	return cmd, &out
}

func sampleReport() m.Report {
	return m.Report{
		Name:   "x.tree",
		Status: m.StatusModified,
		SourceTree: []m.NodeRecord{
			{ID: 0, Type: "r", Depth: 0},
			{ID: 1, Type: "a", Label: "count", Depth: 1},
		},
		DestinationTree: []m.NodeRecord{
			{ID: 0, Type: "r", Depth: 0},
			{ID: 1, Type: "a", Label: "counter", Depth: 1},
			{ID: 2, Type: "b", Depth: 1},
		},
		Mapping: []m.MappingRecord{{Src: 0, Dst: 0}, {Src: 1, Dst: 1}},
		Actions: []m.ActionRecord{
			{Kind: "Insert", Node: m.NodeRef{ID: 2, Type: "b"}, Text: "Insert b(2) into r(0) at 1"},
			{Kind: "Update", Node: m.NodeRef{ID: 1, Type: "a", Label: "count"}, NewLabel: "counter", Text: "Update a: count(1) to counter"},
		},
		Stats: m.Stats{SourceNodes: 2, DestinationNodes: 3, Mapped: 2, Inserts: 1, Updates: 1},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "summary", "yaml", "json", "tree"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}

	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestSimpleUI_DisplayReport(t *testing.T) {
	tests := []struct {
		name    string
		options []StartOption
		report  m.Report
		want    string
	}{
		{
			name:    "actions only",
			options: []StartOption{WithTrees(false)},
			report:  sampleReport(),
			want: "=== x.tree [modified]\n" +
				"actions:\n" +
				"Insert b(2) into r(0) at 1\n" +
				"Update a: count(1) to counter\n",
		},
		{
			name:    "label diff",
			options: []StartOption{WithTrees(false), WithLabelDiff(true)},
			report:  sampleReport(),
			want: "=== x.tree [modified]\n" +
				"actions:\n" +
				"Insert b(2) into r(0) at 1\n" +
				"Update a: count(1) to counter  count{+er+}\n",
		},
		{
			name: "with trees",
			report: m.Report{
				Status:          m.StatusUnchanged,
				SourceTree:      []m.NodeRecord{{ID: 0, Type: "r"}, {ID: 1, Type: "a", Label: "x", Depth: 1}},
				DestinationTree: []m.NodeRecord{{ID: 0, Type: "r"}},
			},
			want: "source:\n" +
				"r (0)\n" +
				"  a: x (1)\n" +
				"destination:\n" +
				"r (0)\n" +
				"actions:\n" +
				"no changes\n",
		},
		{
			name:    "failed pair",
			options: []StartOption{WithTrees(false)},
			report:  m.Report{Name: "bad.tree", Status: m.StatusFailed, Error: "second root"},
			want:    "=== bad.tree [failed]\nerror: second root\n",
		},
		{
			name:    "filtered",
			options: []StartOption{WithTrees(false)},
			report:  m.Report{Name: "y", Status: m.StatusModified, Stats: m.Stats{Updates: 1, Filtered: 1}},
			want:    "=== y [modified]\nactions:\n(1 actions hidden by filter)\n",
		},
		{
			name:    "summary format prints nothing per report",
			options: []StartOption{WithFormat(FormatSummary)},
			report:  sampleReport(),
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := newTestCmd()
			ui := NewSimpleUI(cmd)
			ctx := context.Background()

			require.NoError(t, ui.Start(ctx, tt.options...))
			require.NoError(t, ui.DisplayReport(ctx, tt.report))
			ui.Wait(ctx)
			ui.Close(ctx)

			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestSimpleUI_SourceDiff(t *testing.T) {
	cmd, out := newTestCmd()
	ui := NewSimpleUI(cmd)
	ctx := context.Background()

	r := sampleReport()
	r.SourceDiff = "--- a\n+++ b\n+x\n"

	require.NoError(t, ui.Start(ctx, WithTrees(false)))
	require.NoError(t, ui.DisplayReport(ctx, r))

	assert.True(t, strings.HasSuffix(out.String(), "source diff:\n--- a\n+++ b\n+x\n"))
}

func TestSimpleUI_Structured(t *testing.T) {
	ctx := context.Background()

	t.Run("yaml", func(t *testing.T) {
		cmd, out := newTestCmd()
		ui := NewSimpleUI(cmd)

		require.NoError(t, ui.Start(ctx, WithFormat(FormatYAML)))
		require.NoError(t, ui.DisplayReport(ctx, m.Report{Name: "a", Status: m.StatusModified}))
		require.NoError(t, ui.DisplayReport(ctx, m.Report{Name: "b", Status: m.StatusUnchanged}))
		require.NoError(t, ui.DisplaySummary(ctx, []m.Report{{Name: "a"}}))

		docs := strings.Split(out.String(), "---\n")
		require.Len(t, docs, 2)

		var second m.Report
		require.NoError(t, yaml.Unmarshal([]byte(docs[1]), &second))
		assert.Equal(t, "b", second.Name)
		assert.Equal(t, m.StatusUnchanged, second.Status)
	})

	t.Run("json", func(t *testing.T) {
		cmd, out := newTestCmd()
		ui := NewSimpleUI(cmd)

		require.NoError(t, ui.Start(ctx, WithFormat(FormatJSON)))
		require.NoError(t, ui.DisplayReport(ctx, sampleReport()))
		require.NoError(t, ui.DisplayReport(ctx, m.Report{Name: "b"}))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)

		var first m.Report
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		assert.Equal(t, sampleReport(), first)
	})
}

func TestSimpleUI_DisplayTree(t *testing.T) {
	ctx := context.Background()
	view := m.TreeView{
		Nodes: []m.NodeRecord{
			{ID: 0, Type: "r"},
			{ID: 1, Type: "a", Label: "x", Depth: 1},
			{ID: 2, Type: "c", Depth: 2},
			{ID: 3, Type: "b", Depth: 1},
		},
		Document: m.TreeDocument{
			Type: "r",
			Children: []m.TreeDocument{
				{Type: "a", Label: "x", Children: []m.TreeDocument{{Type: "c"}}},
				{Type: "b"},
			},
		},
		Indented: "r\n  a: x\n    c\n  b\n",
	}

	t.Run("text", func(t *testing.T) {
		cmd, out := newTestCmd()
		ui := NewSimpleUI(cmd)

		require.NoError(t, ui.Start(ctx))
		require.NoError(t, ui.DisplayTree(ctx, "t.tree", view))
		assert.Equal(t, "r (0)\n  a: x (1)\n    c (2)\n  b (3)\n", out.String())
	})

	t.Run("tree", func(t *testing.T) {
		cmd, out := newTestCmd()
		ui := NewSimpleUI(cmd)

		require.NoError(t, ui.Start(ctx, WithFormat(FormatTree)))
		require.NoError(t, ui.DisplayTree(ctx, "t.tree", view))
		assert.Equal(t, view.Indented, out.String())
	})

	t.Run("yaml", func(t *testing.T) {
		cmd, out := newTestCmd()
		ui := NewSimpleUI(cmd)

		require.NoError(t, ui.Start(ctx, WithFormat(FormatYAML)))
		require.NoError(t, ui.DisplayTree(ctx, "t.tree", view))

		var doc m.TreeDocument
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
		assert.Equal(t, view.Document, doc)
	})

	t.Run("json", func(t *testing.T) {
		cmd, out := newTestCmd()
		ui := NewSimpleUI(cmd)

		require.NoError(t, ui.Start(ctx, WithFormat(FormatJSON)))
		require.NoError(t, ui.DisplayTree(ctx, "t.tree", view))
		assert.JSONEq(t, `{"type":"r","children":[{"type":"a","label":"x","children":[{"type":"c"}]},{"type":"b"}]}`, out.String())
	})
}

func TestSimpleUI_DisplayMapping(t *testing.T) {
	cmd, out := newTestCmd()
	ui := NewSimpleUI(cmd)
	ctx := context.Background()

	require.NoError(t, ui.Start(ctx, WithTrees(false)))
	require.NoError(t, ui.DisplayMapping(ctx, sampleReport()))

	assert.Equal(t, "=== x.tree [modified]\n"+
		"mapping:\n"+
		"r(0) -> r(0)\n"+
		"a: count(1) -> a: counter(1)\n"+
		"2 of 2 source nodes mapped\n", out.String())
}

func TestSimpleUI_DisplaySummary(t *testing.T) {
	cmd, out := newTestCmd()
	ui := NewSimpleUI(cmd)
	ctx := context.Background()

	reports := []m.Report{
		sampleReport(),
		{Name: "same.tree", Status: m.StatusUnchanged, Destination: &m.File{Size: 2048}},
	}

	require.NoError(t, ui.Start(ctx, WithFormat(FormatSummary)))
	require.NoError(t, ui.DisplaySummary(ctx, reports))

	s := out.String()
	assert.Contains(t, s, "Name")
	assert.Contains(t, s, "x.tree")
	assert.Contains(t, s, "same.tree")
	assert.Contains(t, s, "2.0 kB")
	assert.Contains(t, s, "2 -> 3")
	assert.Contains(t, s, "2 files")
	assert.Contains(t, s, "1 changed")
}

func TestSimpleUI_CancelledContext(t *testing.T) {
	cmd, out := newTestCmd()
	ui := NewSimpleUI(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, ui.Start(ctx), context.Canceled)
	assert.ErrorIs(t, ui.DisplayReport(ctx, sampleReport()), context.Canceled)
	assert.ErrorIs(t, ui.DisplayTree(ctx, "x", m.TreeView{}), context.Canceled)
	assert.Empty(t, out.String())
}

func TestTUI_PrintsShortOutput(t *testing.T) {
	cmd, out := newTestCmd()
	ui := NewTUI(cmd)
	ctx := context.Background()

	require.NoError(t, ui.Start(ctx, WithTrees(false), WithColor(false)))
	require.NoError(t, ui.DisplayReport(ctx, sampleReport()))
	assert.Empty(t, out.String(), "output is held until Wait")

	ui.Wait(ctx)
	ui.Close(ctx)

	assert.Equal(t, "=== x.tree [modified]\n"+
		"actions:\n"+
		"Insert b(2) into r(0) at 1\n"+
		"Update a: count(1) to counter\n", out.String())
}

func TestTUI_CloseFlushesPendingOutput(t *testing.T) {
	cmd, out := newTestCmd()
	ui := NewTUI(cmd)
	ctx := context.Background()

	require.NoError(t, ui.Start(ctx, WithColor(false)))
	require.NoError(t, ui.DisplayTree(ctx, "t", m.TreeView{Nodes: []m.NodeRecord{{ID: 0, Type: "r"}}}))
	ui.Close(ctx)

	assert.Equal(t, "r (0)\n", out.String())
}

func TestPagerModel(t *testing.T) {
	content := strings.Repeat("line\n", 50)

	pm := newPagerModel("x.tree", content)
	assert.False(t, pm.needsPagination(), "unknown screen size")

	assert.True(t, pm.resize(80, 20).needsPagination())
	assert.False(t, pm.resize(80, 100).needsPagination())

	next, _ := pm.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	pm = next.(pagerModel)
	assert.Equal(t, 18, pm.viewport.Height)
	assert.Contains(t, pm.View(), "x.tree")

	_, cmd := pm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
