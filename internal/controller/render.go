package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	m "treedelta.dev/pkg/treedelta/internal/model"
)

type sprintf func(format string, a ...interface{}) string

type palette struct {
	kinds   map[string]sprintf
	header  sprintf
	dim     sprintf
	failed  sprintf
	removed sprintf
	added   sprintf
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) sprintf {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}

		return c.SprintfFunc()
	}

	return palette{
		kinds: map[string]sprintf{
			"Insert": mk(color.FgGreen),
			"Delete": mk(color.FgRed),
			"Move":   mk(color.FgYellow),
			"Update": mk(color.FgCyan),
		},
		header:  mk(color.Bold),
		dim:     mk(color.Faint),
		failed:  mk(color.FgRed, color.Bold),
		removed: mk(color.FgRed, color.CrossedOut),
		added:   mk(color.FgGreen, color.Underline),
	}
}

// renderer writes reports in the configured format.
type renderer struct {
	out       io.Writer
	cfg       StartConfig
	colors    palette
	documents int
}

func newRenderer(out io.Writer, cfg StartConfig) *renderer {
	return &renderer{out: out, cfg: cfg, colors: newPalette(cfg.color)}
}

func (r *renderer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// document writes v as the next YAML document or JSON line.
func (r *renderer) document(v any) error {
	if r.cfg.format == FormatJSON {
		return json.NewEncoder(r.out).Encode(v)
	}

	if r.documents > 0 {
		r.printf("---\n")
	}

	r.documents++

	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return err
	}

	return enc.Close()
}

func (r *renderer) structured() bool {
	return r.cfg.format == FormatYAML || r.cfg.format == FormatJSON
}

func (r *renderer) tree(title string, nodes []m.NodeRecord) {
	if title != "" {
		r.printf("%s\n", r.colors.header("%s", title))
	}

	for _, n := range nodes {
		r.printf("%s%s (%d)\n", strings.Repeat("  ", n.Depth), pretty(n.Type, n.Label), n.ID)
	}
}

func pretty(typ, label string) string {
	if label == "" {
		return typ
	}

	return typ + ": " + label
}

func (r *renderer) displayTree(view m.TreeView) error {
	switch {
	case r.structured():
		return r.document(view.Document)
	case r.cfg.format == FormatTree:
		r.printf("%s", view.Indented)
		return nil
	}

	r.tree("", view.Nodes)

	return nil
}

func (r *renderer) header(report m.Report) {
	if report.Name == "" {
		return
	}

	status := string(report.Status)

	switch report.Status {
	case m.StatusFailed:
		status = r.colors.failed("%s", status)
	case m.StatusRemoved:
		status = r.colors.removed("%s", status)
	case m.StatusAdded:
		status = r.colors.added("%s", status)
	}

	r.printf("%s [%s]\n", r.colors.header("=== %s", report.Name), status)
}

func (r *renderer) trees(report m.Report) {
	if !r.cfg.trees {
		return
	}

	if report.SourceTree != nil {
		r.tree("source:", report.SourceTree)
	}

	if report.DestinationTree != nil {
		r.tree("destination:", report.DestinationTree)
	}
}

func (r *renderer) displayReport(report m.Report) error {
	switch {
	case r.structured():
		return r.document(report)
	case r.cfg.format == FormatSummary:
		return nil
	}

	r.header(report)

	if report.Error != "" {
		r.printf("%s\n", r.colors.failed("error: %s", report.Error))
		return nil
	}

	r.trees(report)

	if report.Name != "" || r.cfg.trees {
		r.printf("%s\n", r.colors.header("actions:"))
	}

	for _, a := range report.Actions {
		r.action(a)
	}

	if len(report.Actions) == 0 && report.Stats.Filtered == 0 &&
		(report.Status == m.StatusUnchanged || report.Status == m.StatusModified) {
		r.printf("%s\n", r.colors.dim("no changes"))
	}

	if report.Stats.Filtered > 0 {
		r.printf("%s\n", r.colors.dim("(%d actions hidden by filter)", report.Stats.Filtered))
	}

	if report.SourceDiff != "" {
		r.printf("%s\n%s", r.colors.header("source diff:"), report.SourceDiff)
	}

	return nil
}

func (r *renderer) action(a m.ActionRecord) {
	text := a.Text
	if paint, ok := r.colors.kinds[a.Kind]; ok {
		text = paint("%s", text)
	}

	if r.cfg.labelDiff && a.Kind == "Update" {
		text += "  " + r.labelDiff(a.Node.Label, a.NewLabel)
	}

	r.printf("%s\n", text)
}

// labelDiff marks deleted runs as [-x-] and inserted runs as {+y+}.
func (r *renderer) labelDiff(from, to string) string {
	dmp := diffpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(from, to, false))

	var b strings.Builder

	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffDelete:
			b.WriteString(r.colors.kinds["Delete"]("[-%s-]", d.Text))
		case diffpatch.DiffInsert:
			b.WriteString(r.colors.kinds["Insert"]("{+%s+}", d.Text))
		case diffpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}

	return b.String()
}

func (r *renderer) displayMapping(report m.Report) error {
	if r.structured() {
		return r.document(report)
	}

	r.header(report)
	r.trees(report)

	src := indexNodes(report.SourceTree)
	dst := indexNodes(report.DestinationTree)

	r.printf("%s\n", r.colors.header("mapping:"))

	for _, p := range report.Mapping {
		r.printf("%s(%d) -> %s(%d)\n", src[p.Src], p.Src, dst[p.Dst], p.Dst)
	}

	r.printf("%s\n", r.colors.dim("%s of %s source nodes mapped",
		humanize.Comma(int64(report.Stats.Mapped)), humanize.Comma(int64(report.Stats.SourceNodes))))

	return nil
}

func indexNodes(nodes []m.NodeRecord) map[int]string {
	index := make(map[int]string, len(nodes))
	for _, n := range nodes {
		index[n.ID] = pretty(n.Type, n.Label)
	}

	return index
}

func (r *renderer) displaySummary(reports []m.Report) error {
	if r.structured() {
		return nil
	}

	r.printf("\n%s", renderSummaryTable(reports))

	return nil
}

func renderSummaryTable(reports []m.Report) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Name", "Status", "Size", "Nodes", "Mapped", "Insert", "Delete", "Move", "Update"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	var total m.Stats

	changed := 0

	for _, r := range reports {
		s := r.Stats
		total.Inserts += s.Inserts
		total.Deletes += s.Deletes
		total.Moves += s.Moves
		total.Updates += s.Updates

		if r.Status != m.StatusUnchanged {
			changed++
		}

		table.Append([]string{
			r.Name,
			string(r.Status),
			reportSize(r),
			fmt.Sprintf("%s -> %s", humanize.Comma(int64(s.SourceNodes)), humanize.Comma(int64(s.DestinationNodes))),
			humanize.Comma(int64(s.Mapped)),
			humanize.Comma(int64(s.Inserts)),
			humanize.Comma(int64(s.Deletes)),
			humanize.Comma(int64(s.Moves)),
			humanize.Comma(int64(s.Updates)),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("%d files", len(reports)),
		fmt.Sprintf("%d changed", changed),
		"", "", "",
		humanize.Comma(int64(total.Inserts)),
		humanize.Comma(int64(total.Deletes)),
		humanize.Comma(int64(total.Moves)),
		humanize.Comma(int64(total.Updates)),
	})

	table.Render()

	return tableBuffer.String()
}

func reportSize(r m.Report) string {
	switch {
	case r.Destination != nil:
		return humanize.Bytes(uint64(max(r.Destination.Size, 0)))
	case r.Source != nil:
		return humanize.Bytes(uint64(max(r.Source.Size, 0)))
	default:
		return "-"
	}
}
