package adapter

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
	m "treedelta.dev/pkg/treedelta/internal/model"
)

//go:embed tree.schema.json
var treeSchema []byte

// ErrSchema marks tree descriptions rejected by the schema.
var ErrSchema = errors.New("tree description does not match schema")

// TreeFileAdapter reads trees written out by hand or by other tools.
//
// Two encodings are accepted. YAML and JSON documents nest nodes as
// {type, label, children}. Files ending in .tree list one node per line as
// "type" or "type: label", indented by two spaces per level; blank lines and
// lines starting with '#' are skipped.
type TreeFileAdapter struct {
	schema *gojsonschema.Schema
}

// NewTreeFileAdapter compiles the embedded schema.
func NewTreeFileAdapter() (*TreeFileAdapter, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(treeSchema))
	if err != nil {
		return nil, fmt.Errorf("compile tree schema: %w", err)
	}

	return &TreeFileAdapter{schema: schema}, nil
}

// Parse implements TreeParser.
func (a *TreeFileAdapter) Parse(ctx context.Context, path m.Path, content []byte) (*tree.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(string(path)), ".tree") {
		return parseIndented(path, content)
	}

	return a.parseDocument(path, content)
}

func (a *TreeFileAdapter) parseDocument(path m.Path, content []byte) (*tree.Tree, error) {
	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	result, err := a.schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			reasons = append(reasons, e.String())
		}

		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %s", ErrSchema, strings.Join(reasons, "; "))}
	}

	var doc m.TreeDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	b := tree.NewBuilder()
	addDocument(b, tree.NoNode, doc)

	t, err := b.Build()
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return t, nil
}

func addDocument(b *tree.Builder, parent tree.NodeID, doc m.TreeDocument) {
	id := b.Add(parent, doc.Type, doc.Label, nil)
	for _, c := range doc.Children {
		addDocument(b, id, c)
	}
}

// Document converts t back into its nested description.
func Document(t *tree.Tree) m.TreeDocument {
	var build func(tree.NodeID) m.TreeDocument

	build = func(id tree.NodeID) m.TreeDocument {
		doc := m.TreeDocument{Type: t.Type(id), Label: t.Label(id)}
		for _, c := range t.Children(id) {
			doc.Children = append(doc.Children, build(c))
		}

		return doc
	}

	return build(t.Root())
}

const indentWidth = 2

func parseIndented(path m.Path, content []byte) (*tree.Tree, error) {
	var (
		entries []tree.DepthEntry
		lines   []int
	)

	sc := bufio.NewScanner(bytes.NewReader(content))
	line := 0

	for sc.Scan() {
		line++

		text := strings.TrimRight(sc.Text(), " \r")
		body := strings.TrimLeft(text, " ")

		if body == "" || strings.HasPrefix(body, "#") {
			continue
		}

		indent := len(text) - len(body)
		if strings.HasPrefix(body, "\t") || indent%indentWidth != 0 {
			return nil, &ParseError{Path: path, Line: line, Err: fmt.Errorf("indentation must be a multiple of %d spaces", indentWidth)}
		}

		typ, label, err := splitNode(body)
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Err: err}
		}

		entries = append(entries, tree.DepthEntry{
			Type:  typ,
			Label: label,
			Depth: indent / indentWidth,
			Pos:   &tree.Position{StartLine: line, StartCol: indent + 1},
		})
		lines = append(lines, line)
	}

	if err := sc.Err(); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	t, err := tree.FromDepths(entries)
	if err != nil {
		pe := &ParseError{Path: path, Err: err}

		var malformed *tree.MalformedTreeError
		if errors.As(err, &malformed) && malformed.Index >= 0 && malformed.Index < len(lines) {
			pe.Line = lines[malformed.Index]
		}

		return nil, pe
	}

	return t, nil
}

func splitNode(body string) (string, string, error) {
	typ, label, found := strings.Cut(body, ":")
	typ = strings.TrimSpace(typ)

	if typ == "" {
		return "", "", errors.New("missing node type")
	}

	if !found {
		return typ, "", nil
	}

	label = strings.TrimSpace(label)
	if strings.HasPrefix(label, `"`) {
		unquoted, err := strconv.Unquote(label)
		if err != nil {
			return "", "", fmt.Errorf("bad quoted label %s: %w", label, err)
		}

		label = unquoted
	}

	return typ, label, nil
}

// FormatIndented renders t in the .tree line format.
func FormatIndented(t *tree.Tree) string {
	var b strings.Builder

	for id := range t.PreOrder() {
		b.WriteString(strings.Repeat(" ", indentWidth*t.Depth(id)))
		b.WriteString(t.Type(id))

		if label := t.Label(id); label != "" {
			b.WriteString(": ")
			if label != strings.TrimSpace(label) || strings.HasPrefix(label, `"`) {
				label = strconv.Quote(label)
			}

			b.WriteString(label)
		}

		b.WriteString("\n")
	}

	return b.String()
}
