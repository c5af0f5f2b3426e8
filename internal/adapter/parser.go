package adapter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
	m "treedelta.dev/pkg/treedelta/internal/model"
)

var (
	// ErrParse marks every front end failure.
	ErrParse = errors.New("parse error")
	// ErrUnsupportedFile is returned for inputs no front end accepts.
	ErrUnsupportedFile = errors.New("unsupported file")
)

// ParseError reports where a front end gave up. It matches both ErrParse and
// the underlying cause with errors.Is.
type ParseError struct {
	Path   m.Path
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parse %s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Err)
	default:
		return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
	}
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// TreeParser turns raw input into a tree.
type TreeParser interface {
	Parse(ctx context.Context, path m.Path, content []byte) (*tree.Tree, error)
}

// ParserRegistry dispatches to a front end by detected language, falling back
// to the file extension.
type ParserRegistry struct {
	byLanguage  map[string]TreeParser
	byExtension map[string]TreeParser
}

// NewParserRegistry returns an empty registry.
func NewParserRegistry() *ParserRegistry {
	return &ParserRegistry{
		byLanguage:  map[string]TreeParser{},
		byExtension: map[string]TreeParser{},
	}
}

// NewDefaultParserRegistry registers the Go and tree description front ends.
func NewDefaultParserRegistry(goParser *GoFileAdapter, treeParser *TreeFileAdapter) *ParserRegistry {
	r := NewParserRegistry()
	r.Register(goParser, []string{"Go"}, ".go")
	r.Register(treeParser, []string{"YAML", "JSON"}, ".yaml", ".yml", ".json", ".tree")

	return r
}

// Register maps languages, as named by enry, and file extensions to p.
func (r *ParserRegistry) Register(p TreeParser, languages []string, extensions ...string) {
	for _, lang := range languages {
		r.byLanguage[lang] = p
	}

	for _, ext := range extensions {
		r.byExtension[strings.ToLower(ext)] = p
	}
}

// Language guesses the language of path. content may be nil.
func (r *ParserRegistry) Language(path m.Path, content []byte) string {
	return enry.GetLanguage(filepath.Base(string(path)), content)
}

// Supports reports whether some front end would accept path.
func (r *ParserRegistry) Supports(path m.Path) bool {
	return r.lookup(path, nil) != nil
}

// Parse implements TreeParser.
func (r *ParserRegistry) Parse(ctx context.Context, path m.Path, content []byte) (*tree.Tree, error) {
	p := r.lookup(path, content)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}

	return p.Parse(ctx, path, content)
}

func (r *ParserRegistry) lookup(path m.Path, content []byte) TreeParser {
	if p, ok := r.byExtension[strings.ToLower(filepath.Ext(string(path)))]; ok {
		return p
	}

	if p, ok := r.byLanguage[r.Language(path, content)]; ok {
		return p
	}

	return nil
}
