package adapter

import (
	"context"
	"errors"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"reflect"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
	m "treedelta.dev/pkg/treedelta/internal/model"
)

// GoFileAdapter is the front end for Go source files. Each AST node becomes a
// tree node typed by its go/ast kind (FuncDecl, Ident, BinaryExpr, ...) and
// labeled with its name, literal value or operator.
type GoFileAdapter struct {
	comments bool
}

// GoFileOption configures a GoFileAdapter.
type GoFileOption func(*GoFileAdapter)

// WithComments keeps comment groups in the tree.
func WithComments(enabled bool) GoFileOption {
	return func(a *GoFileAdapter) {
		a.comments = enabled
	}
}

// NewGoFileAdapter constructs a GoFileAdapter.
func NewGoFileAdapter(opts ...GoFileOption) *GoFileAdapter {
	a := &GoFileAdapter{}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Parse implements TreeParser.
func (a *GoFileAdapter) Parse(ctx context.Context, path m.Path, content []byte) (*tree.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := parser.SkipObjectResolution
	if a.comments {
		mode |= parser.ParseComments
	}

	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, string(path), content, mode)
	if err != nil {
		return nil, goParseError(path, err)
	}

	b := tree.NewBuilder()
	stack := []tree.NodeID{tree.NoNode}

	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return false
		}

		typ, label := describe(n)
		id := b.Add(stack[len(stack)-1], typ, label, nodePosition(fset, n))
		stack = append(stack, id)

		return true
	})

	t, err := b.Build()
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return t, nil
}

func goParseError(path m.Path, err error) error {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return &ParseError{Path: path, Line: list[0].Pos.Line, Column: list[0].Pos.Column, Err: errors.New(list[0].Msg)}
	}

	return &ParseError{Path: path, Err: err}
}

func describe(n ast.Node) (string, string) {
	typ := reflect.TypeOf(n).Elem().Name()

	switch n := n.(type) {
	case *ast.Ident:
		return typ, n.Name
	case *ast.BasicLit:
		return typ, n.Value
	case *ast.BinaryExpr:
		return typ, n.Op.String()
	case *ast.UnaryExpr:
		return typ, n.Op.String()
	case *ast.AssignStmt:
		return typ, n.Tok.String()
	case *ast.IncDecStmt:
		return typ, n.Tok.String()
	case *ast.BranchStmt:
		return typ, n.Tok.String()
	case *ast.GenDecl:
		return typ, n.Tok.String()
	case *ast.RangeStmt:
		if n.Tok != token.ILLEGAL {
			return typ, n.Tok.String()
		}
	case *ast.Comment:
		return typ, n.Text
	}

	return typ, ""
}

func nodePosition(fset *token.FileSet, n ast.Node) *tree.Position {
	start, end := fset.Position(n.Pos()), fset.Position(n.End())

	return &tree.Position{
		StartLine:   start.Line,
		StartCol:    start.Column,
		StartOffset: start.Offset,
		EndLine:     end.Line,
		EndCol:      end.Column,
		EndOffset:   end.Offset,
	}
}
