package domain

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	m "treedelta.dev/pkg/treedelta/internal/model"
)

// ErrInvalidFilter is returned for filter expressions that do not compile to
// a boolean program.
var ErrInvalidFilter = errors.New("invalid filter expression")

// ActionEnv is what a filter expression sees of one action.
type ActionEnv struct {
	Kind       string
	Type       string
	Label      string
	NewLabel   string
	ParentType string
	Position   int
}

// Filter keeps the actions a boolean expression accepts, for example
// `Kind == "Move" && Type == "FuncDecl"`.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles source. An empty source yields a nil filter that
// keeps everything.
func CompileFilter(source string) (*Filter, error) {
	if source == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(ActionEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidFilter, source, err)
	}

	return &Filter{source: source, program: program}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}

	return f.source
}

// Keep reports whether the expression accepts r.
func (f *Filter) Keep(r m.ActionRecord) (bool, error) {
	if f == nil {
		return true, nil
	}

	env := ActionEnv{
		Kind:     r.Kind,
		Type:     r.Node.Type,
		Label:    r.Node.Label,
		NewLabel: r.NewLabel,
		Position: r.Position,
	}
	if r.Parent != nil {
		env.ParentType = r.Parent.Type
	}

	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate filter on %q: %w", r.Text, err)
	}

	keep, _ := out.(bool)

	return keep, nil
}

// Apply returns the accepted records and the number of dropped ones.
func (f *Filter) Apply(records []m.ActionRecord) ([]m.ActionRecord, int, error) {
	if f == nil {
		return records, 0, nil
	}

	kept := make([]m.ActionRecord, 0, len(records))

	for _, r := range records {
		ok, err := f.Keep(r)
		if err != nil {
			return nil, 0, err
		}

		if ok {
			kept = append(kept, r)
		}
	}

	return kept, len(records) - len(kept), nil
}
