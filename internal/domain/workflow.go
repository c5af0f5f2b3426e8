package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"znkr.io/diff"
	"znkr.io/diff/textdiff"

	"treedelta.dev/pkg/treedelta/internal/adapter"
	"treedelta.dev/pkg/treedelta/internal/controller"
	"treedelta.dev/pkg/treedelta/internal/domain/actions"
	"treedelta.dev/pkg/treedelta/internal/domain/matching"
	"treedelta.dev/pkg/treedelta/internal/domain/tree"
	m "treedelta.dev/pkg/treedelta/internal/model"
	"treedelta.dev/pkg/treedelta/pkg"
)

var (
	// ErrUsage is returned when the inputs are not two files or two
	// directories.
	ErrUsage = errors.New("pass two files or two directories to compare")
	// ErrFormat is returned when a command cannot print in the requested
	// format.
	ErrFormat = errors.New("format not supported by this command")
	// ErrVerifyFailed is returned when replaying a script on the source does
	// not reproduce the destination.
	ErrVerifyFailed = errors.New("edit script verification failed")
)

const sourceDiffContext = 3

// DisplayArgs configures the UI of a run.
type DisplayArgs struct {
	Format    controller.Format
	NoTrees   bool
	LabelDiff bool
	NoColor   bool
}

func (a DisplayArgs) options() []controller.StartOption {
	format := a.Format
	if format == "" {
		format = controller.FormatText
	}

	options := []controller.StartOption{
		controller.WithFormat(format),
		controller.WithTrees(!a.NoTrees),
		controller.WithLabelDiff(a.LabelDiff),
	}

	if a.NoColor {
		options = append(options, controller.WithColor(false))
	}

	return options
}

// ParseArgs contains the arguments for printing one tree.
type ParseArgs struct {
	Path    m.Path
	Display DisplayArgs
}

// MatchArgs contains the arguments for printing the mapping of two files.
type MatchArgs struct {
	Source      m.Path
	Destination m.Path
	Options     matching.Options
	Display     DisplayArgs
}

// DiffArgs contains the arguments for diffing two files or two directories.
type DiffArgs struct {
	Source      m.Path
	Destination m.Path
	Options     matching.Options
	Display     DisplayArgs
	// Filter is an expression selecting the actions to show.
	Filter string
	// Verify replays every script and fails unless it reproduces the
	// destination.
	Verify bool
	// SourceDiff attaches a unified line diff of the raw inputs.
	SourceDiff bool
	// Save writes the reports to a report store path when set.
	Save m.Path
	// Parallel bounds the file pairs diffed at once in directory mode.
	Parallel int
}

// ViewArgs contains the arguments for displaying saved reports.
type ViewArgs struct {
	Reports m.Path
	Display DisplayArgs
}

// Workflow runs treedelta's use cases.
type Workflow interface {
	Parse(ctx context.Context, args ParseArgs) error
	Match(ctx context.Context, args MatchArgs) error
	Diff(ctx context.Context, args DiffArgs) error
	View(ctx context.Context, args ViewArgs) error
}

// SourceParser is the front end the workflow parses inputs with.
type SourceParser interface {
	adapter.TreeParser
	Language(path m.Path, content []byte) string
	Supports(path m.Path) bool
}

// SpillFactory creates the buffer directory diffs collect reports in.
type SpillFactory func() (pkg.FileSpill[m.Report], error)

// WorkflowOption configures a Workflow.
type WorkflowOption func(*workflow)

// WithSpillFactory replaces the default temporary-file spill.
func WithSpillFactory(f SpillFactory) WorkflowOption {
	return func(w *workflow) {
		w.newSpill = f
	}
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	controller.UI

	parser   SourceParser
	newSpill SpillFactory
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	parser SourceParser,
	opts ...WorkflowOption,
) Workflow {
	w := &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		parser:          parser,
		newSpill: func() (pkg.FileSpill[m.Report], error) {
			return pkg.NewFileSpill[m.Report](afero.NewOsFs(), "")
		},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// input is one loaded and parsed file.
type input struct {
	file    *m.File
	content []byte
	tree    *tree.Tree
}

func (w *workflow) load(ctx context.Context, path m.Path) (*input, error) {
	file, content, err := w.Load(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	file.Language = w.parser.Language(path, content)

	t, err := w.parser.Parse(ctx, path, content)
	if err != nil {
		return nil, err
	}

	slog.Debug("parsed input", "path", path, "language", file.Language, "nodes", t.Len())

	return &input{file: file, content: content, tree: t}, nil
}

func (w *workflow) loadPair(ctx context.Context, src, dst m.Path) (*input, *input, error) {
	var a, b *input

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error
		a, err = w.load(groupCtx, src)

		return err
	})

	group.Go(func() error {
		var err error
		b, err = w.load(groupCtx, dst)

		return err
	})

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	return a, b, nil
}

func (w *workflow) Parse(ctx context.Context, args ParseArgs) error {
	in, err := w.load(ctx, args.Path)
	if err != nil {
		slog.Error("Failed to parse input", "path", args.Path, "error", err)
		return fmt.Errorf("parse: %w", err)
	}

	return w.display(ctx, args.Display, func() error {
		return w.DisplayTree(ctx, string(args.Path), NewTreeView(in.tree))
	})
}

func (w *workflow) Match(ctx context.Context, args MatchArgs) error {
	if err := requireReportFormat(args.Display); err != nil {
		return err
	}

	if err := w.requireFiles(args.Source, args.Destination); err != nil {
		slog.Error("Failed to inspect inputs", "source", args.Source, "destination", args.Destination, "error", err)
		return err
	}

	src, dst, err := w.loadPair(ctx, args.Source, args.Destination)
	if err != nil {
		slog.Error("Failed to load inputs", "error", err)
		return fmt.Errorf("load inputs: %w", err)
	}

	mapping := NewDiffer(args.Options).Match(src.tree, dst.tree)

	report := m.Report{
		Name:            pairName(args.Source, args.Destination),
		Status:          m.StatusModified,
		Source:          src.file,
		Destination:     dst.file,
		SourceTree:      NodeRecords(src.tree),
		DestinationTree: NodeRecords(dst.tree),
		Mapping:         MappingRecords(mapping),
		Stats: m.Stats{
			SourceNodes:      src.tree.Len(),
			DestinationNodes: dst.tree.Len(),
			Mapped:           mapping.Len(),
		},
	}

	return w.display(ctx, args.Display, func() error {
		return w.DisplayMapping(ctx, report)
	})
}

func (w *workflow) Diff(ctx context.Context, args DiffArgs) error {
	if err := requireReportFormat(args.Display); err != nil {
		return err
	}

	filter, err := CompileFilter(args.Filter)
	if err != nil {
		slog.Error("Failed to compile filter", "filter", args.Filter, "error", err)
		return err
	}

	dirs, err := w.inputKind(args.Source, args.Destination)
	if err != nil {
		slog.Error("Failed to inspect inputs", "source", args.Source, "destination", args.Destination, "error", err)
		return err
	}

	if dirs {
		return w.diffDirectories(ctx, args, filter)
	}

	report, err := w.diffFiles(ctx, args, filter, args.Source, args.Destination)
	if err != nil {
		slog.Error("Failed to diff files", "source", args.Source, "destination", args.Destination, "error", err)
		return fmt.Errorf("diff: %w", err)
	}

	report.Name = pairName(args.Source, args.Destination)

	err = w.display(ctx, args.Display, func() error {
		if err := w.DisplayReport(ctx, report); err != nil {
			return err
		}

		if args.Display.Format == controller.FormatSummary {
			return w.DisplaySummary(ctx, []m.Report{report})
		}

		return nil
	})
	if err != nil {
		return err
	}

	return w.save(args.Save, []m.Report{report})
}

// diffFiles computes the report of one file pair.
func (w *workflow) diffFiles(ctx context.Context, args DiffArgs, filter *Filter, srcPath, dstPath m.Path) (m.Report, error) {
	src, dst, err := w.loadPair(ctx, srcPath, dstPath)
	if err != nil {
		return m.Report{}, err
	}

	differ := NewDiffer(args.Options)
	mapping := differ.Match(src.tree, dst.tree)
	script := differ.Generate(src.tree, dst.tree, mapping)

	if args.Verify {
		if err := verify(src.tree, dst.tree, script); err != nil {
			return m.Report{}, fmt.Errorf("%s: %w", srcPath, err)
		}
	}

	report := NewReport("", src.tree, dst.tree, mapping, script)
	report.Source, report.Destination = src.file, dst.file

	report.Actions, report.Stats.Filtered, err = filter.Apply(report.Actions)
	if err != nil {
		return m.Report{}, err
	}

	if args.SourceDiff {
		report.SourceDiff = unifiedDiff(srcPath, dstPath, src.content, dst.content)
	}

	return report, nil
}

func verify(src, dst *tree.Tree, script *actions.Script) error {
	replayed, err := actions.Apply(src, script.Actions)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}

	if !tree.Equal(replayed, dst) {
		slog.Debug("replay mismatch", "replayed", replayed.Notation(), "destination", dst.Notation())
		return fmt.Errorf("%w: replay is not isomorphic to the destination", ErrVerifyFailed)
	}

	return nil
}

func unifiedDiff(srcPath, dstPath m.Path, a, b []byte) string {
	out := textdiff.Unified(string(a), string(b), diff.Context(sourceDiffContext))
	if out == "" {
		return ""
	}

	return fmt.Sprintf("--- %s\n+++ %s\n%s", srcPath, dstPath, out)
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := requireReportFormat(args.Display); err != nil {
		return err
	}

	reports, err := w.LoadReports(args.Reports)
	if err != nil {
		slog.Error("Failed to load reports", "path", args.Reports, "error", err)
		return fmt.Errorf("load reports: %w", err)
	}

	return w.display(ctx, args.Display, func() error {
		for _, r := range reports {
			if err := w.DisplayReport(ctx, r); err != nil {
				return err
			}
		}

		if len(reports) > 1 || args.Display.Format == controller.FormatSummary {
			return w.DisplaySummary(ctx, reports)
		}

		return nil
	})
}

// display runs fn between Start and Close, waiting for the user on success.
func (w *workflow) display(ctx context.Context, args DisplayArgs, fn func() error) error {
	if err := w.Start(ctx, args.options()...); err != nil {
		slog.Error("Failed to start UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	if err := fn(); err != nil {
		slog.Error("Failed to display results", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) save(path m.Path, reports []m.Report) error {
	if path == "" {
		return nil
	}

	if err := w.SaveReports(path, reports); err != nil {
		slog.Error("Failed to save reports", "path", path, "error", err)
		return fmt.Errorf("save reports: %w", err)
	}

	slog.Info("saved reports", "path", path, "count", len(reports))

	return nil
}

// inputKind reports whether both paths are directories. Anything other than
// two regular files or two directories is a usage error.
func (w *workflow) inputKind(src, dst m.Path) (bool, error) {
	a, err := w.FileInfo(src)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	b, err := w.FileInfo(dst)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	switch {
	case a.IsDir() && b.IsDir():
		return true, nil
	case a.Mode().IsRegular() && b.Mode().IsRegular():
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s and %s", ErrUsage, src, dst)
	}
}

func (w *workflow) requireFiles(src, dst m.Path) error {
	dirs, err := w.inputKind(src, dst)
	if err != nil {
		return err
	}

	if dirs {
		return fmt.Errorf("%w: directories are only supported by diff", ErrUsage)
	}

	return nil
}

// requireReportFormat rejects formats that only apply to a single tree.
func requireReportFormat(args DisplayArgs) error {
	if args.Format != controller.FormatTree {
		return nil
	}

	err := fmt.Errorf("%w: %s", ErrFormat, args.Format)
	slog.Error("Failed to select output format", "error", err)

	return err
}

func pairName(src, dst m.Path) string {
	if filepath.Base(string(src)) == filepath.Base(string(dst)) {
		return filepath.Base(string(src))
	}

	return fmt.Sprintf("%s -> %s", src, dst)
}
