package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"treedelta.dev/pkg/treedelta/internal/adapter"
	m "treedelta.dev/pkg/treedelta/internal/model"
	"treedelta.dev/pkg/treedelta/pkg"
)

type indexedPair struct {
	index int
	pair  m.FilePair
}

type indexedReport struct {
	index  int
	report m.Report
}

// diffDirectories diffs every file pair of two directory trees. Pairs run
// through a bounded worker pool; reports are spilled to disk in pair order
// and displayed once all pairs are done.
func (w *workflow) diffDirectories(ctx context.Context, args DiffArgs, filter *Filter) error {
	pairs, err := w.Pairs(args.Source, args.Destination, w.parser.Supports)
	if err != nil {
		slog.Error("Failed to pair directory files", "error", err)
		return fmt.Errorf("pair files: %w", err)
	}

	spill, err := w.newSpill()
	if err != nil {
		return fmt.Errorf("create report spill: %w", err)
	}

	defer func() {
		if err := spill.Close(); err != nil {
			slog.Error("Failed to release report spill", "error", err)
		}
	}()

	if err := w.collectReports(ctx, args, filter, pairs, spill); err != nil {
		slog.Error("Failed to diff directories", "source", args.Source, "destination", args.Destination, "error", err)
		return fmt.Errorf("diff directories: %w", err)
	}

	slog.Info("diffed directories", "pairs", len(pairs), "reports", spill.Len())

	var summaries, saved []m.Report

	err = w.display(ctx, args.Display, func() error {
		err := spill.Range(func(_ uint64, r m.Report) error {
			summaries = append(summaries, summarize(r))
			if args.Save != "" {
				saved = append(saved, r)
			}

			return w.DisplayReport(ctx, r)
		})
		if err != nil {
			return err
		}

		return w.DisplaySummary(ctx, summaries)
	})
	if err != nil {
		return err
	}

	return w.save(args.Save, saved)
}

// summarize drops the bulky parts of a report.
func summarize(r m.Report) m.Report {
	r.SourceTree, r.DestinationTree = nil, nil
	r.Mapping, r.Actions = nil, nil
	r.SourceDiff = ""

	return r
}

func (w *workflow) collectReports(ctx context.Context, args DiffArgs, filter *Filter, pairs []m.FilePair, spill pkg.FileSpill[m.Report]) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parallel := max(args.Parallel, 1)

	reportsChannel, errorChannel := w.diffPairsChannel(ctx, args, filter, pairs, parallel)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		pending := map[int]m.Report{}
		next := 0

		for {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case r, ok := <-reportsChannel:
				if !ok {
					return nil
				}

				pending[r.index] = r.report

				for {
					report, ready := pending[next]
					if !ready {
						break
					}

					delete(pending, next)

					if err := spill.Append(report); err != nil {
						return err
					}

					next++
				}
			}
		}
	})

	group.Go(func() error {
		select {
		case <-groupCtx.Done():
			return groupCtx.Err()
		case err, ok := <-errorChannel:
			if !ok {
				return nil
			}

			return err
		}
	})

	return group.Wait()
}

func (w *workflow) pairsChannel(ctx context.Context, pairs []m.FilePair) <-chan indexedPair {
	out := make(chan indexedPair)

	go func() {
		defer close(out)

		for i, p := range pairs {
			select {
			case <-ctx.Done():
				return
			case out <- indexedPair{index: i, pair: p}:
			}
		}
	}()

	return out
}

// diffPairsChannel feeds pairs to a bounded pool of workers. The first
// failing pair cancels the producer and every other worker.
func (w *workflow) diffPairsChannel(ctx context.Context, args DiffArgs, filter *Filter, pairs []m.FilePair, parallel int) (<-chan indexedReport, <-chan error) {
	reportsChannel := make(chan indexedReport, parallel)
	errorChannel := make(chan error, 1)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallel)

	pairsChannel := w.pairsChannel(groupCtx, pairs)

	go func() {
		defer close(errorChannel)
		defer close(reportsChannel)

	dispatch:
		for {
			select {
			case <-groupCtx.Done():
				break dispatch
			case p, ok := <-pairsChannel:
				if !ok {
					break dispatch
				}

				if groupCtx.Err() != nil {
					break dispatch
				}

				current := p

				// Go blocks until a slot is free, which may be after a failure.
				group.Go(func() error {
					if err := groupCtx.Err(); err != nil {
						return err
					}

					report, err := w.diffPair(groupCtx, args, filter, current.pair)
					if err != nil {
						return fmt.Errorf("%s: %w", current.pair.Name, err)
					}

					select {
					case <-groupCtx.Done():
						return groupCtx.Err()
					case reportsChannel <- indexedReport{index: current.index, report: report}:
					}

					return nil
				})
			}
		}

		if err := group.Wait(); err != nil {
			errorChannel <- err
		}
	}()

	return reportsChannel, errorChannel
}

// diffPair reports on one pair. Inputs a front end rejects become failed
// reports; any other error aborts the run.
func (w *workflow) diffPair(ctx context.Context, args DiffArgs, filter *Filter, pair m.FilePair) (m.Report, error) {
	var (
		report m.Report
		err    error
	)

	switch {
	case pair.Source == nil:
		report, err = w.singleSide(ctx, pair.Destination.Path, m.StatusAdded)
	case pair.Destination == nil:
		report, err = w.singleSide(ctx, pair.Source.Path, m.StatusRemoved)
	default:
		report, err = w.diffFiles(ctx, args, filter, pair.Source.Path, pair.Destination.Path)
	}

	if err != nil {
		if !errors.Is(err, adapter.ErrParse) {
			return m.Report{}, err
		}

		slog.Warn("skipping unparsable pair", "name", pair.Name, "error", err)

		report = m.Report{
			Status:      m.StatusFailed,
			Source:      pair.Source,
			Destination: pair.Destination,
			Error:       err.Error(),
		}
	}

	report.Name = pair.Name

	return report, nil
}

func (w *workflow) singleSide(ctx context.Context, path m.Path, status m.Status) (m.Report, error) {
	in, err := w.load(ctx, path)
	if err != nil {
		return m.Report{}, err
	}

	report := m.Report{Status: status}

	if status == m.StatusAdded {
		report.Destination = in.file
		report.DestinationTree = NodeRecords(in.tree)
		report.Stats.DestinationNodes = in.tree.Len()
	} else {
		report.Source = in.file
		report.SourceTree = NodeRecords(in.tree)
		report.Stats.SourceNodes = in.tree.Len()
	}

	return report, nil
}
