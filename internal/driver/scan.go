package driver

import (
	"context"
	"fmt"
	"log/slog"

	"nixscan/internal/analysis"
	"nixscan/internal/analysis/deadcode"
	"nixscan/internal/analysis/performance"
	"nixscan/internal/analysis/security"
	"nixscan/internal/diag"
	"nixscan/internal/observ"
	"nixscan/internal/project/dag"
)

// DefaultAnalyzers returns every built-in analyzer in report order.
func DefaultAnalyzers() []analysis.Analyzer {
	return []analysis.Analyzer{security.Analyzer{}, performance.Analyzer{}, deadcode.Analyzer{}}
}

// AnalyzersByName picks built-in analyzers by name. An empty list selects all.
func AnalyzersByName(names []string) ([]analysis.Analyzer, error) {
	all := DefaultAnalyzers()
	if len(names) == 0 {
		return all, nil
	}
	out := make([]analysis.Analyzer, 0, len(names))
	for _, name := range names {
		found := false
		for _, a := range all {
			if a.Name() == name {
				out = append(out, a)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown analyzer %q", name)
		}
	}
	return out, nil
}

type ScanOptions struct {
	ParseOptions

	// Analyzers to run; nil means DefaultAnalyzers.
	Analyzers []analysis.Analyzer
	// SkipAnalysis stops after the graph is built.
	SkipAnalysis bool
	// Timings appends an ObsTimings diagnostic to the result.
	Timings  bool
	Observer PhaseObserver
}

// ScanResult holds everything one scan produced.
type ScanResult struct {
	*ParseResult
	Graph    *dag.Graph
	Results  []analysis.Result
	Findings []analysis.Finding
	// Diagnostics holds graph problems and, when requested, timings.
	Diagnostics *diag.Bag
	Timing      observ.Report
}

// Scan parses paths, builds the dependency graph and runs the analyzers.
// The parse pool has fully drained before the graph is built.
func Scan(ctx context.Context, paths []string, opts ScanOptions) (*ScanResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
		opts.Logger = logger
	}
	timer := observ.NewTimer()
	timer.OnPhase(phaseRelay(logger, opts.Observer))

	res := &ScanResult{Diagnostics: diag.NewBag(opts.MaxDiagnostics)}
	logger.Info("scan.start", "files", len(paths), "jobs", opts.Jobs, "sequential", opts.Sequential)

	err := timer.Track(string(StageParse), func() error {
		pr, err := ParseFiles(ctx, paths, opts.ParseOptions)
		res.ParseResult = pr
		return err
	})
	if err != nil {
		return nil, err
	}

	_ = timer.Track(string(StageGraph), func() error {
		emit(opts.Progress, Event{Stage: StageGraph, Status: StatusWorking})
		res.Graph = dag.BuildGraph(res.Files)
		res.Graph.Report(diag.NewDedupReporter(diag.BagReporter{Bag: res.Diagnostics}))
		emit(opts.Progress, Event{Stage: StageGraph, Status: StatusDone})
		return nil
	})

	if !opts.SkipAnalysis {
		analyzers := opts.Analyzers
		if analyzers == nil {
			analyzers = DefaultAnalyzers()
		}
		err = timer.Track(string(StageAnalyze), func() error {
			emit(opts.Progress, Event{Stage: StageAnalyze, Status: StatusWorking})
			p := &analysis.Project{Files: res.Files, Graph: res.Graph}
			results, err := analysis.Run(ctx, p, analysis.RunOptions{Jobs: opts.Jobs, Logger: logger}, analyzers...)
			if err != nil {
				emit(opts.Progress, Event{Stage: StageAnalyze, Status: StatusError, Err: err})
				return err
			}
			res.Results = results
			res.Findings = analysis.Flatten(results)
			emit(opts.Progress, Event{Stage: StageAnalyze, Status: StatusDone})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	res.Timing = timer.Report()
	if opts.Timings {
		appendTimingDiagnostic(res.Diagnostics, newTimingPayload("scan", opts.BaseDir, res.Timing))
	}
	logger.Info("scan.done",
		"files", res.Summary.Parsed,
		"findings", len(res.Findings),
		"total_ms", res.Timing.TotalMS)
	return res, nil
}
