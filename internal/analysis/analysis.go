// Package analysis holds what the security, performance and dead-code
// analyzers share: the Finding model, the Project they read and a runner
// that executes them side by side.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"nixscan/internal/project/dag"
	"nixscan/internal/syntax"
)

// Project is the immutable input of an analysis run. Files must not be
// mutated while analyzers run.
type Project struct {
	Files []*syntax.SourceFile
	Graph *dag.Graph
}

// NewProject builds the dependency graph for files.
func NewProject(files []*syntax.SourceFile) *Project {
	return &Project{Files: files, Graph: dag.BuildGraph(files)}
}

// Analyzer is one independent pass over a Project.
type Analyzer interface {
	Name() string
	Analyze(p *Project) []Finding
}

// Result is the output of a single analyzer.
type Result struct {
	Analyzer string
	Findings []Finding
}

// RunOptions tunes Run.
type RunOptions struct {
	// Jobs bounds concurrent analyzers; 0 means no limit.
	Jobs   int
	Logger *slog.Logger
}

// Run executes analyzers concurrently and returns their results in the order
// given. Analyzers only read the project, so no locking is involved. A
// panicking analyzer is reported as an error and the others still finish.
func Run(ctx context.Context, p *Project, opts RunOptions, analyzers ...Analyzer) ([]Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]Result, len(analyzers))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	for i, a := range analyzers {
		g.Go(func() (err error) {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("analyzer %s panicked: %v", a.Name(), r)
				}
			}()
			findings := a.Analyze(p)
			logger.Debug("analyzer.done", "analyzer", a.Name(), "findings", len(findings))
			results[i] = Result{Analyzer: a.Name(), Findings: findings}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Flatten concatenates results and sorts them with SortFindings.
func Flatten(results []Result) []Finding {
	var out []Finding
	for _, r := range results {
		out = append(out, r.Findings...)
	}
	SortFindings(out)
	return out
}
