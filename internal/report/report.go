// Package report turns scan results into text, JSON or YAML documents.
package report

import (
	"slices"

	"nixscan/internal/analysis"
	"nixscan/internal/diag"
	"nixscan/internal/driver"
	"nixscan/internal/observ"
	"nixscan/internal/project/dag"
	"nixscan/internal/source"
	"nixscan/internal/syntax"
)

type Diagnostic struct {
	Severity string   `json:"severity" yaml:"severity"`
	Code     string   `json:"code" yaml:"code"`
	File     string   `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`
	Col      int      `json:"col,omitempty" yaml:"col,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Notes    []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type Failure struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

type Summary struct {
	Parsed     int            `json:"parsed" yaml:"parsed"`
	Failed     int            `json:"failed" yaml:"failed"`
	WithErrors int            `json:"with_errors" yaml:"with_errors"`
	Cached     int            `json:"cached" yaml:"cached"`
	Findings   int            `json:"findings" yaml:"findings"`
	BySeverity map[string]int `json:"by_severity,omitempty" yaml:"by_severity,omitempty"`
}

type Edge struct {
	Kind   string `json:"kind" yaml:"kind"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
}

type Graph struct {
	Summary dag.Summary `json:"summary" yaml:"summary"`
	Cycles  [][]string  `json:"cycles,omitempty" yaml:"cycles,omitempty"`
	Missing []Edge      `json:"missing,omitempty" yaml:"missing,omitempty"`
	Unused  []string    `json:"unused,omitempty" yaml:"unused,omitempty"`
	Batches [][]string  `json:"batches,omitempty" yaml:"batches,omitempty"`
}

// Document is what every renderer consumes.
type Document struct {
	Root        string             `json:"root,omitempty" yaml:"root,omitempty"`
	Summary     Summary            `json:"summary" yaml:"summary"`
	Findings    []analysis.Finding `json:"findings" yaml:"findings"`
	Diagnostics []Diagnostic       `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Failures    []Failure          `json:"failures,omitempty" yaml:"failures,omitempty"`
	Graph       *Graph             `json:"graph,omitempty" yaml:"graph,omitempty"`
	Timing      *observ.Report     `json:"timing,omitempty" yaml:"timing,omitempty"`
}

type Options struct {
	Root        string
	MinSeverity analysis.Severity
	// Graph adds the dependency graph section.
	Graph bool
	// Timing adds phase timings.
	Timing bool
}

// FromScan builds a Document. Findings below MinSeverity are dropped before
// counting.
func FromScan(res *driver.ScanResult, opts Options) *Document {
	findings := analysis.FilterSeverity(slices.Clone(res.Findings), opts.MinSeverity)
	if findings == nil {
		findings = []analysis.Finding{}
	}
	doc := &Document{
		Root: opts.Root,
		Summary: Summary{
			Parsed:     res.Summary.Parsed,
			Failed:     res.Summary.Failed,
			WithErrors: res.Summary.WithErrors,
			Cached:     res.Summary.Cached,
			Findings:   len(findings),
		},
		Findings:    findings,
		Diagnostics: Diagnostics(res.Files, res.Diagnostics.Items()),
	}
	if counts := analysis.CountBySeverity(findings); len(counts) > 0 {
		doc.Summary.BySeverity = make(map[string]int, len(counts))
		for sev, n := range counts {
			doc.Summary.BySeverity[sev.String()] = n
		}
	}
	for _, f := range res.Failures {
		doc.Failures = append(doc.Failures, Failure{Path: f.Path, Error: f.Err.Error()})
	}
	if opts.Graph && res.Graph != nil {
		doc.Graph = GraphOf(res.Graph)
	}
	if opts.Timing {
		timing := res.Timing
		doc.Timing = &timing
	}
	return doc
}

func GraphOf(g *dag.Graph) *Graph {
	out := &Graph{
		Summary: g.Summary(),
		Cycles:  g.Cycles(),
		Unused:  g.UnusedFiles(),
	}
	if len(out.Cycles) == 0 {
		out.Batches = g.Batches()
	}
	for _, e := range g.MissingDependencies() {
		out.Missing = append(out.Missing, Edge{Kind: e.Kind.String(), Source: e.Source, Target: e.Target, Line: e.Line})
	}
	return out
}

// Diagnostics flattens the parse diagnostics of files followed by extra
// diagnostics whose spans point into those files. Location-less entries
// (timings) keep an empty file.
func Diagnostics(files []*syntax.SourceFile, extra []diag.Diagnostic) []Diagnostic {
	byID := make(map[source.FileID]*syntax.SourceFile, len(files))
	var out []Diagnostic
	for _, sf := range files {
		if sf.File != nil {
			byID[sf.File.ID] = sf
		}
		for _, d := range sf.Diagnostics {
			out = append(out, convert(d, sf))
		}
	}
	for _, d := range extra {
		var sf *syntax.SourceFile
		if d.Primary != (source.Span{}) {
			sf = byID[d.Primary.File]
		}
		out = append(out, convert(d, sf))
	}
	return out
}

func convert(d diag.Diagnostic, sf *syntax.SourceFile) Diagnostic {
	out := Diagnostic{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Message:  d.Message,
	}
	if sf != nil && sf.File != nil {
		pos := sf.File.Position(d.Primary.Start)
		out.File, out.Line, out.Col = sf.Path, int(pos.Line), int(pos.Col)
	}
	for _, n := range d.Notes {
		out.Notes = append(out.Notes, n.Msg)
	}
	return out
}
