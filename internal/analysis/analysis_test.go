package analysis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nixscan/internal/analysis"
	"nixscan/internal/parser"
	"nixscan/internal/syntax"
)

type fixed struct {
	name     string
	findings []analysis.Finding
}

func (f fixed) Name() string { return f.name }
func (f fixed) Analyze(*analysis.Project) []analysis.Finding { return f.findings }

type panicking struct{}

func (panicking) Name() string { return "boom" }
func (panicking) Analyze(*analysis.Project) []analysis.Finding { panic("bad rule") }

type fileCounter struct{}

func (fileCounter) Name() string { return "files" }
func (fileCounter) Analyze(p *analysis.Project) []analysis.Finding {
	var out []analysis.Finding
	for _, sf := range p.Files {
		out = append(out, analysis.Finding{Analyzer: "files", Kind: "File", File: sf.Path})
	}
	return out
}

func TestRunKeepsAnalyzerOrder(t *testing.T) {
	p := analysis.NewProject([]*syntax.SourceFile{
		parser.ParseSource("a.nix", "import ./b.nix"),
		parser.ParseSource("b.nix", "{ }"),
	})
	require.NotNil(t, p.Graph)

	first := fixed{name: "first", findings: []analysis.Finding{{Kind: "A", Severity: analysis.SevLow}}}
	results, err := analysis.Run(context.Background(), p, analysis.RunOptions{Jobs: 1}, first, fileCounter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Analyzer)
	assert.Equal(t, "files", results[1].Analyzer)
	assert.Len(t, results[1].Findings, 2)
}

func TestRunRecoversPanics(t *testing.T) {
	p := &analysis.Project{}
	_, err := analysis.Run(context.Background(), p, analysis.RunOptions{}, panicking{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "bad rule")
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := analysis.Run(ctx, &analysis.Project{}, analysis.RunOptions{}, fixed{name: "x"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFlattenSortsBySeverity(t *testing.T) {
	results := []analysis.Result{
		{Analyzer: "a", Findings: []analysis.Finding{
			{Kind: "low", Severity: analysis.SevLow, File: "a.nix", Line: 1},
			{Kind: "crit", Severity: analysis.SevCritical, File: "z.nix", Line: 9},
		}},
		{Analyzer: "b", Findings: []analysis.Finding{
			{Kind: "high2", Severity: analysis.SevHigh, File: "b.nix", Line: 2},
			{Kind: "high1", Severity: analysis.SevHigh, File: "b.nix", Line: 1},
		}},
	}
	got := analysis.Flatten(results)
	kinds := make([]string, len(got))
	for i, f := range got {
		kinds[i] = f.Kind
	}
	assert.Equal(t, []string{"crit", "high1", "high2", "low"}, kinds)

	kept := analysis.FilterSeverity(got, analysis.SevHigh)
	assert.Len(t, kept, 3)
	assert.Equal(t, map[analysis.Severity]int{analysis.SevCritical: 1, analysis.SevHigh: 2}, analysis.CountBySeverity(kept))
}

func TestSeverityNames(t *testing.T) {
	for _, s := range []analysis.Severity{analysis.SevLow, analysis.SevMedium, analysis.SevHigh, analysis.SevCritical} {
		parsed, err := analysis.ParseSeverity(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	parsed, err := analysis.ParseSeverity(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, analysis.SevHigh, parsed)

	_, err = analysis.ParseSeverity("severe")
	assert.Error(t, err)

	assert.True(t, analysis.SevLow < analysis.SevMedium && analysis.SevMedium < analysis.SevHigh && analysis.SevHigh < analysis.SevCritical)
}

func TestCodeTextBlanksCommentsAndStrings(t *testing.T) {
	sf := parser.ParseSource("c.nix", "# a ++ [\n[ \"x ++ [\" ] ++ [ 1 ]")
	code := analysis.CodeText(sf)
	require.Len(t, code, len(sf.Text))
	assert.Equal(t, "        \n[ \"      \" ] ++ [ 1 ]", code)
	assert.Equal(t, 2, analysis.LineAt(code, 10))
}
