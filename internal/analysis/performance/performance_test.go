package performance_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nixscan/internal/analysis"
	"nixscan/internal/analysis/performance"
	"nixscan/internal/parser"
	"nixscan/internal/syntax"
)

func analyze(t *testing.T, src string) []performance.Issue {
	t.Helper()
	sf := parser.ParseSource("perf.nix", src)
	require.Empty(t, sf.Diagnostics)
	return performance.Analyze([]*syntax.SourceFile{sf})
}

func ofType(issues []performance.Issue, typ performance.Type) []performance.Issue {
	var out []performance.Issue
	for _, is := range issues {
		if is.Type == typ {
			out = append(out, is)
		}
	}
	return out
}

func TestImportFromDerivation(t *testing.T) {
	issues := ofType(analyze(t, `{ pkgs }:
import (pkgs.runCommand "gen" { } "echo > $out")`), performance.TypeImportFromDerivation)
	require.Len(t, issues, 1)
	assert.Equal(t, analysis.SevHigh, issues[0].Impact)
	assert.Equal(t, 2, issues[0].Line)
	assert.NotEmpty(t, issues[0].CostEstimate)

	assert.Empty(t, ofType(analyze(t, `import ./plain.nix`), performance.TypeImportFromDerivation))
}

func TestDeepNesting(t *testing.T) {
	nested := func(n int) string {
		return strings.Repeat("f (", n-1) + "f x" + strings.Repeat(")", n-1)
	}
	tests := []struct {
		depth int
		want  []analysis.Severity
	}{
		{10, nil},
		{11, []analysis.Severity{analysis.SevMedium}},
		{16, []analysis.Severity{analysis.SevHigh}},
		{21, []analysis.Severity{analysis.SevCritical}},
	}
	for _, tt := range tests {
		var got []analysis.Severity
		for _, is := range ofType(analyze(t, nested(tt.depth)), performance.TypeDeepNesting) {
			got = append(got, is.Impact)
		}
		assert.Equal(t, tt.want, got, "depth %d", tt.depth)
	}
}

func TestCurriedCallsCountOnce(t *testing.T) {
	src := "f a b c d e f g h i j k l m n o p q r s t u v w"
	assert.Empty(t, ofType(analyze(t, src), performance.TypeDeepNesting))
}

func TestListPatterns(t *testing.T) {
	issues := ofType(analyze(t, `{
  # xs ++ [ in a comment is ignored
  a = xs ++ [ 1 ];
  b = lib.concatLists [ xs ys ];
  c = map (x: map (y: y) x) xss;
  d = filter (x: filter (y: y) x) xss;
  e = "++ [ inside a string";
}`), performance.TypeListOperation)
	lines := make([]int, len(issues))
	for i, is := range issues {
		lines[i] = is.Line
		assert.Equal(t, analysis.SevMedium, is.Impact)
	}
	assert.Equal(t, []int{3, 4, 5, 6}, lines)
}

func TestFlattenMap(t *testing.T) {
	issues := ofType(analyze(t, `lib.flatten (map (x: [ x ]) xs)`), performance.TypeFlattenMap)
	require.Len(t, issues, 1)
	assert.Equal(t, analysis.SevLow, issues[0].Impact)

	assert.Empty(t, ofType(analyze(t, `lib.flatten [ [ 1 ] [ 2 ] ]`), performance.TypeFlattenMap))
}

func TestOperatorChain(t *testing.T) {
	chain := func(n int) string { return strings.Repeat("x + ", n) + "x" }
	tests := []struct {
		src  string
		want []analysis.Severity
	}{
		{chain(5), nil},
		{chain(6), []analysis.Severity{analysis.SevLow}},
		{chain(11), []analysis.Severity{analysis.SevMedium}},
		{chain(21), []analysis.Severity{analysis.SevHigh}},
		{"a ++ (b ++ c) ++ d ++ e ++ f ++ g", []analysis.Severity{analysis.SevLow}},
		// the lambda body is a separate expression
		{"a + b + c + (map (x: x + 1 + 2 + 3) d)", nil},
	}
	for _, tt := range tests {
		var got []analysis.Severity
		for _, is := range ofType(analyze(t, tt.src), performance.TypeOperatorChain) {
			got = append(got, is.Impact)
		}
		assert.Equal(t, tt.want, got, tt.src)
	}
}

func TestLetInLoop(t *testing.T) {
	issues := ofType(analyze(t, `let
  top = 1;
in
map (x: let y = x + top; in y) xs`), performance.TypeLetInLoop)
	require.Len(t, issues, 1)
	assert.Equal(t, 4, issues[0].Line)
	assert.Contains(t, issues[0].Description, "map")
}

func TestManyImports(t *testing.T) {
	src := `[
  (import ./a.nix)
  (import ./b.nix)
  (import ./c.nix)
  (import ./d.nix)
]`
	issues := ofType(analyze(t, src), performance.TypeManyImports)
	require.Len(t, issues, 1)
	assert.Equal(t, 5, issues[0].Line)
	assert.Equal(t, analysis.SevLow, issues[0].Impact)

	assert.Empty(t, ofType(analyze(t, `[ (import ./a.nix) (import ./b.nix) (import ./c.nix) ]`), performance.TypeManyImports))
}

func TestDeepAttributeAccess(t *testing.T) {
	issues := ofType(analyze(t, `{ x = a.b.c.d.e.f; }`), performance.TypeDeepAttrAccess)
	require.Len(t, issues, 1)
	assert.Equal(t, analysis.SevLow, issues[0].Impact)

	issues = ofType(analyze(t, `{ services.a.b.c.d.e.f.g.h.i.j = 1; }`), performance.TypeDeepAttrAccess)
	require.Len(t, issues, 1)
	assert.Equal(t, analysis.SevMedium, issues[0].Impact)

	assert.Empty(t, ofType(analyze(t, `{ x = a.b.c.d.e; }`), performance.TypeDeepAttrAccess))
}

func TestSortedByImpact(t *testing.T) {
	issues := analyze(t, `{
  x = a.b.c.d.e.f;
  y = import (pkgs.runCommand "g" { } "");
}`)
	require.GreaterOrEqual(t, len(issues), 2)
	assert.Equal(t, performance.TypeImportFromDerivation, issues[0].Type)
	assert.Equal(t, performance.TypeDeepAttrAccess, issues[len(issues)-1].Type)

	findings := performance.Analyzer{}.Analyze(&analysis.Project{Files: []*syntax.SourceFile{parser.ParseSource("p.nix", "a.b.c.d.e.f")}})
	require.Len(t, findings, 1)
	assert.Equal(t, "performance", findings[0].Analyzer)
	assert.Equal(t, "DeepAttributeAccess", findings[0].Kind)
}
