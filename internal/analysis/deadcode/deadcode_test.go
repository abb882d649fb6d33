package deadcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nixscan/internal/analysis"
	"nixscan/internal/analysis/deadcode"
	"nixscan/internal/parser"
	"nixscan/internal/project/dag"
	"nixscan/internal/syntax"
)

func parse(t *testing.T, path, src string) *syntax.SourceFile {
	t.Helper()
	sf := parser.ParseSource(path, src)
	require.Empty(t, sf.Diagnostics, "parse %s", path)
	return sf
}

func analyze(t *testing.T, src string) []deadcode.Finding {
	t.Helper()
	return deadcode.Analyze([]*syntax.SourceFile{parse(t, "file.nix", src)}, nil)
}

type brief struct {
	Type deadcode.Type
	Name string
}

func briefs(fs []deadcode.Finding) []brief {
	out := make([]brief, len(fs))
	for i, f := range fs {
		out[i] = brief{f.Type, f.Name}
	}
	return out
}

func TestUnusedLetBinding(t *testing.T) {
	found := analyze(t, `let used = 1; unused = 2; in used`)
	require.Len(t, found, 1)
	assert.Equal(t, deadcode.TypeUnusedVariable, found[0].Type)
	assert.Equal(t, "unused", found[0].Name)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, "file.nix", found[0].File)
}

func TestUnreachableAfterThrow(t *testing.T) {
	found := analyze(t, `let x = throw "e"; y = 1; in x`)
	assert.Contains(t, briefs(found), brief{deadcode.TypeUnreachableCode, "y"})
	assert.NotContains(t, briefs(found), brief{deadcode.TypeUnreachableCode, "x"})

	found = analyze(t, `let
  a = 1;
  b = if a > 0 then abort "no" else 2;
  c = 3;
  inherit (a) d;
in b`)
	var unreachable []string
	for _, f := range found {
		if f.Type == deadcode.TypeUnreachableCode {
			unreachable = append(unreachable, f.Name)
		}
	}
	assert.Equal(t, []string{"c", "d"}, unreachable)
}

func TestLambdaParameters(t *testing.T) {
	found := analyze(t, `{ lib, stdenv, _unused, importedThing, ... }@args: stdenv.mkDerivation { }`)
	assert.Equal(t, []brief{
		{deadcode.TypeUnusedVariable, "args"},
		{deadcode.TypeUnusedVariable, "lib"},
		{deadcode.TypeUnusedParameter, "_unused"},
		{deadcode.TypeUnusedImport, "importedThing"},
	}, briefs(found))

	assert.Empty(t, analyze(t, `{ a ? b, b }: a`))
	assert.Equal(t, []brief{{deadcode.TypeUnusedVariable, "y"}}, briefs(analyze(t, `x: y: x`)))
}

func TestInheritCountsAsUse(t *testing.T) {
	found := analyze(t, `let
  x = 1;
  z = 3;
  s = { w = 0; };
in [ { inherit x; } { inherit (s) z; } ]`)
	assert.Equal(t, []brief{
		{deadcode.TypeUnusedVariable, "w"},
		{deadcode.TypeUnusedVariable, "z"},
		{deadcode.TypeUnusedVariable, "z"},
	}, briefs(found))
	assert.Equal(t, 3, found[1].Line)
	assert.Equal(t, 5, found[2].Line)
}

func TestSelectionPathsAreUses(t *testing.T) {
	assert.Empty(t, analyze(t, `let lib = 1; name = 2; in pkgs.lib.name`))
	assert.Empty(t, analyze(t, `let foo = 1; in x.foo`))
	assert.Empty(t, analyze(t, `let foo = 1; in x ? foo`))
	assert.Empty(t, analyze(t, `let name = "x"; in { ${name} = 1; }`))
}

func TestNestedKeySegmentsAreUses(t *testing.T) {
	assert.Empty(t, analyze(t, `let b = 1; s = { a.b = 2; }; in s.a`))

	found := analyze(t, `let s = { a.b = 2; }; in s`)
	assert.Equal(t, []brief{{deadcode.TypeUnusedVariable, "a"}}, briefs(found))
}

func TestAttributeSetKeys(t *testing.T) {
	found := analyze(t, `{ foo = 1; }`)
	assert.Equal(t, []brief{{deadcode.TypeUnusedVariable, "foo"}}, briefs(found))
	assert.Equal(t, 1, found[0].Line)

	found = analyze(t, `rec { a = 1; b = a; }`)
	assert.Equal(t, []brief{{deadcode.TypeUnusedVariable, "b"}}, briefs(found))

	found = analyze(t, `{ a = 1; b = 2; }`)
	assert.Equal(t, []brief{
		{deadcode.TypeUnusedVariable, "a"},
		{deadcode.TypeUnusedVariable, "b"},
	}, briefs(found))

	found = analyze(t, `{ inherit (pkgs) hello; }`)
	assert.Equal(t, []brief{{deadcode.TypeUnusedVariable, "hello"}}, briefs(found))
}

func ofType(fs []deadcode.Finding, typ deadcode.Type) []deadcode.Finding {
	var out []deadcode.Finding
	for _, f := range fs {
		if f.Type == typ {
			out = append(out, f)
		}
	}
	return out
}

func TestRedundantDefinition(t *testing.T) {
	found := ofType(analyze(t, `{
  a = 1;
  b = 2;
  a = 3;
  a = 4;
  c.x = 1;
  c.y = 2;
}`), deadcode.TypeRedundantDefinition)
	require.Len(t, found, 1)
	assert.Equal(t, "a", found[0].Name)
	assert.Equal(t, 3, found[0].Count)
	assert.Equal(t, 4, found[0].Line)

	found = analyze(t, `let k = 1; k = 2; in k`)
	assert.Equal(t, []brief{{deadcode.TypeRedundantDefinition, "k"}}, briefs(found))
	assert.Equal(t, 2, found[0].Count)
}

func TestUnusedFilesFromGraph(t *testing.T) {
	files := []*syntax.SourceFile{
		parse(t, "a.nix", `import ./b.nix`),
		parse(t, "b.nix", `{ }`),
		parse(t, "d.nix", `{ }`),
		parse(t, "default.nix", `{ }`),
	}
	found := deadcode.Analyze(files, dag.BuildGraph(files))
	assert.Equal(t, []brief{
		{deadcode.TypeUnusedFile, "a.nix"},
		{deadcode.TypeUnusedFile, "d.nix"},
	}, briefs(found))
	assert.Equal(t, "d.nix", found[1].File)
}

func TestSortedByFileTypeName(t *testing.T) {
	files := []*syntax.SourceFile{
		parse(t, "z.nix", `let b = 1; a = 2; in 0`),
		parse(t, "y.nix", `let x = throw "e"; q = 1; in x`),
	}
	found := deadcode.Analyze(files, nil)
	assert.Equal(t, []brief{
		{deadcode.TypeUnusedVariable, "q"},
		{deadcode.TypeUnreachableCode, "q"},
		{deadcode.TypeUnusedVariable, "a"},
		{deadcode.TypeUnusedVariable, "b"},
	}, briefs(found))
}

func TestAnalyzerInterface(t *testing.T) {
	files := []*syntax.SourceFile{
		parse(t, "flake.nix", `{ outputs = _: import ./lib.nix; }`),
		parse(t, "lib.nix", `let helper = 1; in { }`),
		parse(t, "stray.nix", `{ }`),
	}
	findings := deadcode.Analyzer{}.Analyze(analysis.NewProject(files))
	require.Len(t, findings, 4)
	assert.Equal(t, "deadcode", findings[0].Analyzer)
	assert.Equal(t, "UnusedVariable", findings[0].Kind)
	assert.Equal(t, "flake.nix", findings[0].File)
	assert.Equal(t, "UnusedParameter", findings[1].Kind)
	assert.Equal(t, "flake.nix", findings[1].File)
	assert.Equal(t, "UnusedVariable", findings[2].Kind)
	assert.Equal(t, "lib.nix", findings[2].File)
	assert.Equal(t, "UnusedFile", findings[3].Kind)
	assert.Equal(t, "stray.nix", findings[3].File)
	assert.Equal(t, analysis.SevLow, findings[3].Severity)
}
