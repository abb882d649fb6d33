package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nixscan/internal/analysis"
	"nixscan/internal/analysis/security"
	"nixscan/internal/parser"
	"nixscan/internal/syntax"
)

func parse(t *testing.T, path, src string) *syntax.SourceFile {
	t.Helper()
	sf := parser.ParseSource(path, src)
	require.Empty(t, sf.Diagnostics, "parse %s", path)
	return sf
}

func kinds(issues []security.Issue, kind security.Kind) []security.Issue {
	var out []security.Issue
	for _, is := range issues {
		if is.Kind == kind {
			out = append(out, is)
		}
	}
	return out
}

func TestFetcherWithoutHash(t *testing.T) {
	unpinned := parse(t, "pkg.nix", `{ fetchurl }: {
  src = fetchurl { url = "https://x/y.tar.gz"; };
}`)
	issues := security.Analyze([]*syntax.SourceFile{unpinned})
	fetchers := kinds(issues, security.KindInsecureFetcher)
	require.Len(t, fetchers, 1)
	assert.Equal(t, analysis.SevHigh, fetchers[0].Severity)
	assert.Equal(t, 2, fetchers[0].Line)
	assert.Equal(t, "pkg.nix", fetchers[0].File)

	pinned := parse(t, "pkg.nix", `{ fetchurl }: {
  src = fetchurl { url = "https://x/y.tar.gz"; sha256 = "0000"; };
}`)
	assert.Empty(t, kinds(security.Analyze([]*syntax.SourceFile{pinned}), security.KindInsecureFetcher))
}

func TestFetcherVariants(t *testing.T) {
	sf := parse(t, "srcs.nix", `{
  a = pkgs.fetchzip { url = "https://x/a.zip"; };
  b = fetchTarball "https://x/b.tar.gz";
  c = fetchFromGitHub { owner = "o"; repo = "r"; rev = "v1"; hash = "sha256-AAAA"; };
  d = builtins.fetchGit { url = "https://x/d.git"; inherit sha256; };
  e = fetchpatch { url = "https://x/e.patch"; outputHash = "h"; };
}`)
	fetchers := kinds(security.Analyze([]*syntax.SourceFile{sf}), security.KindInsecureFetcher)
	require.Len(t, fetchers, 2)
	assert.Equal(t, 2, fetchers[0].Line)
	assert.Equal(t, 3, fetchers[1].Line)
}

func TestBuiltins(t *testing.T) {
	sf := parse(t, "impure.nix", `{
  home = builtins.getEnv "HOME";
  sys = builtins.currentSystem;
  out = builtins.exec [ "ls" ];
  ok = builtins.toString 1;
}`)
	issues := security.Analyze([]*syntax.SourceFile{sf})
	require.Len(t, issues, 3)
	assert.Equal(t, security.KindExecBuiltin, issues[0].Kind)
	assert.Equal(t, analysis.SevCritical, issues[0].Severity)
	impure := kinds(issues, security.KindImpureBuiltin)
	require.Len(t, impure, 2)
	for _, is := range impure {
		assert.Equal(t, analysis.SevMedium, is.Severity)
	}
}

func TestBuiltinsInScope(t *testing.T) {
	sf := parse(t, "scope.nix", `with builtins; {
  now = currentTime;
  out = exec [ "date" ];
  inherit getEnv;
  inner = let currentSystem = "x86_64-linux"; in currentSystem;
  shadow = with pkgs; fetchurl;
  key = { readFile = 1; };
  param = readDir: readDir ".";
  sel = pkgs.exec;
}`)
	issues := security.Analyze([]*syntax.SourceFile{sf})
	exec := kinds(issues, security.KindExecBuiltin)
	require.Len(t, exec, 1)
	assert.Equal(t, 3, exec[0].Line)
	assert.Equal(t, analysis.SevCritical, exec[0].Severity)
	impure := kinds(issues, security.KindImpureBuiltin)
	require.Len(t, impure, 2)
	assert.Equal(t, 2, impure[0].Line)
	assert.Equal(t, 4, impure[1].Line)
}

func TestInheritFromBuiltins(t *testing.T) {
	sf := parse(t, "inherit.nix", `let
  inherit (builtins) exec readDir toJSON;
  inherit (lib) getEnv;
in exec`)
	issues := security.Analyze([]*syntax.SourceFile{sf})
	exec := kinds(issues, security.KindExecBuiltin)
	require.Len(t, exec, 1)
	assert.Equal(t, 2, exec[0].Line)
	impure := kinds(issues, security.KindImpureBuiltin)
	require.Len(t, impure, 1)
	assert.Equal(t, 2, impure[0].Line)
	assert.Contains(t, impure[0].Description, "readDir")
}

func TestConfigurationFlags(t *testing.T) {
	sf := parse(t, "configuration.nix", `{
  nixpkgs.config.allowUnfree = true;
  nixpkgs.config.allowInsecure = true;
  nix.settings.sandbox = false;
  nix.settings.sandbox-fallback = false;
  allowBroken = true;
  legacy = { md5 = "d41d8cd9"; sha1 = "da39a3ee"; };
}`)
	issues := security.Analyze([]*syntax.SourceFile{sf})
	got := map[security.Kind][]analysis.Severity{}
	for _, is := range issues {
		got[is.Kind] = append(got[is.Kind], is.Severity)
	}
	assert.Equal(t, map[security.Kind][]analysis.Severity{
		security.KindSandboxDisabled: {analysis.SevCritical},
		security.KindInsecureAllowed: {analysis.SevHigh},
		security.KindWeakHash:        {analysis.SevHigh, analysis.SevMedium},
		security.KindUnfreeAllowed:   {analysis.SevLow},
	}, got)
}

func TestFlagsNeedTheRiskyValue(t *testing.T) {
	sf := parse(t, "configuration.nix", `{
  nixpkgs.config.allowUnfree = false;
  nix.settings.sandbox = true;
}`)
	assert.Empty(t, security.Analyze([]*syntax.SourceFile{sf}))
}

func TestImportFromDerivation(t *testing.T) {
	sf := parse(t, "ifd.nix", `let
  generated = import (stdenv.mkDerivation { name = "gen"; });
  plain = import ./plain.nix;
in generated`)
	issues := kinds(security.Analyze([]*syntax.SourceFile{sf}), security.KindImportFromDerivation)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Line)
	assert.Equal(t, analysis.SevMedium, issues[0].Severity)
}

func TestInsecureURLs(t *testing.T) {
	sf := parse(t, "urls.nix", `[
  "http://example.com/a"
  "http://localhost:8080/x"
  "http://127.0.0.1/y"
  "git://github.com/o/r"
  "https://fine.example/z"
  "git+https://fine.example/w"
  "see ${x} http://mixed.example"
  "ssh+git://example.org/o/r"
  "git+http://plain.example/v"
]`)
	issues := kinds(security.Analyze([]*syntax.SourceFile{sf}), security.KindInsecureURL)
	lines := make([]int, len(issues))
	for i, is := range issues {
		lines[i] = is.Line
		assert.Equal(t, analysis.SevMedium, is.Severity)
	}
	assert.Equal(t, []int{2, 5, 8, 10}, lines)
}

func TestSortedBySeverityThenFile(t *testing.T) {
	a := parse(t, "a.nix", `{ src = fetchurl { url = "https://x"; }; }`)
	b := parse(t, "b.nix", `{ nix.settings.sandbox = false; }`)
	c := parse(t, "c.nix", `{ v = builtins.getEnv "X"; }`)
	issues := security.Analyze([]*syntax.SourceFile{c, a, b})
	require.Len(t, issues, 3)
	assert.Equal(t, "b.nix", issues[0].File)
	assert.Equal(t, "a.nix", issues[1].File)
	assert.Equal(t, "c.nix", issues[2].File)
}

func TestAnalyzerInterface(t *testing.T) {
	sf := parse(t, "a.nix", `{ src = fetchurl { url = "https://x"; }; }`)
	findings := security.Analyzer{}.Analyze(&analysis.Project{Files: []*syntax.SourceFile{sf}})
	require.Len(t, findings, 1)
	assert.Equal(t, "security", findings[0].Analyzer)
	assert.Equal(t, "InsecureFetcher", findings[0].Kind)
	assert.Equal(t, analysis.SevHigh, findings[0].Severity)
}
