// Package security flags Nix constructs that weaken reproducibility or
// build isolation. Every rule is a syntactic heuristic over the lossless
// tree: nothing is evaluated, so a finding is a hint, not a proof.
package security

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"nixscan/internal/analysis"
	"nixscan/internal/query"
	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

// Name is the analyzer name used in findings.
const Name = "security"

// Issue is one security finding.
type Issue struct {
	Kind        Kind              `json:"kind" yaml:"kind"`
	Severity    analysis.Severity `json:"severity" yaml:"severity"`
	Description string            `json:"description" yaml:"description"`
	File        string            `json:"file" yaml:"file"`
	Line        int               `json:"line" yaml:"line"`
	Suggestion  string            `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

func (i Issue) Finding() analysis.Finding {
	return analysis.Finding{
		Analyzer:    Name,
		Kind:        i.Kind.String(),
		Severity:    i.Severity,
		Description: i.Description,
		File:        i.File,
		Line:        i.Line,
		Suggestion:  i.Suggestion,
	}
}

var (
	// Fetchers are the fetch functions expected to pin their output.
	Fetchers = []string{"fetchurl", "fetchTarball", "fetchGit", "fetchFromGitHub", "fetchzip", "fetchpatch"}
	// HashAttrs are the attributes that pin a fetcher's output.
	HashAttrs = []string{"sha256", "sha512", "hash", "outputHash"}
	// ImpureBuiltins read state outside the store.
	ImpureBuiltins = []string{"currentTime", "currentSystem", "getEnv", "readFile", "readDir", "fetchurl"}
)

// Analyze runs every rule over files and returns the issues sorted by
// severity (critical first), then file and line.
func Analyze(files []*syntax.SourceFile) []Issue {
	var out []Issue
	for _, sf := range files {
		if sf == nil || sf.Tree == nil {
			continue
		}
		out = append(out, AnalyzeFile(sf)...)
	}
	slices.SortStableFunc(out, func(a, b Issue) int {
		return cmp.Or(
			cmp.Compare(b.Severity, a.Severity),
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Kind, b.Kind),
		)
	})
	return out
}

// AnalyzeFile runs every rule over one file, in tree order.
func AnalyzeFile(sf *syntax.SourceFile) []Issue {
	c := &checker{sf: sf, t: sf.Tree}
	c.t.Walk(c.t.Root, func(id syntax.NodeID) bool {
		switch c.t.Kind(id) {
		case syntax.KindApply:
			c.checkFetcher(id)
		case syntax.KindImport:
			c.checkFetcher(id)
			c.checkImportFromDerivation(id)
		case syntax.KindSelect:
			c.checkBuiltin(id)
		case syntax.KindIdent:
			c.checkBareBuiltin(id)
		case syntax.KindInherit:
			c.checkInheritedBuiltins(id)
		case syntax.KindBinding:
			c.checkBinding(id)
		case syntax.KindString:
			c.checkURL(id)
		}
		return true
	})
	return c.issues
}

type checker struct {
	sf     *syntax.SourceFile
	t      *syntax.Tree
	issues []Issue
}

func (c *checker) add(kind Kind, sev analysis.Severity, id syntax.NodeID, desc, suggestion string) {
	c.issues = append(c.issues, Issue{
		Kind:        kind,
		Severity:    sev,
		Description: desc,
		File:        c.sf.Path,
		Line:        c.sf.Line(id),
		Suggestion:  suggestion,
	})
}

// checkFetcher reports fetcher calls none of whose attribute-set arguments
// carries a hash.
func (c *checker) checkFetcher(id syntax.NodeID) {
	if !query.IsOutermostCall(c.t, id) {
		return
	}
	callee := query.CalleeName(c.t, id)
	fetcher := ""
	for _, f := range Fetchers {
		if callee == f || strings.HasSuffix(callee, "."+f) {
			fetcher = f
			break
		}
	}
	if fetcher == "" {
		return
	}
	_, args := query.CallParts(c.t, id)
	for _, arg := range args {
		if c.pinned(c.t.Unparen(arg)) {
			return
		}
	}
	c.add(KindInsecureFetcher, analysis.SevHigh, id,
		fmt.Sprintf("%s call without an output hash", callee),
		"add sha256 or hash so the download is verified")
}

func (c *checker) pinned(set syntax.NodeID) bool {
	if c.t.Kind(set) != syntax.KindAttrSet {
		return false
	}
	for _, name := range query.AttributeNames(c.t, set) {
		first, _, _ := strings.Cut(name, ".")
		if slices.Contains(HashAttrs, first) {
			return true
		}
	}
	return false
}

func (c *checker) checkBuiltin(id syntax.NodeID) {
	subject, path, _ := c.t.SelectParts(id)
	if !c.isBuiltins(subject) || len(path.Segments) == 0 {
		return
	}
	c.reportBuiltin(id, path.Segments[0].Name)
}

// checkBareBuiltin reports an unqualified name that resolves to builtins
// through an enclosing "with builtins;".
func (c *checker) checkBareBuiltin(id syntax.NodeID) {
	name := c.t.IdentName(id)
	if name != "exec" && !slices.Contains(ImpureBuiltins, name) {
		return
	}
	parent := c.t.Parent(id)
	switch c.t.Kind(parent) {
	case syntax.KindAttrPath:
		return
	case syntax.KindInherit:
		if c.t.ChildOfKind(parent, syntax.KindInheritFrom).IsValid() {
			return
		}
	}
	if c.withBuiltins(id, name) {
		c.reportBuiltin(id, name)
	}
}

// checkInheritedBuiltins reports the names of "inherit (builtins) ...".
func (c *checker) checkInheritedBuiltins(id syntax.NodeID) {
	b, ok := c.t.BindingOf(id)
	if !ok || b.Inherit == nil || !c.isBuiltins(b.Inherit.From) {
		return
	}
	for i, name := range b.Inherit.Attrs {
		c.reportBuiltin(b.Inherit.AttrNodes[i], name)
	}
}

func (c *checker) reportBuiltin(id syntax.NodeID, name string) {
	switch {
	case name == "exec":
		c.add(KindExecBuiltin, analysis.SevCritical, id,
			"builtins.exec runs arbitrary commands during evaluation",
			"move the command into a derivation builder")
	case slices.Contains(ImpureBuiltins, name):
		c.add(KindImpureBuiltin, analysis.SevMedium, id,
			fmt.Sprintf("builtins.%s makes evaluation depend on the host", name),
			"pass the value in explicitly or use a pure alternative")
	}
}

func (c *checker) isBuiltins(id syntax.NodeID) bool {
	id = c.t.Unparen(id)
	return c.t.Kind(id) == syntax.KindIdent && c.t.IdentName(id) == "builtins"
}

// withBuiltins reports whether name at id is looked up in builtins: the
// innermost enclosing with is "with builtins;" and no let, rec set or
// lambda in between binds name.
func (c *checker) withBuiltins(id syntax.NodeID, name string) bool {
	prev := id
	for p := c.t.Parent(id); p.IsValid(); p = c.t.Parent(p) {
		switch c.t.Kind(p) {
		case syntax.KindWith:
			kids := c.t.ChildNodes(p)
			if len(kids) == 2 && kids[1] == prev {
				return c.isBuiltins(kids[0])
			}
		case syntax.KindLetIn:
			if binds(c.t, p, name) {
				return false
			}
		case syntax.KindAttrSet:
			if c.t.IsRecursive(p) && binds(c.t, p, name) {
				return false
			}
		case syntax.KindLambda:
			for _, param := range c.t.LambdaParams(p) {
				if param.Name == name {
					return false
				}
			}
		}
		prev = p
	}
	return false
}

func binds(t *syntax.Tree, container syntax.NodeID, name string) bool {
	for _, b := range t.Bindings(container) {
		if b.Inherit != nil {
			if slices.Contains(b.Inherit.Attrs, name) {
				return true
			}
			continue
		}
		if len(b.Path.Segments) > 0 && b.Path.Segments[0].Name == name {
			return true
		}
	}
	return false
}

func (c *checker) checkBinding(id syntax.NodeID) {
	b, ok := c.t.BindingOf(id)
	if !ok || b.Inherit != nil {
		return
	}
	switch analysis.LastSegment(b.Path) {
	case "allowUnfree":
		if analysis.IsLiteral(c.t, b.Value, "true") {
			c.add(KindUnfreeAllowed, analysis.SevLow, id,
				"allowUnfree = true accepts packages with unfree licenses",
				"prefer allowUnfreePredicate listing the packages you need")
		}
	case "allowInsecure":
		if analysis.IsLiteral(c.t, b.Value, "true") {
			c.add(KindInsecureAllowed, analysis.SevHigh, id,
				"allowInsecure = true accepts packages with known vulnerabilities",
				"list the exceptions in permittedInsecurePackages instead")
		}
	case "sandbox":
		if analysis.IsLiteral(c.t, b.Value, "false") {
			c.add(KindSandboxDisabled, analysis.SevCritical, id,
				"sandbox = false lets builds reach the network and the host filesystem",
				"keep the sandbox enabled; use fixed-output derivations for downloads")
		}
	case "md5":
		c.add(KindWeakHash, analysis.SevHigh, id,
			"md5 hashes are broken and do not protect downloads",
			"use sha256 or an SRI hash")
	case "sha1":
		c.add(KindWeakHash, analysis.SevMedium, id,
			"sha1 hashes are collision-prone",
			"use sha256 or an SRI hash")
	}
}

// checkImportFromDerivation reports import (...) whose argument builds a
// derivation.
func (c *checker) checkImportFromDerivation(id syntax.NodeID) {
	arg := analysis.ImportArgument(c.t, id)
	if !arg.IsValid() || !analysis.MentionsName(c.t, arg, "mkDerivation") {
		return
	}
	c.add(KindImportFromDerivation, analysis.SevMedium, id,
		"import of a derivation output forces a build during evaluation",
		"generate the Nix code ahead of time or restructure to avoid IFD")
}

func (c *checker) checkURL(id syntax.NodeID) {
	// only this string's own fragments; nested strings are visited on their own
	var parts []string
	for _, el := range c.t.Children(id) {
		if !el.IsToken() {
			continue
		}
		switch tok := c.t.Token(el.Token); tok.Kind {
		case token.StringFragment, token.URI:
			parts = append(parts, tok.Text)
		}
	}
	text := strings.Join(parts, " ")
	if u, ok := insecureURL(text); ok {
		c.add(KindInsecureURL, analysis.SevMedium, id,
			fmt.Sprintf("unencrypted URL %s", u),
			"use https:// (or git+https://) so the transfer is authenticated")
	}
}

// insecureURL returns the first http:// or git:// URL in s. Plain http to
// the loopback host and git over ssh are allowed.
func insecureURL(s string) (string, bool) {
	for _, scheme := range []string{"http://", "git://"} {
		rest := s
		for {
			i := strings.Index(rest, scheme)
			if i < 0 {
				break
			}
			// "git+http://" is still unencrypted; "ssh+git://" runs over ssh
			sshTransport := scheme == "git://" && strings.HasSuffix(rest[:i], "ssh+")
			candidate := rest[i:]
			if end := strings.IndexFunc(candidate, isURLEnd); end >= 0 {
				candidate = candidate[:end]
			}
			rest = rest[i+len(scheme):]
			if sshTransport || scheme == "http://" && isLoopback(candidate) {
				continue
			}
			return candidate, true
		}
	}
	return "", false
}

func isURLEnd(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '"' || r == '\'' || r == ';'
}

func isLoopback(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1"
}

// Analyzer adapts Analyze to analysis.Analyzer.
type Analyzer struct{}

func (Analyzer) Name() string { return Name }

func (Analyzer) Analyze(p *analysis.Project) []analysis.Finding {
	issues := Analyze(p.Files)
	out := make([]analysis.Finding, len(issues))
	for i, is := range issues {
		out[i] = is.Finding()
	}
	return out
}

var _ analysis.Analyzer = Analyzer{}
