package project

import (
	"strings"

	"nixscan/internal/query"
	"nixscan/internal/source"
	"nixscan/internal/syntax"
)

// EdgeKind says how one file refers to another resource.
type EdgeKind uint8

const (
	EdgeImport EdgeKind = iota
	EdgeFlakeInput
	EdgePathReference
	EdgeFetchURL
	EdgePackageRef
)

var edgeKindNames = [...]string{
	EdgeImport:        "import",
	EdgeFlakeInput:    "flake-input",
	EdgePathReference: "path",
	EdgeFetchURL:      "fetch-url",
	EdgePackageRef:    "package-ref",
}

func (k EdgeKind) String() string {
	if int(k) < len(edgeKindNames) {
		return edgeKindNames[k]
	}
	return "unknown"
}

func (k EdgeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Edge is one dependency of Source. Target is the text as written; the graph
// resolves it and sets Resolved and ResolvedPath.
type Edge struct {
	Kind   EdgeKind
	Source string
	Target string
	// Name is the flake input name for EdgeFlakeInput.
	Name         string
	Resolved     bool
	ResolvedPath string
	// Optional edges (external URLs, search paths, non-flake inputs) are
	// never reported missing.
	Optional bool
	// NoFlake marks a flake input declared with flake = false.
	NoFlake bool
	Line    int
	Span    source.Span
	Flake   *FlakeRef
}

// fetchers are the builtin and nixpkgs fetch functions whose URLs become
// EdgeFetchURL.
var fetchers = []string{
	"fetchurl", "fetchTarball", "fetchGit", "fetchgit", "fetchFromGitHub",
	"fetchFromGitLab", "fetchzip", "fetchpatch", "fetchTree",
}

type extractor struct {
	sf    *syntax.SourceFile
	t     *syntax.Tree
	edges []Edge
	seen  map[string]struct{}
	// used holds path nodes already turned into an edge.
	used map[syntax.NodeID]struct{}
}

// ExtractDependencies lists every dependency sf declares: flake inputs,
// imports (import expressions and module imports lists), other .nix path
// literals, <search> paths and fetcher URLs. Duplicates of the same kind and
// target are dropped; the first occurrence wins.
func ExtractDependencies(sf *syntax.SourceFile) []Edge {
	x := &extractor{
		sf:   sf,
		t:    sf.Tree,
		seen: make(map[string]struct{}),
		used: make(map[syntax.NodeID]struct{}),
	}
	root := query.RootExpr(x.t)
	if !root.IsValid() {
		return nil
	}
	x.flakeInputs(root)
	x.importExprs(root)
	x.moduleImports(root)
	x.fetchURLs(root)
	x.pathLiterals(root)
	return x.edges
}

func (x *extractor) add(e Edge, node syntax.NodeID) {
	key := e.Kind.String() + "\x00" + e.Target
	if node.IsValid() {
		x.used[node] = struct{}{}
	}
	if _, dup := x.seen[key]; dup || e.Target == "" {
		return
	}
	x.seen[key] = struct{}{}
	e.Source = x.sf.Path
	if node.IsValid() {
		e.Line = x.t.Line(node)
		e.Span = x.t.Span(node)
	}
	x.edges = append(x.edges, e)
}

// flakeInputs handles both inputs = { a.url = ...; } and the flat
// inputs.a.url = ...; spelling, plus string-valued inputs.
func (x *extractor) flakeInputs(root syntax.NodeID) {
	t := x.t
	set := t.Unparen(root)
	if t.Kind(set) != syntax.KindAttrSet || !query.HasAttribute(t, set, "outputs") {
		return
	}
	type input struct {
		name    string
		url     string
		node    syntax.NodeID
		noFlake bool
	}
	var (
		order  []string
		inputs = make(map[string]*input)
	)
	get := func(name string, node syntax.NodeID) *input {
		in, ok := inputs[name]
		if !ok {
			in = &input{name: name, node: node}
			inputs[name] = in
			order = append(order, name)
		}
		return in
	}
	var visit func(path []string, value, node syntax.NodeID)
	visit = func(path []string, value, node syntax.NodeID) {
		if len(path) == 0 {
			return
		}
		in := get(path[0], node)
		switch {
		case len(path) == 1:
			if s, ok := query.ExtractStringValue(t, value); ok {
				in.url, in.node = s, value
				return
			}
			if inner := t.Unparen(value); t.Kind(inner) == syntax.KindAttrSet {
				for _, b := range t.Bindings(inner) {
					if b.Inherit == nil {
						visit(append([]string{path[0]}, b.Path.Names()...), b.Value, b.Node)
					}
				}
			}
		case len(path) == 2 && path[1] == "url":
			if s, ok := query.ExtractStringValue(t, value); ok {
				in.url, in.node = s, value
			}
		case len(path) == 2 && path[1] == "flake":
			in.noFlake = strings.TrimSpace(t.TrimmedText(value)) == "false"
		}
	}
	for _, b := range t.Bindings(set) {
		if b.Inherit != nil {
			continue
		}
		names := b.Path.Names()
		if len(names) == 0 || names[0] != "inputs" {
			continue
		}
		if len(names) == 1 {
			if inner := t.Unparen(b.Value); t.Kind(inner) == syntax.KindAttrSet {
				for _, ib := range t.Bindings(inner) {
					if ib.Inherit == nil {
						visit(ib.Path.Names(), ib.Value, ib.Node)
					}
				}
			}
			continue
		}
		visit(names[1:], b.Value, b.Node)
	}
	for _, name := range order {
		in := inputs[name]
		if in.url == "" {
			continue
		}
		ref := ParseFlakeRef(in.url)
		e := Edge{Kind: EdgeFlakeInput, Name: name, Target: in.url, Flake: &ref, Optional: true, NoFlake: in.noFlake}
		if ref.IsLocal() {
			e.Target, e.Optional = ref.Path, false
		}
		x.add(e, in.node)
	}
}

// importExprs records import <path>, import "<string>" and import <nixpkgs>.
func (x *extractor) importExprs(root syntax.NodeID) {
	t := x.t
	for _, imp := range query.FindAllByKind(t, root, syntax.KindImport) {
		_, arg := t.ApplyParts(imp)
		arg = t.Unparen(arg)
		switch {
		case isSearchPath(t, arg):
			x.add(Edge{Kind: EdgePackageRef, Target: t.TrimmedText(arg), Optional: true}, arg)
		case t.Kind(arg) == syntax.KindPath:
			if v, ok := query.ExtractStringValue(t, arg); ok {
				x.add(Edge{Kind: EdgeImport, Target: v, Optional: isHomePath(v)}, arg)
			}
		case t.Kind(arg) == syntax.KindString:
			if v, ok := query.ExtractStringValue(t, arg); ok {
				x.add(Edge{Kind: EdgeImport, Target: v, Optional: isHomePath(v)}, arg)
			}
		}
	}
}

// moduleImports records path and string entries of imports = [ ... ].
// A string that names no file surfaces later as a missing dependency.
func (x *extractor) moduleImports(root syntax.NodeID) {
	for _, ref := range query.ExtractImports(x.t, root) {
		if !ref.Literal {
			continue
		}
		x.add(Edge{Kind: EdgeImport, Target: ref.Target, Optional: isHomePath(ref.Target)}, ref.Node)
	}
}

func (x *extractor) fetchURLs(root syntax.NodeID) {
	t := x.t
	for _, name := range fetchers {
		for _, call := range query.Calls(t, root, name) {
			_, args := query.CallParts(t, call)
			for _, arg := range args {
				arg = t.Unparen(arg)
				if v, ok := query.ExtractStringValue(t, arg); ok {
					x.add(Edge{Kind: EdgeFetchURL, Target: v, Optional: true}, arg)
					continue
				}
				if t.Kind(arg) != syntax.KindAttrSet {
					continue
				}
				if v, ok := query.ExtractStringValue(t, query.GetAttributeValue(t, arg, "url")); ok {
					x.add(Edge{Kind: EdgeFetchURL, Target: v, Optional: true}, arg)
					continue
				}
				owner, _ := query.ExtractStringValue(t, query.GetAttributeValue(t, arg, "owner"))
				repo, _ := query.ExtractStringValue(t, query.GetAttributeValue(t, arg, "repo"))
				if owner != "" && repo != "" {
					x.add(Edge{Kind: EdgeFetchURL, Target: "github:" + owner + "/" + repo, Optional: true}, arg)
				}
			}
		}
	}
}

// pathLiterals records the remaining .nix path literals and search paths.
func (x *extractor) pathLiterals(root syntax.NodeID) {
	t := x.t
	for _, p := range query.FindAllByKind(t, root, syntax.KindPath) {
		if _, done := x.used[p]; done {
			continue
		}
		if isSearchPath(t, p) {
			x.add(Edge{Kind: EdgePackageRef, Target: t.TrimmedText(p), Optional: true}, p)
			continue
		}
		v, ok := query.ExtractStringValue(t, p)
		if !ok || !strings.HasSuffix(v, ".nix") {
			continue
		}
		x.add(Edge{Kind: EdgePathReference, Target: v, Optional: isHomePath(v)}, p)
	}
}

func isSearchPath(t *syntax.Tree, id syntax.NodeID) bool {
	return t.Kind(id) == syntax.KindPath && strings.HasPrefix(t.TrimmedText(id), "<")
}

// Home-relative paths depend on the machine running the evaluation.
func isHomePath(s string) bool {
	return strings.HasPrefix(s, "~/")
}
