// Package performance looks for evaluation-time hot spots: imports that
// force builds, deep call nesting, quadratic list building and similar
// patterns. Like the security rules these are heuristics over syntax.
package performance

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"nixscan/internal/analysis"
	"nixscan/internal/query"
	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

const Name = "performance"

// Issue is one performance finding.
type Issue struct {
	Type         Type              `json:"type" yaml:"type"`
	Impact       analysis.Severity `json:"impact" yaml:"impact"`
	CostEstimate string            `json:"cost_estimate" yaml:"cost_estimate"`
	Description  string            `json:"description" yaml:"description"`
	File         string            `json:"file" yaml:"file"`
	Line         int               `json:"line" yaml:"line"`
	Suggestion   string            `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

func (i Issue) Finding() analysis.Finding {
	desc := i.Description
	if i.CostEstimate != "" {
		desc += " (" + i.CostEstimate + ")"
	}
	return analysis.Finding{
		Analyzer:    Name,
		Kind:        i.Type.String(),
		Severity:    i.Impact,
		Description: desc,
		File:        i.File,
		Line:        i.Line,
		Suggestion:  i.Suggestion,
	}
}

var (
	// DerivationBuilders produce store paths that import would have to build.
	DerivationBuilders = []string{
		"mkDerivation", "runCommand", "runCommandLocal", "runCommandCC",
		"writeText", "writeTextFile", "writeScript", "writeShellScript", "writeShellScriptBin",
	}
	// LoopFunctions evaluate their function argument once per element.
	LoopFunctions = []string{"map", "filter", "foldl", "foldl'", "foldr", "fold", "concatMap", "mapAttrs"}
)

type listPattern struct {
	re         *regexp.Regexp
	what       string
	cost       string
	suggestion string
}

var listPatterns = []listPattern{
	{
		re:         regexp.MustCompile(`\+\+\s*\[`),
		what:       "appending list literals with ++",
		cost:       "each ++ copies the left operand",
		suggestion: "build the list once, or collect parts and concatenate at the end",
	},
	{
		re:         regexp.MustCompile(`\blib\.concatLists\b`),
		what:       "lib.concatLists",
		cost:       "copies every sublist",
		suggestion: "use lib.concatMap when the sublists come from map",
	},
	{
		re:         regexp.MustCompile(`\bmap\s*\(\s*[A-Za-z_][\w'-]*\s*:\s*map\b`),
		what:       "nested map",
		cost:       "quadratic in the outer list length",
		suggestion: "flatten the data first or use lib.concatMap",
	},
	{
		re:         regexp.MustCompile(`\bfilter\s*\(\s*[A-Za-z_][\w'-]*\s*:\s*filter\b`),
		what:       "nested filter",
		cost:       "quadratic in the outer list length",
		suggestion: "combine the predicates into one filter",
	},
}

// Analyze runs every rule over files and returns the issues sorted by
// impact (highest first), then file and line.
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
			cmp.Compare(b.Impact, a.Impact),
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Type, b.Type),
		)
	})
	return out
}

// AnalyzeFile runs every rule over one file.
func AnalyzeFile(sf *syntax.SourceFile) []Issue {
	c := &checker{sf: sf, t: sf.Tree}
	c.importsFromDerivations()
	c.nesting()
	c.listPatterns()
	c.flattenMap()
	c.operatorChains()
	c.letInLoops()
	c.importCount()
	c.attrAccess()
	return c.issues
}

type checker struct {
	sf     *syntax.SourceFile
	t      *syntax.Tree
	issues []Issue
}

func (c *checker) add(typ Type, impact analysis.Severity, line int, desc, cost, suggestion string) {
	c.issues = append(c.issues, Issue{
		Type:         typ,
		Impact:       impact,
		CostEstimate: cost,
		Description:  desc,
		File:         c.sf.Path,
		Line:         line,
		Suggestion:   suggestion,
	})
}

func (c *checker) importsFromDerivations() {
	for _, imp := range query.FindAllByKind(c.t, c.t.Root, syntax.KindImport) {
		arg := analysis.ImportArgument(c.t, imp)
		if !arg.IsValid() || !analysis.MentionsName(c.t, arg, DerivationBuilders...) {
			continue
		}
		c.add(TypeImportFromDerivation, analysis.SevHigh, c.sf.Line(imp),
			"import of a derivation output",
			"evaluation stops until the derivation is built",
			"commit the generated Nix code or pass the data as JSON/TOML at build time")
	}
}

// nesting measures how deeply calls are nested in argument position. A
// curried call f a b counts once.
func (c *checker) nesting() {
	best, at := 0, syntax.NoNodeID
	var visit func(id syntax.NodeID, depth int)
	visit = func(id syntax.NodeID, depth int) {
		if query.IsOutermostCall(c.t, id) {
			depth++
			if depth > best {
				best, at = depth, id
			}
		}
		for _, child := range c.t.ChildNodes(id) {
			visit(child, depth)
		}
	}
	visit(c.t.Root, 0)

	var impact analysis.Severity
	switch {
	case best > 20:
		impact = analysis.SevCritical
	case best > 15:
		impact = analysis.SevHigh
	case best > 10:
		impact = analysis.SevMedium
	default:
		return
	}
	c.add(TypeDeepNesting, impact, c.sf.Line(at),
		fmt.Sprintf("function calls nested %d deep", best),
		"deep thunk chains slow evaluation and risk stack overflows",
		"bind intermediate results with let")
}

func (c *checker) listPatterns() {
	code := analysis.CodeText(c.sf)
	for _, p := range listPatterns {
		matches := p.re.FindAllStringIndex(code, -1)
		if len(matches) == 0 {
			continue
		}
		desc := p.what
		if len(matches) > 1 {
			desc = fmt.Sprintf("%s (%d occurrences)", p.what, len(matches))
		}
		c.add(TypeListOperation, analysis.SevMedium, analysis.LineAt(code, matches[0][0]),
			desc, p.cost, p.suggestion)
	}
}

func (c *checker) flattenMap() {
	for _, call := range query.Calls(c.t, c.t.Root, "flatten") {
		_, args := query.CallParts(c.t, call)
		for _, arg := range args {
			if analysis.CallsAny(c.t, arg, "map") {
				c.add(TypeFlattenMap, analysis.SevLow, c.sf.Line(call),
					"lib.flatten over the result of map",
					"builds an intermediate nested list",
					"use lib.concatMap")
				break
			}
		}
	}
}

// operatorChains counts + and ++ in each outermost operator expression.
func (c *checker) operatorChains() {
	roots := query.FindNodes(c.t, c.t.Root, func(id syntax.NodeID) bool {
		if c.t.Kind(id) != syntax.KindBinaryOp {
			return false
		}
		parent := c.t.Parent(id)
		for c.t.Kind(parent) == syntax.KindParen {
			parent = c.t.Parent(parent)
		}
		return c.t.Kind(parent) != syntax.KindBinaryOp
	})
	for _, root := range roots {
		n := 0
		c.t.Walk(root, func(id syntax.NodeID) bool {
			switch c.t.Kind(id) {
			case syntax.KindBinaryOp:
				switch c.t.OperatorToken(id) {
				case token.Plus, token.Concat:
					n++
				}
				return true
			case syntax.KindParen:
				return true
			}
			return false
		})
		var impact analysis.Severity
		switch {
		case n > 20:
			impact = analysis.SevHigh
		case n > 10:
			impact = analysis.SevMedium
		case n > 5:
			impact = analysis.SevLow
		default:
			continue
		}
		c.add(TypeOperatorChain, impact, c.sf.Line(root),
			fmt.Sprintf("expression chains %d + / ++ operators", n),
			"every step allocates a new string or list",
			"use lib.concatStrings, lib.concatLists or builtins.concatStringsSep")
	}
}

func (c *checker) letInLoops() {
	for _, let := range query.FindAllByKind(c.t, c.t.Root, syntax.KindLetIn) {
		for _, anc := range c.t.Ancestors(let) {
			if !isLoopCall(c.t, anc) {
				continue
			}
			c.add(TypeLetInLoop, analysis.SevMedium, c.sf.Line(let),
				fmt.Sprintf("let ... in inside %s", query.CalleeName(c.t, anc)),
				"the bindings are rebuilt for every element",
				"hoist bindings that do not depend on the element out of the loop")
			break
		}
	}
}

func isLoopCall(t *syntax.Tree, id syntax.NodeID) bool {
	switch t.Kind(id) {
	case syntax.KindApply:
	default:
		return false
	}
	callee := query.CalleeName(t, id)
	for _, name := range LoopFunctions {
		if callee == name || strings.HasSuffix(callee, "."+name) {
			return true
		}
	}
	return false
}

func (c *checker) importCount() {
	imports := query.FindAllByKind(c.t, c.t.Root, syntax.KindImport)
	if len(imports) <= 3 {
		return
	}
	c.add(TypeManyImports, analysis.SevLow, c.sf.Line(imports[3]),
		fmt.Sprintf("%d imports in one file", len(imports)),
		"each import parses and evaluates another file",
		"group related imports in a module or use callPackage")
}

// attrAccess reports the longest dotted name, counting the subject of a
// selection as one segment.
func (c *checker) attrAccess() {
	best, at := 0, syntax.NoNodeID
	c.t.Walk(c.t.Root, func(id syntax.NodeID) bool {
		n := 0
		switch c.t.Kind(id) {
		case syntax.KindSelect, syntax.KindHasAttr:
			subject, path, _ := c.t.SelectParts(id)
			n = len(path.Segments)
			if c.t.Kind(subject) == syntax.KindIdent {
				n++
			}
		case syntax.KindBinding:
			if b, ok := c.t.BindingOf(id); ok {
				n = len(b.Path.Segments)
			}
		}
		if n > best {
			best, at = n, id
		}
		return true
	})
	var impact analysis.Severity
	switch {
	case best > 10:
		impact = analysis.SevMedium
	case best > 5:
		impact = analysis.SevLow
	default:
		return
	}
	c.add(TypeDeepAttrAccess, impact, c.sf.Line(at),
		fmt.Sprintf("attribute path with %d segments", best),
		"every segment is a separate lookup",
		"bind the common prefix with let or inherit")
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
