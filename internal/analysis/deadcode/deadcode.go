// Package deadcode finds bindings nothing refers to, bindings that can never
// be reached, keys assigned twice, and files no other file depends on.
//
// Names are matched per file without scoping: a name counts as used if any
// expression in the file mentions it.
package deadcode

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"nixscan/internal/analysis"
	"nixscan/internal/project/dag"
	"nixscan/internal/syntax"
)

const Name = "deadcode"

// Finding is one dead-code finding. Count is set for redundant definitions.
type Finding struct {
	Type       Type   `json:"type" yaml:"type"`
	Name       string `json:"name" yaml:"name"`
	File       string `json:"file" yaml:"file"`
	Line       int    `json:"line,omitempty" yaml:"line,omitempty"`
	Count      int    `json:"count,omitempty" yaml:"count,omitempty"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

func (f Finding) Severity() analysis.Severity {
	switch f.Type {
	case TypeUnreachableCode, TypeRedundantDefinition:
		return analysis.SevMedium
	}
	return analysis.SevLow
}

func (f Finding) Description() string {
	switch f.Type {
	case TypeUnusedVariable:
		return fmt.Sprintf("%s is defined but never used", f.Name)
	case TypeUnusedParameter:
		return fmt.Sprintf("parameter %s is never used", f.Name)
	case TypeUnusedImport:
		return fmt.Sprintf("imported value %s is never used", f.Name)
	case TypeUnreachableCode:
		return fmt.Sprintf("%s follows a binding that always fails", f.Name)
	case TypeRedundantDefinition:
		return fmt.Sprintf("%s is assigned %d times", f.Name, f.Count)
	case TypeUnusedFile:
		return fmt.Sprintf("no file depends on %s", f.Name)
	}
	return f.Name
}

func (f Finding) Finding() analysis.Finding {
	return analysis.Finding{
		Analyzer:    Name,
		Kind:        f.Type.String(),
		Severity:    f.Severity(),
		Description: f.Description(),
		File:        f.File,
		Line:        f.Line,
		Suggestion:  f.Suggestion,
	}
}

// Analyze checks every file and, when graph is not nil, reports the
// graph's unused files. Findings are sorted by file, type and name.
func Analyze(files []*syntax.SourceFile, graph *dag.Graph) []Finding {
	var out []Finding
	for _, sf := range files {
		if sf == nil || sf.Tree == nil {
			continue
		}
		out = append(out, AnalyzeFile(sf)...)
	}
	if graph != nil {
		for _, p := range graph.UnusedFiles() {
			out = append(out, Finding{
				Type:       TypeUnusedFile,
				Name:       p,
				File:       p,
				Suggestion: "import it from an entry point or delete it",
			})
		}
	}
	slices.SortStableFunc(out, func(a, b Finding) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Type, b.Type),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.Line, b.Line),
		)
	})
	return out
}

type definition struct {
	name  string
	node  syntax.NodeID
	param bool
}

type checker struct {
	sf     *syntax.SourceFile
	t      *syntax.Tree
	defs   []definition
	params map[syntax.NodeID]struct{}
	used   map[string]struct{}
	out    []Finding
}

// AnalyzeFile reports unused, unreachable and redundant definitions in one
// file.
func AnalyzeFile(sf *syntax.SourceFile) []Finding {
	c := &checker{
		sf:     sf,
		t:      sf.Tree,
		params: make(map[syntax.NodeID]struct{}),
		used:   make(map[string]struct{}),
	}
	c.t.Walk(c.t.Root, func(id syntax.NodeID) bool {
		switch c.t.Kind(id) {
		case syntax.KindLetIn:
			c.defineBindings(id)
			c.unreachable(id)
			c.redundant(id)
		case syntax.KindAttrSet:
			c.defineBindings(id)
			c.redundant(id)
		case syntax.KindLambda:
			for _, p := range c.t.LambdaParams(id) {
				c.params[p.Node] = struct{}{}
				c.defs = append(c.defs, definition{name: p.Name, node: p.Node, param: true})
			}
		case syntax.KindIdent:
			c.use(id)
		}
		return true
	})
	c.unused()
	return c.out
}

func (c *checker) defineBindings(container syntax.NodeID) {
	for _, b := range c.t.Bindings(container) {
		if b.Inherit != nil {
			for i, name := range b.Inherit.Attrs {
				c.defs = append(c.defs, definition{name: name, node: b.Inherit.AttrNodes[i]})
			}
			continue
		}
		if len(b.Path.Segments) == 0 || b.Path.Segments[0].Dynamic {
			continue
		}
		seg := b.Path.Segments[0]
		c.defs = append(c.defs, definition{name: seg.Name, node: seg.Node})
	}
}

// use records id as a reference unless it sits in a definition position:
// the first segment of a binding key, a lambda parameter or an inherit
// (from) name. Selection paths and nested key segments count as uses.
func (c *checker) use(id syntax.NodeID) {
	if _, ok := c.params[id]; ok {
		return
	}
	parent := c.t.Parent(id)
	switch c.t.Kind(parent) {
	case syntax.KindAttrPath:
		if c.t.Kind(c.t.Parent(parent)) == syntax.KindBinding && c.t.ChildNodes(parent)[0] == id {
			return
		}
	case syntax.KindInherit:
		if c.t.ChildOfKind(parent, syntax.KindInheritFrom).IsValid() {
			return
		}
	}
	c.used[c.t.IdentName(id)] = struct{}{}
}

func (c *checker) unused() {
	type key struct {
		name string
		line int
	}
	seen := make(map[key]struct{})
	for _, d := range c.defs {
		if _, ok := c.used[d.name]; ok {
			continue
		}
		k := key{d.name, c.sf.Line(d.node)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		f := Finding{Name: d.name, File: c.sf.Path, Line: k.line}
		switch {
		case strings.HasPrefix(d.name, "_"):
			f.Type = TypeUnusedParameter
			f.Suggestion = "drop the parameter or leave it to ... if callers pass it"
		case strings.Contains(d.name, "import") || strings.Contains(d.name, "Import"):
			f.Type = TypeUnusedImport
			f.Suggestion = "remove the unused import"
		default:
			f.Type = TypeUnusedVariable
			f.Suggestion = "remove the binding"
			if d.param {
				f.Suggestion = "remove the parameter"
			}
		}
		c.out = append(c.out, f)
	}
}

// unreachable flags every let binding after one whose value throws or
// aborts.
func (c *checker) unreachable(let syntax.NodeID) {
	failed := false
	for _, b := range c.t.Bindings(let) {
		if failed {
			for _, name := range bindingNames(b) {
				c.out = append(c.out, Finding{
					Type:       TypeUnreachableCode,
					Name:       name,
					File:       c.sf.Path,
					Line:       c.sf.Line(b.Node),
					Suggestion: "move the failing binding last or remove the bindings after it",
				})
			}
			continue
		}
		if b.Inherit == nil && analysis.MentionsName(c.t, b.Value, "throw", "abort") {
			failed = true
		}
	}
}

// redundant reports keys assigned more than once in one set or let.
func (c *checker) redundant(container syntax.NodeID) {
	counts := make(map[string]int)
	second := make(map[string]syntax.NodeID)
	var order []string
	for _, b := range c.t.Bindings(container) {
		for _, name := range bindingNames(b) {
			counts[name]++
			switch counts[name] {
			case 1:
				order = append(order, name)
			case 2:
				second[name] = b.Node
			}
		}
	}
	for _, name := range order {
		if counts[name] < 2 {
			continue
		}
		c.out = append(c.out, Finding{
			Type:       TypeRedundantDefinition,
			Name:       name,
			File:       c.sf.Path,
			Line:       c.sf.Line(second[name]),
			Count:      counts[name],
			Suggestion: "keep one assignment; later ones are an evaluation error",
		})
	}
}

// bindingNames returns the full static path of a binding, or each inherited
// name. Dynamic paths have no static name.
func bindingNames(b syntax.Binding) []string {
	if b.Inherit != nil {
		return b.Inherit.Attrs
	}
	for _, seg := range b.Path.Segments {
		if seg.Dynamic {
			return nil
		}
	}
	if len(b.Path.Segments) == 0 {
		return nil
	}
	return []string{b.Path.String()}
}

// Analyzer adapts Analyze to analysis.Analyzer.
type Analyzer struct{}

func (Analyzer) Name() string { return Name }

func (Analyzer) Analyze(p *analysis.Project) []analysis.Finding {
	found := Analyze(p.Files, p.Graph)
	out := make([]analysis.Finding, len(found))
	for i, f := range found {
		out[i] = f.Finding()
	}
	return out
}

var _ analysis.Analyzer = Analyzer{}
