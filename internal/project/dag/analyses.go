package dag

import (
	"cmp"
	"fmt"
	"path"
	"slices"
	"strings"

	"nixscan/internal/diag"
	"nixscan/internal/project"
)

// EntryPoints are file names that are roots by convention and never count as
// unused.
var EntryPoints = []string{"flake.nix", "default.nix", "shell.nix", "configuration.nix", "home.nix"}

func IsEntryPoint(p string) bool {
	return slices.Contains(EntryPoints, path.Base(p))
}

// MissingDependencies returns required edges whose target matched no file,
// one per (source, target) pair, sorted.
func (g *Graph) MissingDependencies() []project.Edge {
	seen := make(map[[2]string]struct{})
	var out []project.Edge
	for _, e := range g.Edges {
		if e.Resolved || e.Optional {
			continue
		}
		key := [2]string{e.Source, e.Target}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b project.Edge) int {
		return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Target, b.Target))
	})
	return out
}

// UnusedFiles returns files nothing depends on, entry points excepted.
// A file importing itself is still unused.
func (g *Graph) UnusedFiles() []string {
	var out []string
	for id, p := range g.Index.IDToPath {
		if g.Indeg[id] == 0 && !IsEntryPoint(p) {
			out = append(out, p)
		}
	}
	return out
}

// Summary is the headline numbers of a graph.
type Summary struct {
	Files    int `json:"files" yaml:"files"`
	Edges    int `json:"edges" yaml:"edges"`
	Resolved int `json:"resolved" yaml:"resolved"`
	Missing  int `json:"missing" yaml:"missing"`
	Cycles   int `json:"cycles" yaml:"cycles"`
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
	Unused   int `json:"unused" yaml:"unused"`
}

func (g *Graph) Summary() Summary {
	s := Summary{
		Files:    len(g.Files),
		Edges:    len(g.Edges),
		Missing:  len(g.MissingDependencies()),
		Cycles:   len(g.Cycles()),
		MaxDepth: g.MaxDepth(),
		Unused:   len(g.UnusedFiles()),
	}
	for _, e := range g.Edges {
		if e.Resolved {
			s.Resolved++
		}
	}
	return s
}

// Report emits diagnostics for missing dependencies, self-imports and
// cycles.
func (g *Graph) Report(r diag.Reporter) {
	if r == nil {
		return
	}
	for _, e := range g.MissingDependencies() {
		diag.ReportWarning(r, diag.ProjMissingDependency, e.Span,
			fmt.Sprintf("%s: %s %q does not match any file", e.Source, e.Kind, e.Target)).Emit()
	}
	for _, e := range g.SelfImports {
		diag.ReportWarning(r, diag.ProjSelfImport, e.Span,
			fmt.Sprintf("%s imports itself", e.Source)).Emit()
	}
	for _, comp := range g.Components() {
		if len(comp) < 2 {
			continue
		}
		members := make(map[string]struct{}, len(comp))
		for _, id := range comp {
			members[g.Index.Path(id)] = struct{}{}
		}
		summary := strings.Join(g.Index.paths(comp), " -> ")
		for _, e := range g.Edges {
			if !e.Resolved {
				continue
			}
			_, inFrom := members[e.Source]
			_, inTo := members[e.ResolvedPath]
			if inFrom && inTo && e.Source != e.ResolvedPath {
				msg := fmt.Sprintf("%s participates in an import cycle: %s", e.Source, summary)
				diag.ReportError(r, diag.ProjImportCycle, e.Span, msg).
					WithNote(e.Span, "imports "+e.ResolvedPath).
					Emit()
			}
		}
	}
}
