package dag

import (
	"path"
	"slices"
	"strings"

	"nixscan/internal/project"
	"nixscan/internal/source"
	"nixscan/internal/syntax"
)

// Graph is the dependency graph of one project snapshot. It is rebuilt from
// scratch for every run and not modified afterwards.
type Graph struct {
	Index Index
	Files []project.FileNode // Files[id]
	// Edges holds every extracted edge, resolved or not.
	Edges []project.Edge
	Out   [][]FileID // Out[from] = []to, resolved edges only, без self-import
	Indeg []int
	// SelfImports are resolved edges pointing back at their own file.
	SelfImports []project.Edge
}

// BuildGraph classifies each parsed file, extracts its dependencies and
// links them.
func BuildGraph(files []*syntax.SourceFile) *Graph {
	nodes := make([]project.FileNode, 0, len(files))
	var edges []project.Edge
	for _, sf := range files {
		if sf == nil {
			continue
		}
		nodes = append(nodes, project.NewFileNode(sf))
		edges = append(edges, project.ExtractDependencies(sf)...)
	}
	return Build(nodes, edges)
}

// Build links pre-extracted edges to file nodes. Edges are never dropped:
// an edge whose target matches no file stays in Edges with Resolved unset.
func Build(files []project.FileNode, edges []project.Edge) *Graph {
	idx := BuildIndex(files)
	nodeCount := len(idx.IDToPath)
	g := &Graph{
		Index: idx,
		Files: make([]project.FileNode, nodeCount),
		Edges: make([]project.Edge, 0, len(edges)),
		Out:   make([][]FileID, nodeCount),
		Indeg: make([]int, nodeCount),
	}
	for _, f := range files {
		id, ok := idx.Lookup(f.Path)
		if !ok || g.Files[id].Path != "" {
			// повторный путь: остаётся первый
			continue
		}
		g.Files[id] = f
	}

	seen := make([]map[FileID]struct{}, nodeCount)
	for _, e := range edges {
		e.Resolved, e.ResolvedPath = false, ""
		from, fromOK := idx.Lookup(e.Source)
		if target, ok := resolve(idx, e); ok {
			e.Resolved, e.ResolvedPath = true, target
		}
		g.Edges = append(g.Edges, e)
		if !e.Resolved || !fromOK {
			continue
		}
		to, _ := idx.Lookup(e.ResolvedPath)
		if to == from {
			g.SelfImports = append(g.SelfImports, e)
			continue
		}
		if seen[from] == nil {
			seen[from] = make(map[FileID]struct{})
		}
		if _, dup := seen[from][to]; dup {
			continue
		}
		seen[from][to] = struct{}{}
		g.Out[from] = append(g.Out[from], to)
		g.Indeg[to]++
	}
	for from := range g.Out {
		if len(g.Out[from]) > 1 {
			slices.Sort(g.Out[from])
		}
	}
	return g
}

// resolve maps an edge target onto a known file. Relative targets are
// resolved against the source's directory; a directory resolves to its
// default.nix (or flake.nix for flake inputs).
func resolve(idx Index, e project.Edge) (string, bool) {
	switch e.Kind {
	case project.EdgeFetchURL, project.EdgePackageRef:
		return "", false
	case project.EdgeFlakeInput:
		if e.Flake == nil || !e.Flake.IsLocal() {
			return "", false
		}
	}
	target := e.Target
	if target == "" || strings.HasPrefix(target, "~") {
		return "", false
	}
	if !path.IsAbs(target) {
		target = path.Join(path.Dir(e.Source), target)
	}
	target = source.NormalizePath(target)

	candidates := []string{target, path.Join(target, "default.nix")}
	if e.Kind == project.EdgeFlakeInput {
		candidates = []string{path.Join(target, "flake.nix"), target}
	}
	for _, c := range candidates {
		if _, ok := idx.Lookup(c); ok {
			return c, true
		}
	}
	return "", false
}

// File returns the node for path.
func (g *Graph) File(path string) (project.FileNode, bool) {
	id, ok := g.Index.Lookup(path)
	if !ok {
		return project.FileNode{}, false
	}
	return g.Files[id], true
}

// Dependencies returns the resolved targets of path, sorted.
func (g *Graph) Dependencies(path string) []string {
	id, ok := g.Index.Lookup(path)
	if !ok {
		return nil
	}
	return g.Index.paths(g.Out[id])
}

// EdgesFrom returns every edge whose source is path, in extraction order.
func (g *Graph) EdgesFrom(path string) []project.Edge {
	var out []project.Edge
	for _, e := range g.Edges {
		if e.Source == path {
			out = append(out, e)
		}
	}
	return out
}

// Digest fingerprints the snapshot: file paths and contents in path order.
func (g *Graph) Digest() project.Digest {
	var parts []project.Digest
	for _, f := range g.Files {
		parts = append(parts, project.HashContent([]byte(f.Path)), f.Digest)
	}
	if len(parts) == 0 {
		return project.Digest{}
	}
	return project.Combine(parts[0], parts[1:]...)
}
