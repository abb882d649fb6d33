package dag

import (
	"slices"
)

// tarjan computes strongly connected components.
type tarjan struct {
	g       *Graph
	index   []int
	low     []int
	onStack []bool
	stack   []FileID
	next    int
	comps   [][]FileID
}

func (tj *tarjan) connect(v FileID) {
	tj.next++
	tj.index[v] = tj.next
	tj.low[v] = tj.next
	tj.stack = append(tj.stack, v)
	tj.onStack[v] = true

	for _, w := range tj.g.Out[v] {
		switch {
		case tj.index[w] == 0:
			tj.connect(w)
			tj.low[v] = min(tj.low[v], tj.low[w])
		case tj.onStack[w]:
			tj.low[v] = min(tj.low[v], tj.index[w])
		}
	}

	if tj.low[v] != tj.index[v] {
		return
	}
	var comp []FileID
	for {
		w := tj.stack[len(tj.stack)-1]
		tj.stack = tj.stack[:len(tj.stack)-1]
		tj.onStack[w] = false
		comp = append(comp, w)
		if w == v {
			break
		}
	}
	tj.comps = append(tj.comps, comp)
}

// Components returns all strongly connected components, each sorted, in
// order of their smallest member.
func (g *Graph) Components() [][]FileID {
	n := len(g.Out)
	tj := &tarjan{
		g:       g,
		index:   make([]int, n),
		low:     make([]int, n),
		onStack: make([]bool, n),
	}
	for v := range n {
		if tj.index[v] == 0 {
			tj.connect(toFileID(v))
		}
	}
	for _, c := range tj.comps {
		slices.Sort(c)
	}
	slices.SortFunc(tj.comps, func(a, b []FileID) int { return int(a[0]) - int(b[0]) })
	return tj.comps
}

// Cycles returns every component with more than one file, as sorted paths.
func (g *Graph) Cycles() [][]string {
	var out [][]string
	for _, c := range g.Components() {
		if len(c) > 1 {
			out = append(out, g.Index.paths(c))
		}
	}
	return out
}
