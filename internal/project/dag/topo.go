package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []FileID   // линейный порядок
	Batches [][]FileID // волны независимых файлов
	Cyclic  bool
	Blocked []FileID // узлы в циклах и всё, что от них зависит
}

// ToposortKahn orders files so that every file comes before the files it
// depends on. Files that can be processed together form one batch.
func ToposortKahn(g *Graph) *Topo {
	nodeCount := len(g.Out)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]FileID, 0, nodeCount),
		Batches: make([][]FileID, 0),
	}

	current := make([]FileID, 0, nodeCount)
	for i := range nodeCount {
		if indeg[i] == 0 {
			current = append(current, toFileID(i))
		}
	}
	slices.Sort(current)

	for len(current) > 0 {
		batch := make([]FileID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]FileID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			for _, to := range g.Out[int(id)] {
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != nodeCount {
		topo.Cyclic = true
		for i := range nodeCount {
			if indeg[i] > 0 {
				topo.Blocked = append(topo.Blocked, toFileID(i))
			}
		}
	}

	return topo
}

func toFileID(i int) FileID {
	id, err := safecast.Conv[FileID](i)
	if err != nil {
		panic(fmt.Errorf("file id overflow: %w", err))
	}
	return id
}

// Batches returns the topological waves as paths.
func (g *Graph) Batches() [][]string {
	topo := ToposortKahn(g)
	out := make([][]string, len(topo.Batches))
	for i, b := range topo.Batches {
		out[i] = g.Index.paths(b)
	}
	return out
}

// MaxDepth is the number of files on the longest dependency chain, where a
// file's depth is one more than the deepest file importing it. It is 0 for
// an empty or cyclic graph.
func (g *Graph) MaxDepth() int {
	topo := ToposortKahn(g)
	if topo.Cyclic || len(topo.Order) == 0 {
		return 0
	}
	depth := make([]int, len(g.Out))
	best := 0
	for _, id := range topo.Order {
		if depth[id] == 0 {
			depth[id] = 1
		}
		best = max(best, depth[id])
		for _, to := range g.Out[id] {
			depth[to] = max(depth[to], depth[id]+1)
		}
	}
	return best
}
