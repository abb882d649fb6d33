package dag

import (
	"sort"

	"nixscan/internal/project"
)

type FileID uint32

type Index struct {
	PathToID map[string]FileID
	IDToPath []string
}

// собрать уникальные пути, sort.Strings, раздать ID по порядку
func BuildIndex(files []project.FileNode) Index {
	uniq := make(map[string]struct{}, len(files))
	for _, f := range files {
		if f.Path != "" {
			uniq[f.Path] = struct{}{}
		}
	}

	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	pathToID := make(map[string]FileID, len(paths))
	for i, path := range paths {
		pathToID[path] = FileID(i)
	}

	return Index{
		PathToID: pathToID,
		IDToPath: paths,
	}
}

func (idx Index) Lookup(path string) (FileID, bool) {
	id, ok := idx.PathToID[path]
	return id, ok
}

func (idx Index) Path(id FileID) string {
	return idx.IDToPath[int(id)]
}

func (idx Index) paths(ids []FileID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.Path(id)
	}
	return out
}
