package project

import (
	"nixscan/internal/syntax"
)

// FileNode is one file of a project snapshot.
type FileNode struct {
	Path      string
	Kind      FileKind
	HasErrors bool
	Digest    Digest
}

// NewFileNode classifies sf.
func NewFileNode(sf *syntax.SourceFile) FileNode {
	return FileNode{
		Path:      sf.Path,
		Kind:      DetectFileKind(sf.Tree),
		HasErrors: sf.HasErrors(),
		Digest:    HashContent([]byte(sf.Text)),
	}
}
