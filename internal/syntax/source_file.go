package syntax

import (
	"nixscan/internal/diag"
	"nixscan/internal/source"
)

// SourceFile is one parsed file: its text, tree and parse diagnostics.
// It is not modified after parsing; mutate a Tree.Clone instead.
type SourceFile struct {
	Path        string
	Text        string
	File        *source.File
	Tree        *Tree
	Diagnostics []diag.Diagnostic
}

// HasErrors reports whether parsing produced error diagnostics.
func (sf *SourceFile) HasErrors() bool {
	return diag.HasErrors(sf.Diagnostics)
}

// Line returns the 1-based line of node id.
func (sf *SourceFile) Line(id NodeID) int {
	return sf.Tree.Line(id)
}
