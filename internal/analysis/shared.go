package analysis

import (
	"strings"

	"nixscan/internal/query"
	"nixscan/internal/syntax"
)

// RootOf returns the node analyzers start walking from.
func RootOf(sf *syntax.SourceFile) syntax.NodeID {
	if sf == nil || sf.Tree == nil {
		return syntax.NoNodeID
	}
	return sf.Tree.Root
}

// CallsAny reports whether any application under id has a callee ending in
// one of names (see query.Calls for the matching rule).
func CallsAny(t *syntax.Tree, id syntax.NodeID, names ...string) bool {
	for _, n := range names {
		if query.ContainsFunctionCall(t, id, n) {
			return true
		}
	}
	return false
}

// MentionsName reports whether an identifier or the last segment of a
// selection under id is one of names. It matches references that are not
// applied, such as map stdenv.mkDerivation xs.
func MentionsName(t *syntax.Tree, id syntax.NodeID, names ...string) bool {
	found := false
	t.Walk(id, func(n syntax.NodeID) bool {
		if found {
			return false
		}
		var name string
		switch t.Kind(n) {
		case syntax.KindIdent:
			if t.Kind(t.Parent(n)) == syntax.KindAttrPath {
				return true
			}
			name = t.IdentName(n)
		case syntax.KindSelect:
			_, path, _ := t.SelectParts(n)
			if len(path.Segments) > 0 {
				name = path.Segments[len(path.Segments)-1].Name
			}
		}
		for _, want := range names {
			if name == want {
				found = true
			}
		}
		return !found
	})
	return found
}

// ImportArgument returns the expression an Import node imports, without
// parentheses.
func ImportArgument(t *syntax.Tree, imp syntax.NodeID) syntax.NodeID {
	if t.Kind(imp) != syntax.KindImport {
		return syntax.NoNodeID
	}
	_, arg := t.ApplyParts(imp)
	return t.Unparen(arg)
}

// LastSegment is the final name of a binding path, or "".
func LastSegment(p syntax.AttrPath) string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1].Name
}

// IsLiteral reports whether id (parentheses stripped) is the literal text.
func IsLiteral(t *syntax.Tree, id syntax.NodeID, text string) bool {
	id = t.Unparen(id)
	return t.Kind(id) == syntax.KindLiteral && strings.TrimSpace(t.TrimmedText(id)) == text
}
