// Package query holds read-only helpers over syntax trees: attribute lookup,
// string extraction, search and call detection. Nothing here mutates a tree.
package query

import (
	"strings"

	"nixscan/internal/syntax"
)

// RootExpr returns the top-level expression of t, or NoNodeID for an empty
// file.
func RootExpr(t *syntax.Tree) syntax.NodeID {
	for _, id := range t.ChildNodes(t.Root) {
		if t.Kind(id) != syntax.KindError {
			return id
		}
	}
	return syntax.NoNodeID
}

// BodyAttrSet peels the wrappers a Nix file commonly puts around its main
// attribute set (lambdas, with, let, assert, parentheses) and returns that
// set, or NoNodeID when the body is something else.
func BodyAttrSet(t *syntax.Tree, id syntax.NodeID) syntax.NodeID {
	for id.IsValid() {
		switch t.Kind(id) {
		case syntax.KindAttrSet:
			return id
		case syntax.KindParen:
			id = t.Unparen(id)
		case syntax.KindLambda:
			id = t.LambdaBody(id)
		case syntax.KindLetIn:
			id = t.LetBody(id)
		case syntax.KindWith, syntax.KindAssert:
			nodes := t.ChildNodes(id)
			if len(nodes) < 2 {
				return syntax.NoNodeID
			}
			id = nodes[len(nodes)-1]
		default:
			return syntax.NoNodeID
		}
	}
	return syntax.NoNodeID
}

// FindAttribute returns the binding of set whose path is exactly name
// (dotted, e.g. "inputs.nixpkgs.url"). A name brought in by inherit matches
// the inherit clause. set may be an AttrSet or a LetIn.
func FindAttribute(t *syntax.Tree, set syntax.NodeID, name string) (syntax.Binding, bool) {
	for _, b := range t.Bindings(set) {
		if b.Inherit != nil {
			for _, attr := range b.Inherit.Attrs {
				if attr == name {
					return b, true
				}
			}
			continue
		}
		if b.Path.String() == name {
			return b, true
		}
	}
	return syntax.Binding{}, false
}

// GetAttributeValue resolves a dotted name against set. Both spellings
// resolve: a.b = 1 and a = { b = 1; }. It returns NoNodeID when the name is
// not bound, or bound through inherit.
func GetAttributeValue(t *syntax.Tree, set syntax.NodeID, name string) syntax.NodeID {
	if name == "" {
		return syntax.NoNodeID
	}
	if b, ok := FindAttribute(t, set, name); ok {
		if b.Inherit != nil {
			return syntax.NoNodeID
		}
		return b.Value
	}
	for _, b := range t.Bindings(set) {
		if b.Inherit != nil {
			continue
		}
		prefix := b.Path.String()
		rest, ok := strings.CutPrefix(name, prefix+".")
		if !ok {
			continue
		}
		inner := t.Unparen(b.Value)
		if t.Kind(inner) != syntax.KindAttrSet {
			continue
		}
		if v := GetAttributeValue(t, inner, rest); v.IsValid() {
			return v
		}
	}
	return syntax.NoNodeID
}

// AttributeNames lists the first path segment of every binding in set,
// inherited names included, in source order and without repeats.
func AttributeNames(t *syntax.Tree, set syntax.NodeID) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		if _, ok := seen[name]; ok || name == "" {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, b := range t.Bindings(set) {
		if b.Inherit != nil {
			for _, attr := range b.Inherit.Attrs {
				add(attr)
			}
			continue
		}
		if len(b.Path.Segments) > 0 {
			add(b.Path.Segments[0].Name)
		}
	}
	return out
}

// HasAttribute reports whether set binds name, exactly or as a prefix of a
// longer path, looking through nested sets.
func HasAttribute(t *syntax.Tree, set syntax.NodeID, name string) bool {
	for _, b := range t.Bindings(set) {
		if b.Inherit != nil {
			for _, attr := range b.Inherit.Attrs {
				if attr == name {
					return true
				}
			}
			continue
		}
		p := b.Path.String()
		if p == name || strings.HasPrefix(p, name+".") {
			return true
		}
		if rest, ok := strings.CutPrefix(name, p+"."); ok {
			inner := t.Unparen(b.Value)
			if t.Kind(inner) == syntax.KindAttrSet && HasAttribute(t, inner, rest) {
				return true
			}
		}
	}
	return false
}

// ExtractStringValue returns the value of a string literal, a URI, or the
// text of a plain path literal. Interpolated strings report ok=false.
func ExtractStringValue(t *syntax.Tree, id syntax.NodeID) (string, bool) {
	id = t.Unparen(id)
	switch t.Kind(id) {
	case syntax.KindString:
		return t.StringValue(id)
	case syntax.KindPath:
		if t.HasInterpolation(id) {
			return "", false
		}
		return t.TrimmedText(id), true
	}
	return "", false
}
