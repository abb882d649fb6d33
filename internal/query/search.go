package query

import (
	"nixscan/internal/syntax"
)

// Walk visits id and its descendants in pre-order; returning false from fn
// prunes that subtree.
func Walk(t *syntax.Tree, id syntax.NodeID, fn func(syntax.NodeID) bool) {
	t.Walk(id, fn)
}

// FindNodes returns every node under id (id included) matching pred, in
// pre-order.
func FindNodes(t *syntax.Tree, id syntax.NodeID, pred func(syntax.NodeID) bool) []syntax.NodeID {
	var out []syntax.NodeID
	t.Walk(id, func(n syntax.NodeID) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindAllByKind returns every node of kind under id.
func FindAllByKind(t *syntax.Tree, id syntax.NodeID, kind syntax.Kind) []syntax.NodeID {
	return FindNodes(t, id, func(n syntax.NodeID) bool {
		return t.Kind(n) == kind
	})
}

// ImportRef is one entry of a module's imports list.
type ImportRef struct {
	Node syntax.NodeID
	// Target is the path or string value, or the expression text for
	// anything else (e.g. inputs.foo.nixosModules.default).
	Target string
	// Literal is set when Target came from a path or string literal.
	Literal bool
	Line    int
}

// ExtractImports returns the entries of the imports = [ ... ] list of a
// NixOS-style module. module may be the module's top-level expression; the
// usual lambda and let wrappers are looked through.
func ExtractImports(t *syntax.Tree, module syntax.NodeID) []ImportRef {
	set := BodyAttrSet(t, module)
	if !set.IsValid() {
		return nil
	}
	list := t.Unparen(GetAttributeValue(t, set, "imports"))
	if t.Kind(list) != syntax.KindList {
		return nil
	}
	var out []ImportRef
	for _, el := range t.ListElements(list) {
		ref := ImportRef{Node: el, Line: t.Line(el)}
		if v, ok := ExtractStringValue(t, el); ok {
			ref.Target, ref.Literal = v, true
		} else {
			ref.Target = t.TrimmedText(el)
		}
		out = append(out, ref)
	}
	return out
}
