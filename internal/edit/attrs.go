package edit

import (
	"slices"

	"nixscan/internal/query"
	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

// Every operation returns the node the edit displaced (no longer reachable
// from Root), or NoNodeID when nothing was displaced. Trees are edited in
// place; callers that need the original keep a Clone.

// AddAttribute binds the dotted path to value in set, replacing the value of
// an existing binding with the same path. Nested sets along the path are
// reused: adding inputs.foo.url where set holds inputs = { ... } inserts
// foo.url into the inner set.
func AddAttribute(t *syntax.Tree, set syntax.NodeID, path, value string) (syntax.NodeID, error) {
	segs, err := SplitPath(path)
	if err != nil {
		return syntax.NoNodeID, failed("add attribute", err)
	}
	return AddAttributePath(t, set, segs, value)
}

// AddAttributePath is AddAttribute with the path given as segments.
func AddAttributePath(t *syntax.Tree, set syntax.NodeID, segs []string, value string) (syntax.NodeID, error) {
	const op = "add attribute"
	if t.Kind(set) != syntax.KindAttrSet {
		return syntax.NoNodeID, mismatch(op, t, set)
	}
	if len(segs) == 0 || slices.Contains(segs, "") {
		return syntax.NoNodeID, failed(op, ErrInvalidPath)
	}
	container, b, rest := locate(t, set, segs)
	if b != nil {
		return replaceValue(t, op, *b, value)
	}
	node, err := graftBinding(t, rest, value)
	if err != nil {
		return syntax.NoNodeID, failed(op, err)
	}
	l := layoutOf(t, container)
	bindings := t.Bindings(container)
	if len(bindings) == 0 {
		l.insertFirst(token.LBrace, node)
		return syntax.NoNodeID, nil
	}
	anchor := bindings[len(bindings)-1].Node
	for _, b := range bindings {
		if names := staticNames(b.Path); len(names) > 0 && names[0] == rest[0] {
			anchor = b.Node
		}
	}
	l.insertAfter(anchor, node, l.separator(anchor))
	return syntax.NoNodeID, nil
}

// UpdateAttribute replaces the value of an existing binding. A missing
// binding is left alone and NoNodeID is returned.
func UpdateAttribute(t *syntax.Tree, set syntax.NodeID, path, value string) (syntax.NodeID, error) {
	const op = "update attribute"
	if t.Kind(set) != syntax.KindAttrSet {
		return syntax.NoNodeID, mismatch(op, t, set)
	}
	segs, err := SplitPath(path)
	if err != nil {
		return syntax.NoNodeID, failed(op, err)
	}
	_, b, _ := locate(t, set, segs)
	if b == nil {
		return syntax.NoNodeID, nil
	}
	return replaceValue(t, op, *b, value)
}

// RemoveAttribute deletes the binding of path, or the name from an inherit
// clause. Removing an unbound path is not an error.
func RemoveAttribute(t *syntax.Tree, set syntax.NodeID, path string) (syntax.NodeID, error) {
	const op = "remove attribute"
	if t.Kind(set) != syntax.KindAttrSet {
		return syntax.NoNodeID, mismatch(op, t, set)
	}
	segs, err := SplitPath(path)
	if err != nil {
		return syntax.NoNodeID, failed(op, err)
	}
	container, b, rest := locate(t, set, segs)
	if b != nil {
		layoutOf(t, container).remove(b.Node)
		return b.Value, nil
	}
	if len(rest) != 1 {
		return syntax.NoNodeID, nil
	}
	for _, ib := range t.Bindings(container) {
		if ib.Inherit == nil {
			continue
		}
		for i, name := range ib.Inherit.Attrs {
			if name != rest[0] {
				continue
			}
			attr := ib.Inherit.AttrNodes[i]
			if len(ib.Inherit.Attrs) == 1 && !ib.Inherit.From.IsValid() {
				layoutOf(t, container).remove(ib.Node)
			} else {
				layoutOf(t, ib.Node).remove(attr)
			}
			return attr, nil
		}
	}
	return syntax.NoNodeID, nil
}

// AddFlakeInput adds inputs.<name>.url = "<url>" to a flake, following the
// style the flake already uses for its inputs.
func AddFlakeInput(t *syntax.Tree, name, url string) (syntax.NodeID, error) {
	root := query.RootExpr(t)
	set := query.BodyAttrSet(t, root)
	if !set.IsValid() {
		return syntax.NoNodeID, mismatch("add flake input", t, root)
	}
	return AddAttributePath(t, set, []string{"inputs", name, "url"}, Quote(url))
}

// locate finds the binding of segs in set, descending through nested sets
// bound to a prefix of segs. Without an exact match it returns the deepest
// set reached and the segments still unbound there.
func locate(t *syntax.Tree, set syntax.NodeID, segs []string) (syntax.NodeID, *syntax.Binding, []string) {
	bindings := t.Bindings(set)
	for i := range bindings {
		if b := &bindings[i]; b.Inherit == nil && slices.Equal(staticNames(b.Path), segs) {
			return set, b, nil
		}
	}
	for _, b := range bindings {
		names := staticNames(b.Path)
		if b.Inherit != nil || len(names) == 0 || len(names) >= len(segs) || !slices.Equal(names, segs[:len(names)]) {
			continue
		}
		if inner := t.Unparen(b.Value); t.Kind(inner) == syntax.KindAttrSet {
			return locate(t, inner, segs[len(names):])
		}
	}
	return set, nil, segs
}

// staticNames returns the segment names of p, or nil when any segment is
// dynamic.
func staticNames(p syntax.AttrPath) []string {
	for _, s := range p.Segments {
		if s.Dynamic {
			return nil
		}
	}
	return p.Names()
}

func replaceValue(t *syntax.Tree, op string, b syntax.Binding, value string) (syntax.NodeID, error) {
	if !b.Value.IsValid() {
		node, err := graftBinding(t, staticNames(b.Path), value)
		if err != nil {
			return syntax.NoNodeID, failed(op, err)
		}
		t.ReplaceNode(b.Node, node)
		return syntax.NoNodeID, nil
	}
	repl, err := graftExpr(t, value)
	if err != nil {
		return syntax.NoNodeID, failed(op, err)
	}
	old := b.Value
	t.ReplaceNode(old, repl)
	return old, nil
}
