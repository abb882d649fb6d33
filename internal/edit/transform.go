package edit

import (
	"slices"

	"nixscan/internal/syntax"
)

// TransformNodes visits root and its descendants outside-in. Wherever f
// returns a node other than NoNodeID (or id itself), that node takes id's
// place and the replacement is not visited. It returns the number of
// replacements.
func TransformNodes(t *syntax.Tree, root syntax.NodeID, f func(id syntax.NodeID) syntax.NodeID) int {
	count := 0
	var visit func(id syntax.NodeID)
	visit = func(id syntax.NodeID) {
		if repl := f(id); repl.IsValid() && repl != id && t.ReplaceNode(id, repl) {
			count++
			return
		}
		for _, el := range slices.Clone(t.Children(id)) {
			if el.IsNode() {
				visit(el.Node)
			}
		}
	}
	visit(root)
	return count
}

// ReplaceNodes replaces every node matching pred with the expression
// returned by replacer, parenthesised where the slot requires it. It stops
// at the first error and returns the replacements done so far.
func ReplaceNodes(t *syntax.Tree, root syntax.NodeID, pred func(syntax.NodeID) bool, replacer func(syntax.NodeID) (string, error)) (int, error) {
	var firstErr error
	n := TransformNodes(t, root, func(id syntax.NodeID) syntax.NodeID {
		if firstErr != nil || !pred(id) {
			return syntax.NoNodeID
		}
		text, err := replacer(id)
		if err != nil {
			firstErr = err
			return syntax.NoNodeID
		}
		var repl syntax.NodeID
		if tightSlot(t, id) {
			repl, err = graftListElement(t, text)
		} else {
			repl, err = graftExpr(t, text)
		}
		if err != nil {
			firstErr = err
			return syntax.NoNodeID
		}
		return repl
	})
	if firstErr != nil {
		return n, failed("replace nodes", firstErr)
	}
	return n, nil
}

// tightSlot reports whether id sits where only a primary expression may
// appear without parentheses.
func tightSlot(t *syntax.Tree, id syntax.NodeID) bool {
	switch t.Kind(t.Parent(id)) {
	case syntax.KindApply, syntax.KindImport, syntax.KindSelect, syntax.KindHasAttr,
		syntax.KindBinaryOp, syntax.KindUnaryOp, syntax.KindList:
		return true
	}
	return false
}
