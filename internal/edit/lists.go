package edit

import (
	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

// AddListElement appends value to list and returns the inserted node.
// Values that would not parse as a single element, like applications, are
// parenthesised.
func AddListElement(t *syntax.Tree, list syntax.NodeID, value string) (syntax.NodeID, error) {
	const op = "add list element"
	if t.Kind(list) != syntax.KindList {
		return syntax.NoNodeID, mismatch(op, t, list)
	}
	node, err := graftListElement(t, value)
	if err != nil {
		return syntax.NoNodeID, failed(op, err)
	}
	l := layoutOf(t, list)
	elems := t.ListElements(list)
	if len(elems) == 0 {
		l.insertFirst(token.LBracket, node)
		return node, nil
	}
	last := elems[len(elems)-1]
	l.insertAfter(last, node, l.separator(last))
	return node, nil
}

// RemoveListElement removes the element at index and returns it. An index
// out of range is not an error.
func RemoveListElement(t *syntax.Tree, list syntax.NodeID, index int) (syntax.NodeID, error) {
	if t.Kind(list) != syntax.KindList {
		return syntax.NoNodeID, mismatch("remove list element", t, list)
	}
	elems := t.ListElements(list)
	if index < 0 || index >= len(elems) {
		return syntax.NoNodeID, nil
	}
	layoutOf(t, list).remove(elems[index])
	return elems[index], nil
}
