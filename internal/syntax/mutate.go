package syntax

import (
	"nixscan/internal/source"
	"nixscan/internal/token"
)

// NewToken allocates a detached token. Its span is empty.
func (t *Tree) NewToken(kind token.Kind, text string) TokenID {
	var file source.FileID
	if t.file != nil {
		file = t.file.ID
	}
	return TokenID(t.tokens.Allocate(token.Token{Kind: kind, Text: text, Span: source.Span{File: file}}))
}

// NewNode allocates a detached node that adopts children.
func (t *Tree) NewNode(kind Kind, children ...Element) NodeID {
	id := NodeID(t.nodes.Allocate(Node{Kind: kind, Children: children}))
	for _, el := range children {
		if el.IsNode() {
			t.Node(el.Node).Parent = id
		}
	}
	return id
}

// InsertChild puts el at index among parent's children; index is clamped.
func (t *Tree) InsertChild(parent NodeID, index int, el Element) {
	n := t.Node(parent)
	if n == nil {
		return
	}
	index = max(0, min(index, len(n.Children)))
	n.Children = append(n.Children, Element{})
	copy(n.Children[index+1:], n.Children[index:])
	n.Children[index] = el
	if el.IsNode() {
		t.Node(el.Node).Parent = parent
	}
}

// RemoveChild detaches the child at index and returns it.
func (t *Tree) RemoveChild(parent NodeID, index int) Element {
	n := t.Node(parent)
	if n == nil || index < 0 || index >= len(n.Children) {
		return Element{}
	}
	el := n.Children[index]
	n.Children = append(n.Children[:index], n.Children[index+1:]...)
	if el.IsNode() {
		t.Node(el.Node).Parent = NoNodeID
	}
	return el
}

// Detach removes id from its parent. It reports whether id was attached.
func (t *Tree) Detach(id NodeID) bool {
	idx := t.IndexInParent(id)
	if idx < 0 {
		return false
	}
	t.RemoveChild(t.Parent(id), idx)
	return true
}

// ReplaceNode puts repl in the slot occupied by old and detaches old.
func (t *Tree) ReplaceNode(old, repl NodeID) bool {
	if old == t.Root {
		t.Root = repl
		t.Node(repl).Parent = NoNodeID
		return true
	}
	parent := t.Parent(old)
	idx := t.IndexInParent(old)
	if idx < 0 {
		return false
	}
	t.Node(parent).Children[idx] = NodeElem(repl)
	t.Node(repl).Parent = parent
	t.Node(old).Parent = NoNodeID
	return true
}

// Graft deep-copies node id of src into t and returns the detached copy.
// Copied tokens keep their text; their spans are reset.
func (t *Tree) Graft(src *Tree, id NodeID) NodeID {
	n := src.Node(id)
	if n == nil {
		return NoNodeID
	}
	children := make([]Element, 0, len(n.Children))
	for _, el := range n.Children {
		if el.IsToken() {
			tok := src.Token(el.Token)
			children = append(children, TokenElem(t.NewToken(tok.Kind, tok.Text)))
			continue
		}
		children = append(children, NodeElem(t.Graft(src, el.Node)))
	}
	return t.NewNode(n.Kind, children...)
}

// Equal reports whether two subtrees have the same shape and the same
// significant tokens. Trivia is ignored.
func Equal(a *Tree, an NodeID, b *Tree, bn NodeID) bool {
	if a.Kind(an) != b.Kind(bn) {
		return false
	}
	ac, bc := significantChildren(a, an), significantChildren(b, bn)
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		x, y := ac[i], bc[i]
		if x.IsNode() != y.IsNode() {
			return false
		}
		if x.IsNode() {
			if !Equal(a, x.Node, b, y.Node) {
				return false
			}
			continue
		}
		tx, ty := a.Token(x.Token), b.Token(y.Token)
		if tx.Kind != ty.Kind || tx.Text != ty.Text {
			return false
		}
	}
	return true
}

func significantChildren(t *Tree, id NodeID) []Element {
	var out []Element
	for _, el := range t.Children(id) {
		if el.IsToken() && t.Token(el.Token).IsTrivia() {
			continue
		}
		out = append(out, el)
	}
	return out
}

// Clone returns an independent copy of the tree.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes:  NewArena[Node](uint(t.nodes.Len())),
		tokens: NewArena[token.Token](uint(t.tokens.Len())),
		file:   t.file,
		Root:   t.Root,
	}
	for _, n := range t.nodes.Slice() {
		n.Children = append([]Element(nil), n.Children...)
		c.nodes.Allocate(n)
	}
	for _, tok := range t.tokens.Slice() {
		c.tokens.Allocate(tok)
	}
	return c
}
