package syntax

import (
	"nixscan/internal/source"
	"nixscan/internal/token"
)

// Builder assembles a Tree top-down: StartNode opens a node, Token appends a
// token to the innermost open node, FinishNode closes it.
type Builder struct {
	tree  *Tree
	stack []NodeID
}

func NewBuilder(file *source.File, tokenHint uint) *Builder {
	return &Builder{tree: NewTree(file, tokenHint)}
}

// Checkpoint marks a position among the children of the current node so a
// node can later be opened around what follows it (StartNodeAt).
type Checkpoint struct {
	parent NodeID
	index  int
}

func (b *Builder) current() NodeID {
	if len(b.stack) == 0 {
		return NoNodeID
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) StartNode(kind Kind) {
	id := NodeID(b.tree.nodes.Allocate(Node{Kind: kind, Parent: b.current()}))
	if parent := b.tree.Node(b.current()); parent != nil {
		parent.Children = append(parent.Children, NodeElem(id))
	} else if !b.tree.Root.IsValid() {
		b.tree.Root = id
	}
	b.stack = append(b.stack, id)
}

func (b *Builder) FinishNode() {
	if len(b.stack) > 0 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

// Depth is the number of open nodes.
func (b *Builder) Depth() int { return len(b.stack) }

// Token appends tok to the current node.
func (b *Builder) Token(tok token.Token) TokenID {
	id := TokenID(b.tree.tokens.Allocate(tok))
	if n := b.tree.Node(b.current()); n != nil {
		n.Children = append(n.Children, TokenElem(id))
	}
	return id
}

func (b *Builder) Checkpoint() Checkpoint {
	cur := b.current()
	return Checkpoint{parent: cur, index: len(b.tree.Children(cur))}
}

// StartNodeAt opens a node that adopts every child added to the current node
// since cp was taken.
func (b *Builder) StartNodeAt(cp Checkpoint, kind Kind) {
	parent := b.tree.Node(cp.parent)
	if parent == nil || cp.parent != b.current() {
		b.StartNode(kind)
		return
	}
	id := NodeID(b.tree.nodes.Allocate(Node{Kind: kind, Parent: cp.parent}))
	parent = b.tree.Node(cp.parent)
	moved := append([]Element(nil), parent.Children[cp.index:]...)
	parent.Children = append(parent.Children[:cp.index], NodeElem(id))
	node := b.tree.Node(id)
	node.Children = moved
	for _, el := range moved {
		if el.IsNode() {
			b.tree.Node(el.Node).Parent = id
		}
	}
	b.stack = append(b.stack, id)
}

// Finish closes all open nodes and returns the tree.
func (b *Builder) Finish() *Tree {
	b.stack = b.stack[:0]
	return b.tree
}
