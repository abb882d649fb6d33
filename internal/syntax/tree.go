package syntax

import (
	"strings"

	"nixscan/internal/source"
	"nixscan/internal/token"
)

// Node is one interior node of the lossless tree. Parent is a lookup handle
// into the same Tree, never an owner.
type Node struct {
	Kind     Kind
	Parent   NodeID
	Children []Element
}

// Tree owns every node and token of one parsed file. Concatenating the text
// of all tokens reachable from Root reproduces the source exactly.
//
// Spans of tokens inserted by edits are empty, and spans of original tokens
// are not shifted by edits; use them only on unedited trees.
type Tree struct {
	nodes  *Arena[Node]
	tokens *Arena[token.Token]
	file   *source.File
	Root   NodeID
}

// NewTree creates an empty tree over file, which may be nil for fragments.
func NewTree(file *source.File, tokenHint uint) *Tree {
	return &Tree{
		nodes:  NewArena[Node](tokenHint/2 + 1),
		tokens: NewArena[token.Token](tokenHint),
		file:   file,
	}
}

// File returns the source file the tree was parsed from, or nil.
func (t *Tree) File() *source.File { return t.file }

func (t *Tree) Node(id NodeID) *Node {
	return t.nodes.Get(uint32(id))
}

func (t *Tree) Token(id TokenID) *token.Token {
	return t.tokens.Get(uint32(id))
}

// NodeCount is the number of nodes ever allocated, detached ones included.
func (t *Tree) NodeCount() int { return int(t.nodes.Len()) }

func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return KindError
}

func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.Parent
	}
	return NoNodeID
}

func (t *Tree) Children(id NodeID) []Element {
	if n := t.Node(id); n != nil {
		return n.Children
	}
	return nil
}

// ChildNodes returns the node children of id in source order.
func (t *Tree) ChildNodes(id NodeID) []NodeID {
	var out []NodeID
	for _, el := range t.Children(id) {
		if el.IsNode() {
			out = append(out, el.Node)
		}
	}
	return out
}

// ChildOfKind returns the first child node of the given kind.
func (t *Tree) ChildOfKind(id NodeID, kind Kind) NodeID {
	for _, el := range t.Children(id) {
		if el.IsNode() && t.Kind(el.Node) == kind {
			return el.Node
		}
	}
	return NoNodeID
}

// ChildToken returns the first direct token child of the given kind.
func (t *Tree) ChildToken(id NodeID, kind token.Kind) TokenID {
	for _, el := range t.Children(id) {
		if el.IsToken() && t.Token(el.Token).Kind == kind {
			return el.Token
		}
	}
	return NoTokenID
}

// Ancestors returns the parents of id, nearest first.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for p := t.Parent(id); p.IsValid(); p = t.Parent(p) {
		out = append(out, p)
	}
	return out
}

// Contains reports whether node lies inside ancestor (or is it).
func (t *Tree) Contains(ancestor, node NodeID) bool {
	for n := node; n.IsValid(); n = t.Parent(n) {
		if n == ancestor {
			return true
		}
	}
	return false
}

// IndexInParent returns the slot of id among its parent's children, or -1.
func (t *Tree) IndexInParent(id NodeID) int {
	for i, el := range t.Children(t.Parent(id)) {
		if el.Node == id {
			return i
		}
	}
	return -1
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the children of that node.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if !id.IsValid() || !fn(id) {
		return
	}
	for _, el := range t.Children(id) {
		if el.IsNode() {
			t.Walk(el.Node, fn)
		}
	}
}

// Tokens returns every token under id in source order, trivia included.
func (t *Tree) Tokens(id NodeID) []TokenID {
	var out []TokenID
	t.collectTokens(id, &out)
	return out
}

func (t *Tree) collectTokens(id NodeID, out *[]TokenID) {
	for _, el := range t.Children(id) {
		if el.IsToken() {
			*out = append(*out, el.Token)
		} else {
			t.collectTokens(el.Node, out)
		}
	}
}

// SignificantTokens is Tokens without trivia.
func (t *Tree) SignificantTokens(id NodeID) []TokenID {
	all := t.Tokens(id)
	out := all[:0]
	for _, tid := range all {
		if !t.Token(tid).IsTrivia() {
			out = append(out, tid)
		}
	}
	return out
}

// FirstToken returns the first non-trivia token under id.
func (t *Tree) FirstToken(id NodeID) TokenID {
	for _, el := range t.Children(id) {
		if el.IsToken() {
			if !t.Token(el.Token).IsTrivia() {
				return el.Token
			}
			continue
		}
		if tok := t.FirstToken(el.Node); tok.IsValid() {
			return tok
		}
	}
	return NoTokenID
}

// LastToken returns the last non-trivia token under id.
func (t *Tree) LastToken(id NodeID) TokenID {
	children := t.Children(id)
	for i := len(children) - 1; i >= 0; i-- {
		el := children[i]
		if el.IsToken() {
			if !t.Token(el.Token).IsTrivia() {
				return el.Token
			}
			continue
		}
		if tok := t.LastToken(el.Node); tok.IsValid() {
			return tok
		}
	}
	return NoTokenID
}

// Text returns the exact source text of id, trivia included.
func (t *Tree) Text(id NodeID) string {
	var b strings.Builder
	t.writeText(id, &b)
	return b.String()
}

func (t *Tree) writeText(id NodeID, b *strings.Builder) {
	for _, el := range t.Children(id) {
		if el.IsToken() {
			b.WriteString(t.Token(el.Token).Text)
		} else {
			t.writeText(el.Node, b)
		}
	}
}

// TrimmedText is Text with leading and trailing trivia removed.
func (t *Tree) TrimmedText(id NodeID) string {
	toks := t.Tokens(id)
	first, last := -1, -1
	for i, tid := range toks {
		if !t.Token(tid).IsTrivia() {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return ""
	}
	var b strings.Builder
	for _, tid := range toks[first : last+1] {
		b.WriteString(t.Token(tid).Text)
	}
	return b.String()
}

// String serialises the whole tree.
func (t *Tree) String() string {
	return t.Text(t.Root)
}

// Span covers the significant tokens of id. It is only meaningful for
// nodes whose tokens all come from the original source.
func (t *Tree) Span(id NodeID) source.Span {
	first, last := t.FirstToken(id), t.LastToken(id)
	if !first.IsValid() {
		return source.Span{}
	}
	return t.Token(first).Span.Cover(t.Token(last).Span)
}

// Line returns the 1-based line where id starts, or 0 when unknown.
func (t *Tree) Line(id NodeID) int {
	if t.file == nil {
		return 0
	}
	first := t.FirstToken(id)
	if !first.IsValid() {
		return 0
	}
	tok := t.Token(first)
	if tok.Span.Empty() && tok.Text != "" {
		return 0
	}
	return t.file.Line(tok.Span.Start)
}

// IsRecursive reports whether an AttrSet node was written with rec.
func (t *Tree) IsRecursive(set NodeID) bool {
	return t.Kind(set) == KindAttrSet && t.ChildToken(set, token.KwRec).IsValid()
}

// LiteralKind derives the literal type of a Literal node.
func (t *Tree) LiteralKind(id NodeID) LiteralKind {
	if t.Kind(id) != KindLiteral {
		return LitNone
	}
	tok := t.Token(t.FirstToken(id))
	if tok == nil {
		return LitNone
	}
	switch tok.Kind {
	case token.Int:
		return LitInt
	case token.Float:
		return LitFloat
	case token.Ident:
		switch tok.Text {
		case "true", "false":
			return LitBool
		case "null":
			return LitNull
		}
	}
	return LitNone
}

// IdentName returns the name of an Ident node, or "".
func (t *Tree) IdentName(id NodeID) string {
	if t.Kind(id) != KindIdent {
		return ""
	}
	if tok := t.Token(t.FirstToken(id)); tok != nil {
		return tok.Text
	}
	return ""
}

// OperatorToken returns the operator of a BinaryOp or UnaryOp node.
func (t *Tree) OperatorToken(id NodeID) token.Kind {
	switch t.Kind(id) {
	case KindBinaryOp:
		for _, el := range t.Children(id) {
			if el.IsToken() {
				if tok := t.Token(el.Token); !tok.IsTrivia() {
					return tok.Kind
				}
			}
		}
	case KindUnaryOp:
		if tok := t.Token(t.FirstToken(id)); tok != nil {
			return tok.Kind
		}
	}
	return token.Invalid
}
