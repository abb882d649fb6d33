package edit

import (
	"strings"

	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

// layout inspects the children of a container to place new items the way
// existing ones are placed.
type layout struct {
	t        *syntax.Tree
	parent   syntax.NodeID
	children []syntax.Element
}

func layoutOf(t *syntax.Tree, parent syntax.NodeID) layout {
	return layout{t: t, parent: parent, children: t.Children(parent)}
}

func (l layout) tokenAt(i int) *token.Token {
	if i < 0 || i >= len(l.children) || !l.children[i].IsToken() {
		return nil
	}
	return l.t.Token(l.children[i].Token)
}

func (l layout) isWhitespace(i int) bool {
	tok := l.tokenAt(i)
	return tok != nil && tok.Kind == token.Whitespace
}

func (l layout) isLineComment(i int) bool {
	tok := l.tokenAt(i)
	return tok != nil && tok.Kind == token.LineComment
}

// separator returns the trivia to put before a new item that follows item:
// a newline plus item's indentation for multi-line containers, a space
// otherwise.
func (l layout) separator(item syntax.NodeID) string {
	idx := l.t.IndexInParent(item)
	if !l.isWhitespace(idx - 1) {
		return " "
	}
	ws := l.tokenAt(idx - 1).Text
	nl := strings.LastIndexByte(ws, '\n')
	if nl < 0 {
		return " "
	}
	return "\n" + ws[nl+1:]
}

// insertAfter places sep and node after item, skipping a comment that
// trails item on the same line.
func (l layout) insertAfter(item, node syntax.NodeID, sep string) {
	pos := l.t.IndexInParent(item) + 1
	switch {
	case l.isLineComment(pos):
		pos++
	case l.isWhitespace(pos) && !strings.Contains(l.tokenAt(pos).Text, "\n") && l.isLineComment(pos+1):
		pos += 2
	}
	l.t.InsertChild(l.parent, pos, syntax.TokenElem(l.t.NewToken(token.Whitespace, sep)))
	l.t.InsertChild(l.parent, pos+1, syntax.NodeElem(node))
}

// insertFirst places node right after the opening delimiter of an empty
// container.
func (l layout) insertFirst(open token.Kind, node syntax.NodeID) {
	pos := -1
	for i := range l.children {
		if tok := l.tokenAt(i); tok != nil && tok.Kind == open {
			pos = i + 1
			break
		}
	}
	if pos < 0 {
		pos = 0
	}
	if !l.isWhitespace(pos) {
		l.t.InsertChild(l.parent, pos, syntax.TokenElem(l.t.NewToken(token.Whitespace, " ")))
	}
	l.t.InsertChild(l.parent, pos, syntax.NodeElem(node))
	l.t.InsertChild(l.parent, pos, syntax.TokenElem(l.t.NewToken(token.Whitespace, " ")))
}

// remove detaches item together with one adjacent whitespace token,
// preferring the one before it. A line comment is never left directly in
// front of a token on the same line.
func (l layout) remove(item syntax.NodeID) {
	idx := l.t.IndexInParent(item)
	if idx < 0 {
		return
	}
	nextBreaks := l.isWhitespace(idx+1) && strings.Contains(l.tokenAt(idx+1).Text, "\n")
	switch {
	case l.isWhitespace(idx-1) && (!l.isLineComment(idx-2) || nextBreaks):
		l.t.RemoveChild(l.parent, idx)
		l.t.RemoveChild(l.parent, idx-1)
	case l.isWhitespace(idx + 1):
		l.t.RemoveChild(l.parent, idx+1)
		l.t.RemoveChild(l.parent, idx)
	default:
		l.t.RemoveChild(l.parent, idx)
	}
}
