package syntax

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"nixscan/internal/source"
	"nixscan/internal/token"
)

// ErrBadSnapshot is returned when a snapshot does not describe a valid tree
// for the file it is restored against.
var ErrBadSnapshot = errors.New("invalid tree snapshot")

// Snapshot is a flat copy of a parsed tree, suitable for encoding. Token
// text is not stored when it can be sliced from the file content.
type Snapshot struct {
	Root   uint32      `msgpack:"root"`
	Nodes  []SnapNode  `msgpack:"nodes"`
	Tokens []SnapToken `msgpack:"tokens"`
}

// SnapNode is one node. Children holds node IDs as positive numbers and
// token IDs negated.
type SnapNode struct {
	Kind     Kind    `msgpack:"k"`
	Parent   uint32  `msgpack:"p"`
	Children []int64 `msgpack:"c"`
}

type SnapToken struct {
	Kind  token.Kind `msgpack:"k"`
	Start uint32     `msgpack:"s"`
	End   uint32     `msgpack:"e"`
	// Text is set only for tokens without a span in the file.
	Text string `msgpack:"t,omitempty"`
}

// Snapshot flattens t. Detached nodes are kept so IDs stay stable.
func (t *Tree) Snapshot() *Snapshot {
	s := &Snapshot{
		Root:   uint32(t.Root),
		Nodes:  make([]SnapNode, 0, t.nodes.Len()),
		Tokens: make([]SnapToken, 0, t.tokens.Len()),
	}
	for _, n := range t.nodes.Slice() {
		sn := SnapNode{Kind: n.Kind, Parent: uint32(n.Parent), Children: make([]int64, len(n.Children))}
		for i, el := range n.Children {
			if el.IsNode() {
				sn.Children[i] = int64(el.Node)
			} else {
				sn.Children[i] = -int64(el.Token)
			}
		}
		s.Nodes = append(s.Nodes, sn)
	}
	for _, tok := range t.tokens.Slice() {
		st := SnapToken{Kind: tok.Kind, Start: tok.Span.Start, End: tok.Span.End}
		if tok.Span.Empty() || !t.sliceMatches(tok) {
			st.Text = tok.Text
		}
		s.Tokens = append(s.Tokens, st)
	}
	return s
}

func (t *Tree) sliceMatches(tok token.Token) bool {
	if t.file == nil || int(tok.Span.End) > len(t.file.Content) {
		return false
	}
	return string(t.file.Content[tok.Span.Start:tok.Span.End]) == tok.Text
}

// FromSnapshot rebuilds a tree over file. file must hold the content the
// snapshot was taken from.
func FromSnapshot(file *source.File, s *Snapshot) (*Tree, error) {
	if s == nil {
		return nil, ErrBadSnapshot
	}
	var fileID source.FileID
	var content []byte
	if file != nil {
		fileID, content = file.ID, file.Content
	}
	t := NewTree(file, uint(len(s.Tokens)))
	for i, st := range s.Tokens {
		text := st.Text
		if text == "" && st.End > st.Start {
			if int(st.End) > len(content) {
				return nil, fmt.Errorf("%w: token %d outside file", ErrBadSnapshot, i+1)
			}
			text = string(content[st.Start:st.End])
		}
		t.tokens.Allocate(token.Token{
			Kind: st.Kind,
			Span: source.Span{File: fileID, Start: st.Start, End: st.End},
			Text: text,
		})
	}
	nodeCount, tokenCount := int64(len(s.Nodes)), int64(len(s.Tokens))
	for i, sn := range s.Nodes {
		n := Node{Kind: sn.Kind, Parent: NodeID(sn.Parent), Children: make([]Element, len(sn.Children))}
		if int64(sn.Parent) > nodeCount {
			return nil, fmt.Errorf("%w: node %d has unknown parent", ErrBadSnapshot, i+1)
		}
		for j, c := range sn.Children {
			switch {
			case c > 0 && c <= nodeCount:
				id, err := safecast.Conv[uint32](c)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrBadSnapshot, err)
				}
				n.Children[j] = NodeElem(NodeID(id))
			case c < 0 && -c <= tokenCount:
				id, err := safecast.Conv[uint32](-c)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrBadSnapshot, err)
				}
				n.Children[j] = TokenElem(TokenID(id))
			default:
				return nil, fmt.Errorf("%w: node %d has bad child %d", ErrBadSnapshot, i+1, c)
			}
		}
		t.nodes.Allocate(n)
	}
	if int64(s.Root) > nodeCount || (s.Root == 0 && nodeCount > 0) {
		return nil, fmt.Errorf("%w: bad root", ErrBadSnapshot)
	}
	t.Root = NodeID(s.Root)
	return t, nil
}
