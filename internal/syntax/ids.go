package syntax

type (
	// NodeID addresses a node in Tree's node arena.
	NodeID uint32
	// TokenID addresses a token in Tree's token arena.
	TokenID uint32
)

const (
	NoNodeID  NodeID  = 0
	NoTokenID TokenID = 0
)

func (id NodeID) IsValid() bool  { return id != NoNodeID }
func (id TokenID) IsValid() bool { return id != NoTokenID }

// Element is a child slot: exactly one of Node or Token is set.
type Element struct {
	Node  NodeID
	Token TokenID
}

func NodeElem(id NodeID) Element   { return Element{Node: id} }
func TokenElem(id TokenID) Element { return Element{Token: id} }

func (e Element) IsNode() bool  { return e.Node.IsValid() }
func (e Element) IsToken() bool { return e.Token.IsValid() }
