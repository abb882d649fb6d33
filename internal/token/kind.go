package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid marks bytes the lexer could not classify.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Whitespace is a run of spaces, tabs, carriage returns and newlines.
	Whitespace
	// LineComment is a '#' comment up to (not including) the newline.
	LineComment
	// BlockComment is a '/* ... */' comment.
	BlockComment

	// Ident represents an identifier token.
	Ident
	// Int represents an integer literal.
	Int
	// Float represents a float literal.
	Float
	// Path represents a path literal (./a, ../a, /a, ~/a, a/b).
	Path
	// SearchPath represents a <nixpkgs>-style lookup path.
	SearchPath
	// URI represents an unquoted URI literal.
	URI

	// StringStart is the opening '"'.
	StringStart
	// StringEnd is the closing '"'.
	StringEnd
	// IndStringStart is the opening "''" of an indented string.
	IndStringStart
	// IndStringEnd is the closing "''" of an indented string.
	IndStringEnd
	// StringFragment is literal text inside a string, escapes included.
	StringFragment
	// InterpStart is '${' inside strings and attribute paths.
	InterpStart

	KwLet     // let
	KwIn      // in
	KwRec     // rec
	KwWith    // with
	KwInherit // inherit
	KwIf      // if
	KwThen    // then
	KwElse    // else
	KwAssert  // assert
	KwOr      // or

	Plus     // +
	Minus    // -
	Star     // *
	Slash    // /
	Concat   // ++
	Update   // //
	EqEq     // ==
	NotEq    // !=
	Lt       // <
	LtEq     // <=
	Gt       // >
	GtEq     // >=
	AndAnd   // &&
	OrOr     // ||
	Implies  // ->
	Bang     // !
	Question // ?
	Assign   // =
	Colon    // :
	Semi     // ;
	Comma    // ,
	Dot      // .
	Ellipsis // ...
	At       // @
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
)

var kindNames = [...]string{
	Invalid:        "Invalid",
	EOF:            "EOF",
	Whitespace:     "Whitespace",
	LineComment:    "LineComment",
	BlockComment:   "BlockComment",
	Ident:          "Ident",
	Int:            "Int",
	Float:          "Float",
	Path:           "Path",
	SearchPath:     "SearchPath",
	URI:            "URI",
	StringStart:    "StringStart",
	StringEnd:      "StringEnd",
	IndStringStart: "IndStringStart",
	IndStringEnd:   "IndStringEnd",
	StringFragment: "StringFragment",
	InterpStart:    "InterpStart",
	KwLet:          "KwLet",
	KwIn:           "KwIn",
	KwRec:          "KwRec",
	KwWith:         "KwWith",
	KwInherit:      "KwInherit",
	KwIf:           "KwIf",
	KwThen:         "KwThen",
	KwElse:         "KwElse",
	KwAssert:       "KwAssert",
	KwOr:           "KwOr",
	Plus:           "Plus",
	Minus:          "Minus",
	Star:           "Star",
	Slash:          "Slash",
	Concat:         "Concat",
	Update:         "Update",
	EqEq:           "EqEq",
	NotEq:          "NotEq",
	Lt:             "Lt",
	LtEq:           "LtEq",
	Gt:             "Gt",
	GtEq:           "GtEq",
	AndAnd:         "AndAnd",
	OrOr:           "OrOr",
	Implies:        "Implies",
	Bang:           "Bang",
	Question:       "Question",
	Assign:         "Assign",
	Colon:          "Colon",
	Semi:           "Semi",
	Comma:          "Comma",
	Dot:            "Dot",
	Ellipsis:       "Ellipsis",
	At:             "At",
	LParen:         "LParen",
	RParen:         "RParen",
	LBrace:         "LBrace",
	RBrace:         "RBrace",
	LBracket:       "LBracket",
	RBracket:       "RBracket",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
