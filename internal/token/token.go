package token

import (
	"nixscan/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsTrivia reports whether the token kind is whitespace or a comment.
func (k Kind) IsTrivia() bool {
	switch k {
	case Whitespace, LineComment, BlockComment:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token kind is a language keyword.
func (k Kind) IsKeyword() bool {
	return k >= KwLet && k <= KwOr
}

// IsTrivia reports whether the token is whitespace or a comment.
func (t Token) IsTrivia() bool { return t.Kind.IsTrivia() }

// IsLiteral reports whether the token is a numeric, path-like or URI literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case Int, Float, Path, SearchPath, URI:
		return true
	default:
		return false
	}
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind >= Plus && t.Kind <= RBracket
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
