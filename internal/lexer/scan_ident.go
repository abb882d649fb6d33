package lexer

import (
	"nixscan/internal/token"
)

// scanIdentOrKeyword reads [a-zA-Z_][a-zA-Z0-9_'-]* and checks it against
// the keyword table. true, false and null stay identifiers.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for isIdentContinue(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}
	tok := lx.emit(token.Ident, start)
	if k, ok := token.LookupKeyword(tok.Text); ok {
		tok.Kind = k
	}
	return tok
}
