package lexer

import (
	"nixscan/internal/diag"
	"nixscan/internal/token"
)

// scanNumber reads an integer or a float: 42, 1.5, 2.0e-3, 1e10.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.Int
	lx.eatDigits()

	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.Float
		lx.cursor.Bump()
		lx.eatDigits()
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		expStart := lx.cursor.Mark()
		lx.cursor.Bump()
		if s := lx.cursor.Peek(); s == '+' || s == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			// not an exponent; leave "e..." for the identifier scanner
			lx.cursor.Reset(expStart)
		} else {
			kind = token.Float
			lx.eatDigits()
		}
	}

	tok := lx.emit(kind, start)
	if kind == token.Int && len(tok.Text) > 19 {
		lx.errLex(diag.LexBadNumber, tok.Span, "integer literal is too large")
	}
	return tok
}

func (lx *Lexer) eatDigits() {
	for isDec(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}
}
