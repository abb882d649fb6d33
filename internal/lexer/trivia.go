package lexer

import (
	"nixscan/internal/diag"
	"nixscan/internal/token"
)

// scanWhitespace groups spaces, tabs and line breaks into one token.
func (lx *Lexer) scanWhitespace() token.Token {
	start := lx.cursor.Mark()
	for isSpace(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}
	return lx.emit(token.Whitespace, start)
}

// scanLineComment reads '#' up to, but not including, the newline.
func (lx *Lexer) scanLineComment() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	return lx.emit(token.LineComment, start)
}

// scanBlockComment reads "/* ... */". Block comments do not nest.
func (lx *Lexer) scanBlockComment() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Advance(2)
	for !lx.cursor.EOF() {
		if lx.cursor.HasPrefix("*/") {
			lx.cursor.Advance(2)
			return lx.emit(token.BlockComment, start)
		}
		lx.cursor.Bump()
	}
	tok := lx.emit(token.BlockComment, start)
	lx.errLex(diag.LexUnterminatedBlockComment, tok.Span, "unterminated block comment")
	return tok
}
