package lexer

import (
	"fmt"

	"nixscan/internal/diag"
	"nixscan/internal/token"
)

var threeByteOps = map[string]token.Kind{
	"...": token.Ellipsis,
}

var twoByteOps = map[string]token.Kind{
	"++": token.Concat,
	"//": token.Update,
	"==": token.EqEq,
	"!=": token.NotEq,
	"<=": token.LtEq,
	">=": token.GtEq,
	"&&": token.AndAnd,
	"||": token.OrOr,
	"->": token.Implies,
}

var oneByteOps = map[byte]token.Kind{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'<': token.Lt,
	'>': token.Gt,
	'!': token.Bang,
	'?': token.Question,
	'=': token.Assign,
	':': token.Colon,
	';': token.Semi,
	',': token.Comma,
	'.': token.Dot,
	'@': token.At,
	'(': token.LParen,
	')': token.RParen,
	'[': token.LBracket,
	']': token.RBracket,
}

// scanOperatorOrPunct reads the longest operator at the cursor. Braces and
// "${" also maintain the mode stack.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	c := &lx.cursor

	switch {
	case c.HasPrefix("${"):
		c.Advance(2)
		lx.push(mode{kind: modeNormal, interp: true})
		return lx.emit(token.InterpStart, start)
	case c.Peek() == '{':
		c.Bump()
		lx.top().depth++
		return lx.emit(token.LBrace, start)
	case c.Peek() == '}':
		c.Bump()
		top := lx.top()
		switch {
		case top.depth > 0:
			top.depth--
		case top.interp:
			lx.pop()
		}
		return lx.emit(token.RBrace, start)
	}

	if b0, b1, b2, ok := c.Peek3(); ok {
		if k, found := threeByteOps[string([]byte{b0, b1, b2})]; found {
			c.Advance(3)
			return lx.emit(k, start)
		}
	}
	if b0, b1, ok := c.Peek2(); ok {
		if k, found := twoByteOps[string([]byte{b0, b1})]; found {
			c.Advance(2)
			return lx.emit(k, start)
		}
	}
	if k, found := oneByteOps[c.Peek()]; found {
		c.Bump()
		return lx.emit(k, start)
	}

	r := lx.bumpRune()
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnknownChar, tok.Span, fmt.Sprintf("unknown character %q", r))
	return tok
}
