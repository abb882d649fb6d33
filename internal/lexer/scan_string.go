package lexer

import (
	"nixscan/internal/token"
)

// scanStringPart lexes inside "...": the closing quote, an interpolation
// opener, or a maximal literal fragment with escapes kept verbatim.
func (lx *Lexer) scanStringPart() token.Token {
	start := lx.cursor.Mark()
	c := &lx.cursor
	if c.Eat('"') {
		lx.pop()
		return lx.emit(token.StringEnd, start)
	}
	if lx.startInterp() {
		return lx.emit(token.InterpStart, start)
	}

loop:
	for !c.EOF() {
		switch b := c.Peek(); {
		case b == '"':
			break loop
		case b == '\\':
			c.Advance(2)
		case b == '$' && c.PeekAt(1) == '{':
			break loop
		case b == '$' && c.PeekAt(1) == '$':
			c.Advance(2)
		default:
			c.Bump()
		}
	}
	return lx.emit(token.StringFragment, start)
}

// scanIndStringPart lexes inside ''...''. The escapes ''' and ''$ and ''\x
// belong to the fragment; any other '' closes the string.
func (lx *Lexer) scanIndStringPart() token.Token {
	start := lx.cursor.Mark()
	c := &lx.cursor
	if c.HasPrefix("''") && !isIndEscape(c.PeekAt(2)) {
		c.Advance(2)
		lx.pop()
		return lx.emit(token.IndStringEnd, start)
	}
	if lx.startInterp() {
		return lx.emit(token.InterpStart, start)
	}

loop:
	for !c.EOF() {
		switch {
		case c.HasPrefix("''"):
			esc := c.PeekAt(2)
			if !isIndEscape(esc) {
				break loop
			}
			c.Advance(3)
			if esc == '\\' {
				lx.bumpRune()
			}
		case c.HasPrefix("${"):
			break loop
		case c.HasPrefix("$$"):
			c.Advance(2)
		default:
			c.Bump()
		}
	}
	return lx.emit(token.StringFragment, start)
}

func isIndEscape(b byte) bool {
	return b == '\'' || b == '$' || b == '\\'
}

func (lx *Lexer) startInterp() bool {
	if !lx.cursor.HasPrefix("${") {
		return false
	}
	lx.cursor.Advance(2)
	lx.push(mode{kind: modeNormal, interp: true})
	return true
}
