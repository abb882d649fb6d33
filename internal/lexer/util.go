package lexer

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"
)

// bumpRune advances the cursor past one UTF-8 encoded rune and returns it.
func (lx *Lexer) bumpRune() rune {
	if lx.cursor.EOF() {
		return utf8.RuneError
	}
	b := lx.cursor.Peek()
	if b < utf8.RuneSelf {
		lx.cursor.Bump()
		return rune(b)
	}
	r, sz := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
	usz, err := safecast.Conv[uint32](sz)
	if err != nil {
		panic(fmt.Errorf("bumpRune overflow: %w", err))
	}
	lx.cursor.Advance(usz)
	return r
}

// isSpace covers ASCII blanks, form feed and vertical tab included.
// Non-ASCII spaces are not whitespace in Nix and lex as unknown runes.
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}
	return false
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentStart(b byte) bool {
	return isAlpha(b) || b == '_'
}

// Identifiers may contain apostrophes and dashes: foo', bar-baz.
func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDec(b) || b == '\'' || b == '-'
}

func isPathChar(b byte) bool {
	return isAlpha(b) || isDec(b) || b == '.' || b == '_' || b == '-' || b == '+'
}

func isSchemeChar(b byte) bool {
	return isAlpha(b) || isDec(b) || b == '+' || b == '-' || b == '.'
}

func isURIChar(b byte) bool {
	if isAlpha(b) || isDec(b) {
		return true
	}
	switch b {
	case '%', '/', '?', ':', '@', '&', '=', '+', '$', ',', '-', '_', '.', '!', '~', '*', '\'':
		return true
	}
	return false
}
