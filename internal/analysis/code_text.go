package analysis

import (
	"strings"

	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

// CodeText returns the file's text with comments and string contents blanked
// out. Newlines are kept, so offsets and line numbers still match the source.
func CodeText(sf *syntax.SourceFile) string {
	t := sf.Tree
	var b strings.Builder
	b.Grow(len(sf.Text))
	for _, tid := range t.Tokens(t.Root) {
		tok := t.Token(tid)
		switch tok.Kind {
		case token.LineComment, token.BlockComment, token.StringFragment:
			b.WriteString(blank(tok.Text))
		default:
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

func blank(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		return ' '
	}, s)
}

// LineAt is the 1-based line of byte offset off in text.
func LineAt(text string, off int) int {
	if off > len(text) {
		off = len(text)
	}
	return strings.Count(text[:off], "\n") + 1
}
