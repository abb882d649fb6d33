package syntax

import (
	"strings"

	"nixscan/internal/token"
)

// StringValue returns the literal value of a String node. ok is false when
// the string contains interpolations or id is not a String.
func (t *Tree) StringValue(id NodeID) (string, bool) {
	if t.Kind(id) != KindString {
		return "", false
	}
	var (
		b        strings.Builder
		indented bool
	)
	for _, el := range t.Children(id) {
		if el.IsNode() {
			return "", false
		}
		tok := t.Token(el.Token)
		switch tok.Kind {
		case token.URI:
			return tok.Text, true
		case token.IndStringStart:
			indented = true
		case token.StringFragment:
			b.WriteString(tok.Text)
		}
	}
	if indented {
		return unescapeIndented(stripIndent(b.String())), true
	}
	return unescapeString(b.String()), true
}

// HasInterpolation reports whether a String or Path node contains ${...}.
func (t *Tree) HasInterpolation(id NodeID) bool {
	return t.ChildOfKind(id, KindInterpolation).IsValid()
}

func unescapeString(s string) string {
	if !strings.ContainsAny(s, `\$`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i])
			}
		case c == '$' && i+1 < len(s) && s[i+1] == '$':
			b.WriteByte('$')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func unescapeIndented(s string) string {
	if !strings.Contains(s, "''") && !strings.Contains(s, "$$") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "'''"):
			b.WriteString("''")
			i += 2
		case strings.HasPrefix(s[i:], "''$"):
			b.WriteByte('$')
			i += 2
		case strings.HasPrefix(s[i:], `''\`) && i+3 < len(s):
			switch s[i+3] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i+3])
			}
			i += 3
		case strings.HasPrefix(s[i:], "$$"):
			b.WriteByte('$')
			i++
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// stripIndent removes the common leading indentation of non-blank lines and
// a first line that holds only whitespace.
func stripIndent(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}
	if minIndent <= 0 {
		return strings.Join(lines, "\n")
	}
	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		} else {
			lines[i] = strings.TrimLeft(line, " ")
		}
	}
	return strings.Join(lines, "\n")
}
