package edit

import (
	"fmt"
	"regexp"
	"strings"

	"nixscan/internal/parser"
	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_'-]*$`)

// Quote renders s as a Nix string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '$':
			if i+1 < len(s) && s[i+1] == '{' {
				b.WriteString(`\$`)
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// SplitPath splits a dotted attribute path. Segments are taken literally;
// use a []string path through the *Path variants for names containing dots.
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	segs := strings.Split(path, ".")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

// renderPath writes segments back as source, quoting any that are not plain
// identifiers.
func renderPath(segs []string) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		if _, kw := token.LookupKeyword(s); identRe.MatchString(s) && !kw {
			parts[i] = s
		} else {
			parts[i] = Quote(s)
		}
	}
	return strings.Join(parts, ".")
}

// graftExpr parses value and copies the expression into t.
func graftExpr(t *syntax.Tree, value string) (syntax.NodeID, error) {
	src, id, err := parser.ParseFragment(value)
	if err != nil {
		return syntax.NoNodeID, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return t.Graft(src, id), nil
}

// graftListElement is graftExpr for list slots: expressions that cannot
// stand alone between brackets are parenthesised.
func graftListElement(t *syntax.Tree, value string) (syntax.NodeID, error) {
	src, id, err := parser.ParseFragment(value)
	if err != nil {
		return syntax.NoNodeID, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	switch src.Kind(id) {
	case syntax.KindLiteral, syntax.KindString, syntax.KindPath, syntax.KindIdent,
		syntax.KindAttrSet, syntax.KindList, syntax.KindSelect, syntax.KindParen:
		return t.Graft(src, id), nil
	}
	return graftExpr(t, "("+value+")")
}

// graftBinding builds "path = value;" in t.
func graftBinding(t *syntax.Tree, segs []string, value string) (syntax.NodeID, error) {
	if _, _, err := parser.ParseFragment(value); err != nil {
		return syntax.NoNodeID, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	src, set, err := parser.ParseFragment("{ " + renderPath(segs) + " = " + value + "; }")
	if err != nil {
		return syntax.NoNodeID, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	bindings := src.Bindings(set)
	if len(bindings) != 1 {
		return syntax.NoNodeID, fmt.Errorf("%w: %q", ErrInvalidValue, value)
	}
	return t.Graft(src, bindings[0].Node), nil
}
