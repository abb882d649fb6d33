package syntax

import (
	"fmt"
	"strings"
)

// Dump renders the subtree at id, one node or token per line, for
// debugging and the CLI parse command.
func (t *Tree) Dump(id NodeID, withTrivia bool) string {
	var b strings.Builder
	t.dump(&b, id, 0, withTrivia)
	return b.String()
}

func (t *Tree) dump(b *strings.Builder, id NodeID, depth int, withTrivia bool) {
	indent := strings.Repeat("  ", depth)
	sp := t.Span(id)
	fmt.Fprintf(b, "%s%s@%d..%d", indent, t.Kind(id), sp.Start, sp.End)
	if lk := t.LiteralKind(id); lk != LitNone {
		fmt.Fprintf(b, " (%s)", lk)
	}
	if t.IsRecursive(id) {
		b.WriteString(" (rec)")
	}
	b.WriteByte('\n')
	for _, el := range t.Children(id) {
		if el.IsNode() {
			t.dump(b, el.Node, depth+1, withTrivia)
			continue
		}
		tok := t.Token(el.Token)
		if tok.IsTrivia() && !withTrivia {
			continue
		}
		fmt.Fprintf(b, "%s  %s %q\n", indent, tok.Kind, tok.Text)
	}
}
