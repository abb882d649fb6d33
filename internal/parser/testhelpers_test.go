package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"nixscan/internal/diag"
	"nixscan/internal/parser"
	"nixscan/internal/syntax"
)

func parse(t *testing.T, src string) *syntax.SourceFile {
	t.Helper()
	return parser.ParseSource("test.nix", src)
}

// sexpr renders a subtree compactly: leaves as (Kind text), other nodes as
// (Kind child...) with significant tokens inline.
func sexpr(tree *syntax.Tree, id syntax.NodeID) string {
	switch tree.Kind(id) {
	case syntax.KindIdent, syntax.KindLiteral:
		return fmt.Sprintf("(%s %s)", tree.Kind(id), tree.TrimmedText(id))
	}
	parts := []string{tree.Kind(id).String()}
	for _, el := range tree.Children(id) {
		if el.IsNode() {
			parts = append(parts, sexpr(tree, el.Node))
			continue
		}
		tok := tree.Token(el.Token)
		if tok.IsTrivia() {
			continue
		}
		parts = append(parts, tok.Text)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// rootExpr returns the sexpr of the single top-level expression.
func rootExpr(t *testing.T, sf *syntax.SourceFile) string {
	t.Helper()
	children := sf.Tree.ChildNodes(sf.Tree.Root)
	if len(children) != 1 {
		t.Fatalf("expected one top-level node, got %d", len(children))
	}
	return sexpr(sf.Tree, children[0])
}

func diagnosticsSummary(diags []diag.Diagnostic) string {
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func hasCode(diags []diag.Diagnostic, code diag.Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}
