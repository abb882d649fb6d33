package syntax_test

import (
	"strings"
	"testing"

	"nixscan/internal/parser"
	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

func parseExpr(t *testing.T, src string) (*syntax.SourceFile, syntax.NodeID) {
	t.Helper()
	sf := parser.ParseSource("test.nix", src)
	if sf.HasErrors() {
		t.Fatalf("unexpected errors parsing %q: %v", src, sf.Diagnostics)
	}
	nodes := sf.Tree.ChildNodes(sf.Tree.Root)
	if len(nodes) != 1 {
		t.Fatalf("expected one top-level node, got %d", len(nodes))
	}
	return sf, nodes[0]
}

func TestTextAndTrimmedText(t *testing.T) {
	src := "  # lead\n{ a = 1; }  \n"
	sf, set := parseExpr(t, src)
	if got := sf.Tree.String(); got != src {
		t.Fatalf("String() = %q", got)
	}
	if got := sf.Tree.TrimmedText(set); got != "{ a = 1; }" {
		t.Fatalf("TrimmedText = %q", got)
	}
	if got := sf.Tree.Text(set); got != "{ a = 1; }" {
		t.Fatalf("Text = %q", got)
	}
}

func TestBindingsProjection(t *testing.T) {
	sf, set := parseExpr(t, `rec { a.b = 1; "c d" = 2; ${x} = 3; inherit y; inherit (z) p q; }`)
	tree := sf.Tree
	if !tree.IsRecursive(set) {
		t.Fatalf("expected rec set")
	}
	bs := tree.Bindings(set)
	if len(bs) != 5 {
		t.Fatalf("expected 5 bindings, got %d", len(bs))
	}
	if got := bs[0].Path.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("path = %v", got)
	}
	if tree.LiteralKind(bs[0].Value) != syntax.LitInt {
		t.Fatalf("value kind = %v", tree.LiteralKind(bs[0].Value))
	}
	if got := bs[1].Path.String(); got != "c d" {
		t.Fatalf("string name = %q", got)
	}
	if seg := bs[2].Path.Segments[0]; !seg.Dynamic || seg.Name != "${x}" {
		t.Fatalf("dynamic segment = %+v", seg)
	}
	if bs[3].Inherit == nil || bs[3].Inherit.From.IsValid() || bs[3].Inherit.Attrs[0] != "y" {
		t.Fatalf("inherit = %+v", bs[3].Inherit)
	}
	in := bs[4].Inherit
	if in == nil || tree.IdentName(in.From) != "z" || strings.Join(in.Attrs, ",") != "p,q" {
		t.Fatalf("inherit from = %+v", in)
	}
}

func TestLetAndLambdaProjection(t *testing.T) {
	sf, lam := parseExpr(t, "{ a, b ? 2, ... }@args: let c = a; in c")
	tree := sf.Tree
	params := tree.LambdaParams(lam)
	if len(params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(params))
	}
	if params[0].Name != "a" || params[0].Kind != syntax.ParamField || params[0].Default.IsValid() {
		t.Fatalf("param a = %+v", params[0])
	}
	if params[1].Name != "b" || tree.LiteralKind(params[1].Default) != syntax.LitInt {
		t.Fatalf("param b = %+v", params[1])
	}
	if params[2].Name != "args" || params[2].Kind != syntax.ParamCapture {
		t.Fatalf("capture = %+v", params[2])
	}
	if !tree.HasEllipsis(tree.ChildOfKind(lam, syntax.KindPattern)) {
		t.Fatalf("expected ellipsis")
	}
	let := tree.LambdaBody(lam)
	if tree.Kind(let) != syntax.KindLetIn {
		t.Fatalf("body kind = %s", tree.Kind(let))
	}
	if got := tree.IdentName(tree.LetBody(let)); got != "c" {
		t.Fatalf("let body = %q", got)
	}
	if n := len(tree.Bindings(let)); n != 1 {
		t.Fatalf("let bindings = %d", n)
	}
}

func TestOperatorAndSelectParts(t *testing.T) {
	sf, sel := parseExpr(t, "pkgs.lib.x or (-1)")
	tree := sf.Tree
	subject, path, def := tree.SelectParts(sel)
	if tree.IdentName(subject) != "pkgs" || path.String() != "lib.x" {
		t.Fatalf("select = %q %q", tree.IdentName(subject), path.String())
	}
	neg := tree.Unparen(def)
	if tree.Kind(neg) != syntax.KindUnaryOp || tree.OperatorToken(neg) != token.Minus {
		t.Fatalf("default = %s", tree.Kind(neg))
	}

	sf, op := parseExpr(t, "a ++ b")
	lhs, rhs := sf.Tree.BinaryOperands(op)
	if sf.Tree.OperatorToken(op) != token.Concat || sf.Tree.IdentName(lhs) != "a" || sf.Tree.IdentName(rhs) != "b" {
		t.Fatalf("binary parts wrong: %s", sf.Tree.Dump(op, false))
	}
}

func TestStringValue(t *testing.T) {
	tests := []struct {
		src  string
		want string
		ok   bool
	}{
		{`"plain"`, "plain", true},
		{`"a\nb\"c"`, "a\nb\"c", true},
		{`"cost $${x}"`, "cost ${x}", true},
		{"''\n    line one\n      two\n  ''", "line one\n  two\n", true},
		{"''a ''${b} '''c''", "a ${b} ''c", true},
		{`"x${y}z"`, "", false},
		{"https://example.org/a", "https://example.org/a", true},
	}
	for _, tt := range tests {
		sf, id := parseExpr(t, tt.src)
		got, ok := sf.Tree.StringValue(id)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("StringValue(%s) = %q, %v; want %q, %v", tt.src, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLiteralKinds(t *testing.T) {
	tests := map[string]syntax.LiteralKind{
		"42":    syntax.LitInt,
		"4.2":   syntax.LitFloat,
		"true":  syntax.LitBool,
		"false": syntax.LitBool,
		"null":  syntax.LitNull,
	}
	for src, want := range tests {
		sf, id := parseExpr(t, src)
		if got := sf.Tree.LiteralKind(id); got != want {
			t.Fatalf("LiteralKind(%s) = %v, want %v", src, got, want)
		}
	}
}

func TestWalkAndAncestors(t *testing.T) {
	sf, set := parseExpr(t, "{ a = [ 1 2 ]; }")
	tree := sf.Tree
	var lits []syntax.NodeID
	tree.Walk(tree.Root, func(id syntax.NodeID) bool {
		if tree.Kind(id) == syntax.KindLiteral {
			lits = append(lits, id)
		}
		return true
	})
	if len(lits) != 2 {
		t.Fatalf("expected 2 literals, got %d", len(lits))
	}
	if !tree.Contains(set, lits[0]) {
		t.Fatalf("set should contain literal")
	}
	anc := tree.Ancestors(lits[0])
	if len(anc) == 0 || tree.Kind(anc[0]) != syntax.KindList || anc[len(anc)-1] != tree.Root {
		t.Fatalf("ancestors = %v", anc)
	}

	visited := 0
	tree.Walk(tree.Root, func(id syntax.NodeID) bool {
		visited++
		return tree.Kind(id) != syntax.KindAttrSet
	})
	if visited != 2 {
		t.Fatalf("pruned walk visited %d nodes", visited)
	}
}

func TestMutationPrimitives(t *testing.T) {
	sf, list := parseExpr(t, "[ 1 2 ]")
	tree := sf.Tree.Clone()

	frag, fid, err := parser.ParseFragment("3")
	if err != nil {
		t.Fatal(err)
	}
	copied := tree.Graft(frag, fid)
	if tree.Parent(copied).IsValid() {
		t.Fatalf("grafted node should be detached")
	}
	// children: "[" " " 1 " " 2 " " "]"; insert before the space ahead of "]"
	at := len(tree.Children(list)) - 2
	tree.InsertChild(list, at, syntax.TokenElem(tree.NewToken(token.Whitespace, " ")))
	tree.InsertChild(list, at+1, syntax.NodeElem(copied))
	if got := tree.String(); got != "[ 1 2 3 ]" {
		t.Fatalf("after insert: %q", got)
	}
	if sf.Tree.String() != "[ 1 2 ]" {
		t.Fatalf("clone must not alias the original: %q", sf.Tree.String())
	}
	if tree.Line(copied) != 0 {
		t.Fatalf("synthetic nodes have no line")
	}

	first := tree.ListElements(list)[0]
	repl := tree.Graft(frag, fid)
	if !tree.ReplaceNode(first, repl) {
		t.Fatalf("ReplaceNode failed")
	}
	if got := tree.String(); got != "[ 3 2 3 ]" {
		t.Fatalf("after replace: %q", got)
	}
	if tree.Parent(first).IsValid() {
		t.Fatalf("replaced node should be detached")
	}
	if !tree.Detach(repl) || tree.Detach(repl) {
		t.Fatalf("Detach should succeed exactly once")
	}
}

func TestEqualIgnoresTrivia(t *testing.T) {
	a, an := parseExpr(t, "{ a = 1; /* c */ b = [ 2 ]; }")
	b, bn := parseExpr(t, "{\n  a = 1;\n  b = [\n    2\n  ];\n}")
	c, cn := parseExpr(t, "{ a = 1; b = [ 3 ]; }")
	if !syntax.Equal(a.Tree, an, b.Tree, bn) {
		t.Fatalf("expected trees equal modulo trivia")
	}
	if syntax.Equal(a.Tree, an, c.Tree, cn) {
		t.Fatalf("expected trees to differ")
	}
}

func TestDumpShowsKinds(t *testing.T) {
	sf, set := parseExpr(t, "{ a = 1; }")
	out := sf.Tree.Dump(set, false)
	for _, want := range []string{"AttrSet", "Binding", "AttrPath", "Literal"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump missing %s:\n%s", want, out)
		}
	}
}
