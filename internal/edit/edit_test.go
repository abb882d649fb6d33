package edit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nixscan/internal/edit"
	"nixscan/internal/parser"
	"nixscan/internal/query"
	"nixscan/internal/syntax"
)

func parse(t *testing.T, src string) (*syntax.Tree, syntax.NodeID) {
	t.Helper()
	sf := parser.ParseSource("test.nix", src)
	require.False(t, sf.HasErrors(), "diagnostics: %v", sf.Diagnostics)
	tree := sf.Tree.Clone()
	return tree, query.RootExpr(tree)
}

// reparses asserts the edited text is still valid Nix.
func reparses(t *testing.T, tree *syntax.Tree) {
	t.Helper()
	sf := parser.ParseSource("edited.nix", tree.String())
	require.False(t, sf.HasErrors(), "edited text does not parse: %q: %v", tree.String(), sf.Diagnostics)
}

func TestAddThenRemoveRestoresBindingCount(t *testing.T) {
	tree, set := parse(t, "{ a = 1; }")
	before := len(tree.Bindings(set))

	prev, err := edit.AddAttribute(tree, set, "b", "2")
	require.NoError(t, err)
	assert.False(t, prev.IsValid())
	assert.Len(t, tree.Bindings(set), before+1)
	assert.Equal(t, "{ a = 1; b = 2; }", tree.String())

	prev, err = edit.RemoveAttribute(tree, set, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", tree.Text(prev))
	assert.Len(t, tree.Bindings(set), before)
	assert.Equal(t, "{ a = 1; }", tree.String())
}

func TestAddAttributeKeepsIndentation(t *testing.T) {
	tree, set := parse(t, "{\n  a = 1;\n  b = \"two\";\n}\n")
	_, err := edit.AddAttribute(tree, set, "c", "true")
	require.NoError(t, err)
	assert.Equal(t, "{\n  a = 1;\n  b = \"two\";\n  c = true;\n}\n", tree.String())
	reparses(t, tree)
}

func TestAddAttributeUpserts(t *testing.T) {
	tree, set := parse(t, "{ a = 1; }")
	prev, err := edit.AddAttribute(tree, set, "a", "2")
	require.NoError(t, err)
	require.True(t, prev.IsValid())
	assert.Equal(t, "1", tree.Text(prev))
	assert.Equal(t, "{ a = 2; }", tree.String())
}

func TestAddAttributeIntoNestedSet(t *testing.T) {
	src := `{
  inputs = {
    nixpkgs.url = "github:NixOS/nixpkgs";
  };
  outputs = { self, ... }: { };
}`
	tree, set := parse(t, src)
	_, err := edit.AddAttribute(tree, set, "inputs.foo.url", edit.Quote("github:a/b"))
	require.NoError(t, err)
	want := `{
  inputs = {
    nixpkgs.url = "github:NixOS/nixpkgs";
    foo.url = "github:a/b";
  };
  outputs = { self, ... }: { };
}`
	assert.Equal(t, want, tree.String())
	reparses(t, tree)

	v, ok := query.ExtractStringValue(tree, query.GetAttributeValue(tree, set, "inputs.foo.url"))
	require.True(t, ok)
	assert.Equal(t, "github:a/b", v)
}

func TestAddFlakeInputFollowsFlatStyle(t *testing.T) {
	src := "{\n  inputs.nixpkgs.url = \"github:NixOS/nixpkgs\";\n  outputs = _: { };\n}"
	tree, _ := parse(t, src)
	_, err := edit.AddFlakeInput(tree, "home-manager", "github:nix-community/home-manager")
	require.NoError(t, err)
	want := "{\n  inputs.nixpkgs.url = \"github:NixOS/nixpkgs\";\n" +
		"  inputs.home-manager.url = \"github:nix-community/home-manager\";\n  outputs = _: { };\n}"
	assert.Equal(t, want, tree.String())
	reparses(t, tree)
}

func TestUpdateAttribute(t *testing.T) {
	tree, set := parse(t, "{ a.b = 1; c = { d = 2; }; }")

	prev, err := edit.UpdateAttribute(tree, set, "c.d", "3")
	require.NoError(t, err)
	assert.Equal(t, "2", tree.Text(prev))

	prev, err = edit.UpdateAttribute(tree, set, "a.b", "[ ]")
	require.NoError(t, err)
	assert.Equal(t, "1", tree.Text(prev))

	prev, err = edit.UpdateAttribute(tree, set, "missing", "0")
	require.NoError(t, err)
	assert.False(t, prev.IsValid())
	assert.Equal(t, "{ a.b = [ ]; c = { d = 3; }; }", tree.String())
}

func TestRemoveAttribute(t *testing.T) {
	tree, set := parse(t, "{\n  a = 1; # keep\n  b = 2;\n}")
	prev, err := edit.RemoveAttribute(tree, set, "nope")
	require.NoError(t, err)
	assert.False(t, prev.IsValid())

	_, err = edit.RemoveAttribute(tree, set, "b")
	require.NoError(t, err)
	assert.Equal(t, "{\n  a = 1; # keep\n}", tree.String())
	reparses(t, tree)
}

func TestRemoveInheritedName(t *testing.T) {
	tree, set := parse(t, "{ inherit a b; c = 1; }")
	prev, err := edit.RemoveAttribute(tree, set, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", tree.Text(prev))
	assert.Equal(t, "{ inherit b; c = 1; }", tree.String())

	_, err = edit.RemoveAttribute(tree, set, "b")
	require.NoError(t, err)
	assert.Equal(t, "{ c = 1; }", tree.String())
}

func TestTypeMismatch(t *testing.T) {
	listTree, list := parse(t, "[ 1 ]")
	_, err := edit.AddAttribute(listTree, list, "a", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, edit.ErrTypeMismatch))

	var me *edit.MutationError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, syntax.KindList, me.Got)

	tree, set := parse(t, "{ }")
	_, err = edit.AddListElement(tree, set, "1")
	assert.ErrorIs(t, err, edit.ErrTypeMismatch)
	_, err = edit.RemoveListElement(tree, set, 0)
	assert.ErrorIs(t, err, edit.ErrTypeMismatch)
	_, err = edit.RemoveAttribute(listTree, list, "a")
	assert.ErrorIs(t, err, edit.ErrTypeMismatch)
}

func TestInvalidInput(t *testing.T) {
	tree, set := parse(t, "{ }")
	_, err := edit.AddAttribute(tree, set, "a..b", "1")
	assert.ErrorIs(t, err, edit.ErrInvalidPath)
	_, err = edit.AddAttribute(tree, set, "a", "{ broken")
	assert.ErrorIs(t, err, edit.ErrInvalidValue)
	assert.Equal(t, "{ }", tree.String())
}

func TestAddToEmptySet(t *testing.T) {
	for _, src := range []string{"{ }", "{}"} {
		tree, set := parse(t, src)
		_, err := edit.AddAttribute(tree, set, "x", "1")
		require.NoError(t, err)
		assert.Equal(t, "{ x = 1; }", tree.String())
	}
}

func TestQuotedNames(t *testing.T) {
	tree, set := parse(t, "{ }")
	_, err := edit.AddAttributePath(tree, set, []string{"with space", "in"}, "1")
	require.NoError(t, err)
	assert.Equal(t, `{ "with space"."in" = 1; }`, tree.String())
	reparses(t, tree)
}

func TestListElements(t *testing.T) {
	tree, list := parse(t, "[ 1 2 ]")
	_, err := edit.AddListElement(tree, list, "pkgs.hello")
	require.NoError(t, err)
	_, err = edit.AddListElement(tree, list, "f x")
	require.NoError(t, err)
	assert.Equal(t, "[ 1 2 pkgs.hello (f x) ]", tree.String())

	prev, err := edit.RemoveListElement(tree, list, 0)
	require.NoError(t, err)
	assert.Equal(t, "1", tree.Text(prev))
	assert.Equal(t, "[ 2 pkgs.hello (f x) ]", tree.String())

	prev, err = edit.RemoveListElement(tree, list, 10)
	require.NoError(t, err)
	assert.False(t, prev.IsValid())
	reparses(t, tree)
}

func TestListKeepsLayout(t *testing.T) {
	tree, list := parse(t, "[\n  ./a.nix\n]")
	_, err := edit.AddListElement(tree, list, "./b.nix")
	require.NoError(t, err)
	assert.Equal(t, "[\n  ./a.nix\n  ./b.nix\n]", tree.String())

	tree, list = parse(t, "[]")
	_, err = edit.AddListElement(tree, list, `"x"`)
	require.NoError(t, err)
	assert.Equal(t, `[ "x" ]`, tree.String())
}

func TestTransformNodes(t *testing.T) {
	tree, _ := parse(t, "[ 1 2 (3 + 4) ]")
	zero, zid, err := parser.ParseFragment("0")
	require.NoError(t, err)

	n := edit.TransformNodes(tree, tree.Root, func(id syntax.NodeID) syntax.NodeID {
		if tree.Kind(id) == syntax.KindLiteral {
			return tree.Graft(zero, zid)
		}
		return syntax.NoNodeID
	})
	assert.Equal(t, 4, n)
	assert.Equal(t, "[ 0 0 (0 + 0) ]", tree.String())
}

func TestReplaceNodes(t *testing.T) {
	tree, _ := parse(t, "map f [ x ]")
	isF := func(id syntax.NodeID) bool { return tree.IdentName(id) == "f" }

	n, err := edit.ReplaceNodes(tree, tree.Root, isF, func(syntax.NodeID) (string, error) {
		return "g y", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "map (g y) [ x ]", tree.String())
	reparses(t, tree)

	isX := func(id syntax.NodeID) bool { return tree.IdentName(id) == "x" }
	n, err = edit.ReplaceNodes(tree, tree.Root, isX, func(syntax.NodeID) (string, error) {
		return "{ broken", nil
	})
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, edit.ErrInvalidValue)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"a\"b\${c}\n$d"`, edit.Quote("a\"b${c}\n$d"))
	tree, _ := parse(t, edit.Quote("tab\there \\ ${x}"))
	v, ok := query.ExtractStringValue(tree, query.RootExpr(tree))
	require.True(t, ok)
	assert.Equal(t, "tab\there \\ ${x}", v)
}
