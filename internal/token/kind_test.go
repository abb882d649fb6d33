package token_test

import (
	"testing"

	"nixscan/internal/token"
)

func TestLookupKeyword(t *testing.T) {
	cases := map[string]token.Kind{
		"let":     token.KwLet,
		"in":      token.KwIn,
		"rec":     token.KwRec,
		"inherit": token.KwInherit,
		"or":      token.KwOr,
		"assert":  token.KwAssert,
	}
	for lexeme, want := range cases {
		got, ok := token.LookupKeyword(lexeme)
		if !ok || got != want {
			t.Fatalf("LookupKeyword(%q) = %v,%v; want %v", lexeme, got, ok, want)
		}
	}
	for _, s := range []string{"Let", "true", "null", "import", "builtins"} {
		if _, ok := token.LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) returned ok=true", s)
		}
	}
}

func TestKindClassification(t *testing.T) {
	for _, k := range []token.Kind{token.Whitespace, token.LineComment, token.BlockComment} {
		if !k.IsTrivia() {
			t.Fatalf("%v should be trivia", k)
		}
	}
	for _, k := range []token.Kind{token.Ident, token.StringFragment, token.Invalid} {
		if k.IsTrivia() {
			t.Fatalf("%v must not be trivia", k)
		}
	}
	if !token.KwOr.IsKeyword() || token.Ident.IsKeyword() {
		t.Fatalf("keyword range is wrong")
	}
	if !(token.Token{Kind: token.Update}).IsPunctOrOp() {
		t.Fatalf("'//' should be an operator")
	}
	if !(token.Token{Kind: token.SearchPath}).IsLiteral() {
		t.Fatalf("search path should be a literal")
	}
}

func TestKindString(t *testing.T) {
	if got := token.Concat.String(); got != "Concat" {
		t.Fatalf("Concat.String() = %q", got)
	}
	if got := token.Kind(250).String(); got != "Kind(?)" {
		t.Fatalf("unknown kind String() = %q", got)
	}
}
