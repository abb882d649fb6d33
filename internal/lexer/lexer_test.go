package lexer_test

import (
	"strings"
	"testing"

	"nixscan/internal/diag"
	"nixscan/internal/lexer"
	"nixscan/internal/source"
	"nixscan/internal/token"
)

func tokenize(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.nix", []byte(src))
	bag := diag.NewBag(100)
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return toks, bag
}

// significant drops trivia and the trailing EOF.
func significant(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, tok := range toks {
		if tok.IsTrivia() || tok.Kind == token.EOF {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func joinText(toks []token.Token) string {
	var b strings.Builder
	for _, tok := range toks {
		b.WriteString(tok.Text)
	}
	return b.String()
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{"let", "let x = 1; in x", []token.Kind{
			token.KwLet, token.Ident, token.Assign, token.Int, token.Semi, token.KwIn, token.Ident,
		}},
		{"float", "1.5 2e3 3", []token.Kind{token.Float, token.Float, token.Int}},
		{"ident with dash and quote", "foo-bar x' or", []token.Kind{token.Ident, token.Ident, token.KwOr}},
		{"bools are idents", "true false null", []token.Kind{token.Ident, token.Ident, token.Ident}},
		{"paths", "./a.nix ../b /etc/nixos ~/cfg a/b", []token.Kind{
			token.Path, token.Path, token.Path, token.Path, token.Path,
		}},
		{"search path", "<nixpkgs> <nixpkgs/lib>", []token.Kind{token.SearchPath, token.SearchPath}},
		{"lt is not search path", "a < b", []token.Kind{token.Ident, token.Lt, token.Ident}},
		{"uri", "https://example.org/x.tar.gz", []token.Kind{token.URI}},
		{"operators", "++ // == != <= >= && || -> ... ? @ !", []token.Kind{
			token.Concat, token.Update, token.EqEq, token.NotEq, token.LtEq, token.GtEq,
			token.AndAnd, token.OrOr, token.Implies, token.Ellipsis, token.Question, token.At, token.Bang,
		}},
		{"division needs spaces", "a / b", []token.Kind{token.Ident, token.Slash, token.Ident}},
		{"pattern", "{ a ? 1, ... }@args: a", []token.Kind{
			token.LBrace, token.Ident, token.Question, token.Int, token.Comma, token.Ellipsis,
			token.RBrace, token.At, token.Ident, token.Colon, token.Ident,
		}},
		{"string", `"a${b}c"`, []token.Kind{
			token.StringStart, token.StringFragment, token.InterpStart, token.Ident, token.RBrace,
			token.StringFragment, token.StringEnd,
		}},
		{"nested interpolation braces", `"${ { a = 1; }.a }"`, []token.Kind{
			token.StringStart, token.InterpStart, token.LBrace, token.Ident, token.Assign, token.Int,
			token.Semi, token.RBrace, token.Dot, token.Ident, token.RBrace, token.StringEnd,
		}},
		{"string inside interpolation", `"x${"y${z}"}"`, []token.Kind{
			token.StringStart, token.StringFragment, token.InterpStart,
			token.StringStart, token.StringFragment, token.InterpStart, token.Ident, token.RBrace, token.StringEnd,
			token.RBrace, token.StringEnd,
		}},
		{"indented string", "''\n  echo ${x}\n''", []token.Kind{
			token.IndStringStart, token.StringFragment, token.InterpStart, token.Ident, token.RBrace,
			token.StringFragment, token.IndStringEnd,
		}},
		{"dynamic attr", "a.${b}", []token.Kind{token.Ident, token.Dot, token.InterpStart, token.Ident, token.RBrace}},
		{"interpolated path", "./pkgs/${name}", []token.Kind{token.Path, token.InterpStart, token.Ident, token.RBrace}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, bag := tokenize(t, tt.src)
			if bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics: %+v", bag.Items())
			}
			got := kinds(significant(toks))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("token %d: got %v, want %v (all: %v)", i, got[i], tt.want[i], got)
				}
			}
			if joined := joinText(toks); joined != tt.src {
				t.Fatalf("round-trip mismatch: %q != %q", joined, tt.src)
			}
		})
	}
}

func TestStringEscapes(t *testing.T) {
	toks, _ := tokenize(t, `"a\"b\${c}$${d}"`)
	sig := significant(toks)
	if len(sig) != 3 || sig[1].Kind != token.StringFragment {
		t.Fatalf("escapes must stay inside one fragment: %v", kinds(sig))
	}
	if sig[1].Text != `a\"b\${c}$${d}` {
		t.Fatalf("fragment text = %q", sig[1].Text)
	}

	toks, _ = tokenize(t, "'''''' ''$ ''\\n ''")
	sig = significant(toks)
	if got := kinds(sig); len(got) != 3 || got[2] != token.IndStringEnd {
		t.Fatalf("indented escapes: %v", got)
	}
}

func TestTriviaAndComments(t *testing.T) {
	src := "# header\r\n/* block */ x # tail"
	toks, _ := tokenize(t, src)
	want := []token.Kind{
		token.LineComment, token.Whitespace, token.BlockComment, token.Whitespace,
		token.Ident, token.Whitespace, token.LineComment, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if toks[0].Text != "# header\r" {
		t.Fatalf("line comment text = %q", toks[0].Text)
	}
}

func TestFormFeedAndVerticalTab(t *testing.T) {
	src := "a\f=\v1;\f\n"
	toks, bag := tokenize(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []token.Kind{
		token.Ident, token.Whitespace, token.Assign, token.Whitespace,
		token.Int, token.Semi, token.Whitespace, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if toks[6].Text != "\f\n" {
		t.Fatalf("trailing whitespace text = %q", toks[6].Text)
	}
}

func TestSpansMatchText(t *testing.T) {
	src := "{ a = \"x${y}\"; b = ./c; }"
	toks, _ := tokenize(t, src)
	for _, tok := range toks {
		if got := src[tok.Span.Start:tok.Span.End]; got != tok.Text {
			t.Fatalf("span %v covers %q, token text %q", tok.Span, got, tok.Text)
		}
	}
}

func TestNeverFails(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"unknown char", "a ` b", diag.LexUnknownChar},
		{"unicode garbage", "x = λ;", diag.LexUnknownChar},
		{"unterminated string", `"abc`, diag.LexUnterminatedString},
		{"unterminated indented string", "''abc", diag.LexUnterminatedString},
		{"unterminated comment", "/* abc", diag.LexUnterminatedBlockComment},
		{"unterminated interpolation", "a.${b", diag.LexUnterminatedInterp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, bag := tokenize(t, tt.src)
			if joined := joinText(toks); joined != tt.src {
				t.Fatalf("round-trip mismatch: %q != %q", joined, tt.src)
			}
			if toks[len(toks)-1].Kind != token.EOF {
				t.Fatalf("stream must end with EOF")
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %v, got %+v", tt.code, bag.Items())
			}
		})
	}
}

func TestUnknownRuneIsOneToken(t *testing.T) {
	toks, _ := tokenize(t, "λ")
	if len(toks) != 2 || toks[0].Kind != token.Invalid || toks[0].Text != "λ" {
		t.Fatalf("got %+v", toks)
	}
}

func TestNextAfterEOF(t *testing.T) {
	fs := source.NewFileSet()
	lx := lexer.New(fs.Get(fs.AddVirtual("x.nix", []byte("x"))), lexer.Options{})
	if tok := lx.Next(); tok.Kind != token.Ident {
		t.Fatalf("first token = %v", tok.Kind)
	}
	for range 3 {
		if tok := lx.Next(); tok.Kind != token.EOF {
			t.Fatalf("expected EOF, got %v", tok.Kind)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	toks, bag := tokenize(t, "")
	if len(toks) != 1 || toks[0].Kind != token.EOF || bag.Len() != 0 {
		t.Fatalf("got %+v / %+v", toks, bag.Items())
	}
}
