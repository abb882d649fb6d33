package report

import (
	"io"

	"nixscan/internal/source"
	"nixscan/internal/token"
)

type Token struct {
	Kind string `json:"kind" yaml:"kind"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
	Line int    `json:"line" yaml:"line"`
	Col  int    `json:"col" yaml:"col"`
	// Start and End are byte offsets.
	Start uint32 `json:"start" yaml:"start"`
	End   uint32 `json:"end" yaml:"end"`
}

// Tokens converts a token stream for encoding. Trivia is dropped unless
// withTrivia is set.
func Tokens(file *source.File, toks []token.Token, withTrivia bool) []Token {
	out := make([]Token, 0, len(toks))
	for _, tok := range toks {
		if tok.IsTrivia() && !withTrivia {
			continue
		}
		pos := file.Position(tok.Span.Start)
		out = append(out, Token{
			Kind:  tok.Kind.String(),
			Text:  tok.Text,
			Line:  int(pos.Line),
			Col:   int(pos.Col),
			Start: tok.Span.Start,
			End:   tok.Span.End,
		})
	}
	return out
}

// WriteTokens выводит токены: text - по одному на строку, иначе JSON/YAML.
func WriteTokens(w io.Writer, format string, toks []Token) error {
	switch format {
	case "json":
		return WriteJSON(w, toks)
	case "yaml":
		return WriteYAML(w, toks)
	}
	tw := &textWriter{w: w}
	for i, tok := range toks {
		tw.printf("%4d: %-15s", i+1, tok.Kind)
		if tok.Text != "" {
			tw.printf(" %q", tok.Text)
		}
		tw.printf(" at %d:%d\n", tok.Line, tok.Col)
	}
	return tw.err
}
