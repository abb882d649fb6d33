package lexer

import (
	"nixscan/internal/diag"
	"nixscan/internal/source"
	"nixscan/internal/token"
)

type modeKind uint8

const (
	modeNormal modeKind = iota
	modeString
	modeIndString
)

// mode is one frame of the lexing mode stack. Normal frames opened by "${"
// count nested braces so the matching "}" closes the interpolation.
type mode struct {
	kind   modeKind
	interp bool
	depth  int
}

// Lexer turns a source file into a flat stream of tokens, trivia included.
// It never fails: unknown input becomes Invalid tokens.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	modes  []mode
	done   bool
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		modes:  []mode{{kind: modeNormal}},
	}
}

// Tokenize lexes the whole file. The result always ends with an EOF token
// and the concatenated Text of all tokens equals the file content.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	toks := make([]token.Token, 0, len(file.Content)/3+1)
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

// Next returns the next token, trivia included. After EOF it keeps
// returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.cursor.EOF() {
		if !lx.done {
			lx.done = true
			lx.reportOpenModes()
		}
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	switch lx.top().kind {
	case modeString:
		return lx.scanStringPart()
	case modeIndString:
		return lx.scanIndStringPart()
	}

	ch := lx.cursor.Peek()
	switch {
	case isSpace(ch):
		return lx.scanWhitespace()
	case ch == '#':
		return lx.scanLineComment()
	case ch == '/' && lx.cursor.PeekAt(1) == '*':
		return lx.scanBlockComment()
	case ch == '"':
		lx.cursor.Bump()
		lx.push(mode{kind: modeString})
		return lx.emit(token.StringStart, lx.markBack(1))
	case ch == '\'' && lx.cursor.PeekAt(1) == '\'':
		lx.cursor.Advance(2)
		lx.push(mode{kind: modeIndString})
		return lx.emit(token.IndStringStart, lx.markBack(2))
	case ch == '<':
		if n := lx.matchSearchPath(); n > 0 {
			start := lx.cursor.Mark()
			lx.cursor.Advance(n)
			return lx.emit(token.SearchPath, start)
		}
	}

	if n := lx.matchPath(); n > 0 {
		start := lx.cursor.Mark()
		lx.cursor.Advance(n)
		return lx.emit(token.Path, start)
	}
	if n := lx.matchURI(); n > 0 {
		start := lx.cursor.Mark()
		lx.cursor.Advance(n)
		return lx.emit(token.URI, start)
	}

	switch {
	case isIdentStart(ch):
		return lx.scanIdentOrKeyword()
	case isDec(ch):
		return lx.scanNumber()
	default:
		return lx.scanOperatorOrPunct()
	}
}

func (lx *Lexer) top() *mode {
	return &lx.modes[len(lx.modes)-1]
}

func (lx *Lexer) push(m mode) {
	lx.modes = append(lx.modes, m)
}

func (lx *Lexer) pop() {
	if len(lx.modes) > 1 {
		lx.modes = lx.modes[:len(lx.modes)-1]
	}
}

func (lx *Lexer) reportOpenModes() {
	for i := len(lx.modes) - 1; i > 0; i-- {
		sp := lx.emptySpan()
		switch m := lx.modes[i]; {
		case m.kind == modeString || m.kind == modeIndString:
			lx.errLex(diag.LexUnterminatedString, sp, "unterminated string")
		case m.interp:
			lx.errLex(diag.LexUnterminatedInterp, sp, "unterminated interpolation")
		}
	}
}

func (lx *Lexer) emit(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// markBack returns a mark n bytes behind the cursor.
func (lx *Lexer) markBack(n uint32) Mark {
	return Mark(lx.cursor.Off - n)
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}
