package parser

import (
	"fmt"
	"slices"

	"nixscan/internal/diag"
	"nixscan/internal/source"
	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

// peekN returns the n-th significant token ahead (0 is the next one).
func (p *Parser) peekN(n int) token.Token {
	idx := p.si + n
	if idx >= len(p.sig) {
		idx = len(p.sig) - 1
	}
	return p.toks[p.sig[idx]]
}

func (p *Parser) peek() token.Token { return p.peekN(0) }

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// rawPeek returns the next token without skipping trivia.
func (p *Parser) rawPeek() token.Token {
	return p.toks[p.pos]
}

// flushTrivia moves pending trivia into the current node.
func (p *Parser) flushTrivia() {
	next := p.sig[min(p.si, len(p.sig)-1)]
	for p.pos < next {
		p.b.Token(p.toks[p.pos])
		p.pos++
	}
}

// bump adds the next significant token (and the trivia before it) to the
// current node. EOF is never added.
func (p *Parser) bump() token.Token {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return tok
	}
	p.flushTrivia()
	p.b.Token(tok)
	p.pos++
	p.si++
	p.lastSpan = tok.Span
	return tok
}

// start opens a node after flushing leading trivia into the parent.
func (p *Parser) start(kind syntax.Kind) {
	p.flushTrivia()
	p.b.StartNode(kind)
}

func (p *Parser) finish() {
	p.b.FinishNode()
}

func (p *Parser) checkpoint() syntax.Checkpoint {
	p.flushTrivia()
	return p.b.Checkpoint()
}

// expect consumes a token of kind k or reports code.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) bool {
	if p.at(k) {
		p.bump()
		return true
	}
	p.err(code, fmt.Sprintf("%s, got %s", msg, describe(p.peek())))
	return false
}

// expectClosing is expect for closing delimiters: on a mismatch the tokens
// up to the next closer or ';' are wrapped in an Error node, and the
// expected closer is consumed if that is where skipping stopped.
func (p *Parser) expectClosing(closer token.Kind, code diag.Code, msg string) bool {
	if p.at(closer) {
		p.bump()
		return true
	}
	p.err(code, fmt.Sprintf("%s, got %s", msg, describe(p.peek())))
	p.skipUntil(false, closer, token.Semi, token.KwIn, token.RParen, token.RBrace, token.RBracket)
	if p.at(closer) {
		p.bump()
	}
	return false
}

// skipUntil wraps tokens in an Error node until one of stops is found at
// nesting level zero or EOF. With force at least one token is consumed.
func (p *Parser) skipUntil(force bool, stops ...token.Kind) {
	if p.at(token.EOF) {
		return
	}
	if !force && slices.Contains(stops, p.peek().Kind) {
		return
	}
	p.start(syntax.KindError)
	depth := 0
	first := true
	for !p.at(token.EOF) {
		k := p.peek().Kind
		if depth == 0 && slices.Contains(stops, k) && !(force && first) {
			break
		}
		switch k {
		case token.LParen, token.LBrace, token.LBracket, token.InterpStart:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			if depth > 0 {
				depth--
			}
		}
		p.bump()
		first = false
	}
	p.finish()
}

// getDiagnosticSpan returns the span to blame: the next token, or the end of
// the last consumed one when the next token is an empty EOF.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && peek.Span.Empty() && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if sev == diag.SevError && p.opts.MaxErrors > 0 && p.opts.CurrentErrors > p.opts.MaxErrors {
		return false
	}
	d := diag.New(sev, code, sp, msg)
	p.diags = append(p.diags, d)
	if p.opts.Reporter != nil {
		p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
	}
	return true
}

// enter guards recursion depth; callers must call leave when it returns true.
func (p *Parser) enter() bool {
	if p.depth >= p.opts.MaxDepth {
		if !p.tooDeep {
			p.tooDeep = true
			p.err(diag.SynNestingTooDeep, fmt.Sprintf("expression nesting exceeds %d levels", p.opts.MaxDepth))
		}
		return false
	}
	p.depth++
	return true
}

func (p *Parser) leave() { p.depth-- }

func describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", tok.Text)
}
