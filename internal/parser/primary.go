package parser

import (
	"nixscan/internal/diag"
	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

func (p *Parser) parsePrimary() {
	if !p.enter() {
		p.skipUntil(true, token.Semi, token.RBrace, token.KwIn, token.RParen, token.RBracket)
		return
	}
	defer p.leave()

	tok := p.peek()
	switch tok.Kind {
	case token.Int, token.Float:
		p.parseLeaf(syntax.KindLiteral)
	case token.Ident:
		switch tok.Text {
		case "true", "false", "null":
			p.parseLeaf(syntax.KindLiteral)
		default:
			p.parseLeaf(syntax.KindIdent)
		}
	case token.KwOr:
		p.parseLeaf(syntax.KindIdent)
	case token.Path:
		p.parsePath()
	case token.SearchPath:
		p.parseLeaf(syntax.KindPath)
	case token.URI:
		p.parseLeaf(syntax.KindString)
	case token.StringStart, token.IndStringStart:
		p.parseString()
	case token.LParen:
		p.start(syntax.KindParen)
		p.bump()
		p.parseExpr()
		p.expectClosing(token.RParen, diag.SynUnclosedParen, "expected ')'")
		p.finish()
	case token.LBracket:
		p.parseList()
	case token.LBrace, token.KwRec:
		p.parseAttrSet()
	case token.KwLet:
		if p.peekN(1).Kind == token.LBrace {
			p.parseAttrSet()
		} else {
			p.parseExpr()
		}
	case token.KwWith, token.KwAssert, token.KwIf:
		p.parseExpr()
	default:
		p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
		p.start(syntax.KindError)
		if !isSyncToken(tok.Kind) {
			p.bump()
		}
		p.finish()
	}
}

// isSyncToken lists tokens an enclosing construct will want to see.
func isSyncToken(k token.Kind) bool {
	switch k {
	case token.Semi, token.RBrace, token.RBracket, token.RParen, token.KwIn,
		token.KwThen, token.KwElse, token.Comma, token.EOF, token.StringEnd, token.IndStringEnd:
		return true
	}
	return false
}

func (p *Parser) parseLeaf(kind syntax.Kind) {
	p.start(kind)
	p.bump()
	p.finish()
}

func (p *Parser) parseIdent() {
	p.parseLeaf(syntax.KindIdent)
}

// parsePath parses a path literal, including interpolated pieces written
// without spaces: ./pkgs/${name}/default.nix.
func (p *Parser) parsePath() {
	p.start(syntax.KindPath)
	p.bump()
	for {
		next := p.rawPeek()
		switch {
		case next.Kind == token.InterpStart:
			p.parseInterpolation()
		case next.Kind == token.Path && p.lastWasInterpolation():
			p.bump()
		default:
			p.finish()
			return
		}
	}
}

func (p *Parser) lastWasInterpolation() bool {
	prev := p.toks[p.pos-1]
	return prev.Kind == token.RBrace
}

// parseString parses "..." and ''...'' with their interpolations.
func (p *Parser) parseString() {
	p.start(syntax.KindString)
	open := p.bump()
	closer := token.StringEnd
	if open.Kind == token.IndStringStart {
		closer = token.IndStringEnd
	}
	for {
		switch p.rawPeek().Kind {
		case token.StringFragment:
			p.bump()
		case token.InterpStart:
			p.parseInterpolation()
		case closer:
			p.bump()
			p.finish()
			return
		default:
			p.err(diag.SynUnclosedString, "unterminated string")
			p.finish()
			return
		}
	}
}

func (p *Parser) parseInterpolation() {
	p.start(syntax.KindInterpolation)
	p.bump() // ${
	p.parseExpr()
	p.expectClosing(token.RBrace, diag.SynUnclosedInterp, "expected '}' to close interpolation")
	p.finish()
}

func (p *Parser) parseList() {
	p.start(syntax.KindList)
	p.bump() // [
	for !p.atOr(token.RBracket, token.EOF) {
		if p.atArgStart() {
			p.parseSelect()
			continue
		}
		if p.atOr(token.RBrace, token.RParen, token.KwIn) {
			break
		}
		p.err(diag.SynUnexpectedToken, "unexpected "+describe(p.peek())+" in list")
		p.skipUntil(true, token.RBracket, token.RBrace, token.RParen)
	}
	p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close list")
	p.finish()
}
