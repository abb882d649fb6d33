package parser

import (
	"nixscan/internal/diag"
	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

// parseAttrSet parses "{ ... }", "rec { ... }" and the legacy "let { ... }".
func (p *Parser) parseAttrSet() {
	p.start(syntax.KindAttrSet)
	if p.atOr(token.KwRec, token.KwLet) {
		p.bump()
	}
	if !p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'") {
		p.finish()
		return
	}
	p.parseBindings(token.RBrace)
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close attribute set")
	p.finish()
}

// parseBindings parses bindings and inherit clauses until end.
func (p *Parser) parseBindings(end token.Kind) {
	for !p.atOr(end, token.EOF) {
		switch {
		case p.at(token.KwInherit):
			p.parseInherit()
		case p.atAttrNameStart():
			p.parseBinding()
		default:
			if end == token.KwIn && p.at(token.RBrace) {
				return
			}
			p.err(diag.SynUnexpectedToken, "unexpected "+describe(p.peek())+" in bindings")
			p.skipUntil(true, token.Semi, end, token.RBrace, token.KwIn)
			if p.at(token.Semi) {
				p.bump()
			}
		}
	}
}

func (p *Parser) atAttrNameStart() bool {
	return p.atOr(token.Ident, token.KwOr, token.StringStart, token.InterpStart)
}

// parseBinding parses "a.b.c = value;".
func (p *Parser) parseBinding() {
	p.start(syntax.KindBinding)
	p.parseAttrPath()
	if !p.expect(token.Assign, diag.SynExpectAssign, "expected '=' after attribute name") {
		p.skipUntil(false, token.Semi, token.RBrace, token.KwIn)
		if p.at(token.Semi) {
			p.bump()
		}
		p.finish()
		return
	}
	p.parseExpr()
	p.expect(token.Semi, diag.SynExpectSemicolon, "expected ';' after binding")
	p.finish()
}

// parseInherit parses "inherit a b;" and "inherit (src) a b;".
func (p *Parser) parseInherit() {
	p.start(syntax.KindInherit)
	p.bump() // inherit
	if p.at(token.LParen) {
		p.start(syntax.KindInheritFrom)
		p.bump()
		p.parseExpr()
		p.expectClosing(token.RParen, diag.SynUnclosedParen, "expected ')'")
		p.finish()
	}
	for p.atOr(token.Ident, token.KwOr, token.StringStart) {
		p.parseAttrName()
	}
	p.expect(token.Semi, diag.SynExpectSemicolon, "expected ';' after inherit")
	p.finish()
}

// parseAttrPath parses "a.${b}.\"c\"".
func (p *Parser) parseAttrPath() {
	p.start(syntax.KindAttrPath)
	p.parseAttrName()
	for p.at(token.Dot) {
		p.bump()
		p.parseAttrName()
	}
	p.finish()
}

func (p *Parser) parseAttrName() {
	switch p.peek().Kind {
	case token.Ident, token.KwOr:
		p.parseLeaf(syntax.KindIdent)
	case token.StringStart:
		p.parseString()
	case token.InterpStart:
		p.start(syntax.KindDynamic)
		p.bump()
		p.parseExpr()
		p.expectClosing(token.RBrace, diag.SynUnclosedInterp, "expected '}' to close dynamic attribute")
		p.finish()
	default:
		p.err(diag.SynExpectAttrName, "expected attribute name, got "+describe(p.peek()))
	}
}
