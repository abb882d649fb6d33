package parser

import (
	"nixscan/internal/diag"
	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

// parseExpr parses a full expression, including the forms that extend as
// far right as possible: lambdas, let, with, assert and if.
func (p *Parser) parseExpr() {
	if !p.enter() {
		p.skipUntil(true, token.Semi, token.RBrace, token.KwIn, token.RParen, token.RBracket)
		return
	}
	defer p.leave()

	switch {
	case p.at(token.KwLet) && p.peekN(1).Kind != token.LBrace:
		p.parseLet()
	case p.at(token.KwWith):
		p.parseWithOrAssert(syntax.KindWith)
	case p.at(token.KwAssert):
		p.parseWithOrAssert(syntax.KindAssert)
	case p.at(token.KwIf):
		p.parseIf()
	case p.isLambdaStart():
		p.parseLambda()
	default:
		p.parseBinary(0)
	}
}

// isLambdaStart looks ahead for "x:", "x @ {", "{ }:", "{ a, ", "{ a ? ",
// "{ a }:" and "{ ...".
func (p *Parser) isLambdaStart() bool {
	switch p.peek().Kind {
	case token.Ident:
		next := p.peekN(1).Kind
		return next == token.Colon || next == token.At
	case token.LBrace:
		switch p.peekN(1).Kind {
		case token.RBrace:
			after := p.peekN(2).Kind
			return after == token.Colon || after == token.At
		case token.Ellipsis:
			return true
		case token.Ident:
			switch p.peekN(2).Kind {
			case token.Comma, token.Question:
				return true
			case token.RBrace:
				after := p.peekN(3).Kind
				return after == token.Colon || after == token.At
			}
		}
	}
	return false
}

func (p *Parser) parseLambda() {
	p.start(syntax.KindLambda)
	if p.at(token.Ident) {
		p.parseIdent()
		if p.at(token.At) {
			p.bump()
			if p.at(token.LBrace) {
				p.parsePattern()
			} else {
				p.err(diag.SynBadPattern, "expected '{' after '@'")
			}
		}
	} else {
		p.parsePattern()
		if p.at(token.At) {
			p.bump()
			if p.at(token.Ident) {
				p.parseIdent()
			} else {
				p.err(diag.SynExpectIdentifier, "expected identifier after '@'")
			}
		}
	}
	if p.expect(token.Colon, diag.SynExpectColon, "expected ':' after lambda parameters") || p.atExprStart() {
		p.parseExpr()
	}
	p.finish()
}

// parsePattern parses "{ a, b ? default, ... }".
func (p *Parser) parsePattern() {
	p.start(syntax.KindPattern)
	p.bump() // {
	for !p.atOr(token.RBrace, token.EOF) {
		switch {
		case p.at(token.Ellipsis):
			p.bump()
		case p.at(token.Ident):
			p.start(syntax.KindPatternEntry)
			p.parseIdent()
			if p.at(token.Question) {
				p.bump()
				p.parseExpr()
			}
			p.finish()
		default:
			p.err(diag.SynBadPattern, "expected parameter name in pattern, got "+describe(p.peek()))
			p.skipUntil(true, token.Comma, token.RBrace, token.Colon)
			if p.at(token.Colon) {
				p.finish()
				return
			}
		}
		if p.at(token.Comma) {
			p.bump()
		} else if !p.at(token.RBrace) {
			p.err(diag.SynBadPattern, "expected ',' or '}' in pattern, got "+describe(p.peek()))
			p.skipUntil(false, token.Comma, token.RBrace, token.Colon)
			if p.at(token.Comma) {
				p.bump()
			} else if !p.at(token.RBrace) {
				break
			}
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close pattern")
	p.finish()
}

func (p *Parser) parseLet() {
	p.start(syntax.KindLetIn)
	p.bump() // let
	p.parseBindings(token.KwIn)
	if p.expect(token.KwIn, diag.SynExpectIn, "expected 'in' after let bindings") || p.atExprStart() {
		p.parseExpr()
	}
	p.finish()
}

// parseWithOrAssert parses "with e; body" and "assert e; body".
func (p *Parser) parseWithOrAssert(kind syntax.Kind) {
	p.start(kind)
	p.bump()
	p.parseExpr()
	if p.expect(token.Semi, diag.SynExpectSemicolon, "expected ';'") || p.atExprStart() {
		p.parseExpr()
	}
	p.finish()
}

func (p *Parser) parseIf() {
	p.start(syntax.KindIfElse)
	p.bump() // if
	p.parseExpr()
	if p.expect(token.KwThen, diag.SynExpectThen, "expected 'then'") || p.atExprStart() {
		p.parseExpr()
	}
	if p.expect(token.KwElse, diag.SynExpectElse, "expected 'else'") || p.atExprStart() {
		p.parseExpr()
	}
	p.finish()
}

// parseBinary is precedence climbing over the operator table. "?" is a
// postfix operator taking an attribute path.
func (p *Parser) parseBinary(minPrec int) {
	cp := p.checkpoint()
	p.parseUnary()
	for {
		op := p.peek().Kind
		prec, right := binaryPrec(op)
		if prec < 0 || prec < minPrec {
			return
		}
		if op == token.Question {
			p.b.StartNodeAt(cp, syntax.KindHasAttr)
			p.bump()
			p.parseAttrPath()
			p.finish()
			continue
		}
		p.b.StartNodeAt(cp, syntax.KindBinaryOp)
		p.bump()
		next := prec + 1
		if right {
			next = prec
		}
		if p.atExprStart() {
			p.parseBinary(next)
		} else {
			p.err(diag.SynExpectExpression, "expected expression after operator, got "+describe(p.peek()))
		}
		p.finish()
	}
}

func (p *Parser) parseUnary() {
	if !p.atOr(token.Minus, token.Bang) {
		p.parseApply()
		return
	}
	if !p.enter() {
		p.skipUntil(true, token.Semi, token.RBrace, token.KwIn)
		return
	}
	defer p.leave()
	p.start(syntax.KindUnaryOp)
	p.bump()
	p.parseUnary()
	p.finish()
}

// parseApply parses juxtaposition "f a b". An application whose callee is
// the identifier import becomes an Import node.
func (p *Parser) parseApply() {
	cp := p.checkpoint()
	callee := p.peek()
	isImport := callee.Kind == token.Ident && callee.Text == "import"
	p.parseSelect()
	first := true
	for p.atArgStart() {
		kind := syntax.KindApply
		if first && isImport {
			kind = syntax.KindImport
		}
		p.b.StartNodeAt(cp, kind)
		p.parseSelect()
		p.finish()
		first = false
	}
}

// parseSelect parses "e.a.b or default".
func (p *Parser) parseSelect() {
	cp := p.checkpoint()
	p.parsePrimary()
	if !p.at(token.Dot) {
		return
	}
	p.b.StartNodeAt(cp, syntax.KindSelect)
	p.bump() // .
	p.parseAttrPath()
	if p.at(token.KwOr) {
		p.bump()
		if p.atArgStart() {
			p.parseSelect()
		} else {
			p.err(diag.SynExpectExpression, "expected default value after 'or'")
		}
	}
	p.finish()
}

// atArgStart reports whether the next token can begin an application
// argument or a list element.
func (p *Parser) atArgStart() bool {
	switch p.peek().Kind {
	case token.Ident, token.Int, token.Float, token.Path, token.SearchPath, token.URI,
		token.StringStart, token.IndStringStart, token.LParen, token.LBrace, token.LBracket, token.KwRec:
		return true
	}
	return false
}

// atExprStart reports whether the next token can begin any expression.
func (p *Parser) atExprStart() bool {
	if p.atArgStart() {
		return true
	}
	switch p.peek().Kind {
	case token.KwLet, token.KwWith, token.KwAssert, token.KwIf, token.Minus, token.Bang, token.KwOr:
		return true
	}
	return false
}
