package parser

import (
	"nixscan/internal/token"
)

// Таблица приоритетов для бинарных операторов.
// Чем больше число, тем выше приоритет.
const (
	precUpdate     = 1  // //
	precImplies    = 2  // ->
	precLogicalOr  = 3  // ||
	precLogicalAnd = 4  // &&
	precEquality   = 5  // == !=
	precComparison = 6  // < <= > >=
	precAdditive   = 7  // + -
	precMultiply   = 8  // * /
	precConcat     = 9  // ++
	precHasAttr    = 10 // ?
)

// binaryPrec returns the precedence and right-associativity of an infix
// operator, or -1 when kind is not one.
func binaryPrec(kind token.Kind) (int, bool) {
	switch kind {
	case token.Update:
		return precUpdate, true
	case token.Implies:
		return precImplies, true
	case token.OrOr:
		return precLogicalOr, false
	case token.AndAnd:
		return precLogicalAnd, false
	case token.EqEq, token.NotEq:
		return precEquality, false
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison, false
	case token.Plus, token.Minus:
		return precAdditive, false
	case token.Star, token.Slash:
		return precMultiply, false
	case token.Concat:
		return precConcat, true
	case token.Question:
		return precHasAttr, false
	default:
		return -1, false
	}
}
