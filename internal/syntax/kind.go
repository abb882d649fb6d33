package syntax

// Kind classifies syntax nodes.
type Kind uint8

const (
	KindRoot Kind = iota
	// KindError wraps tokens the parser skipped while recovering.
	KindError
	KindLiteral
	KindString
	KindPath
	KindIdent
	KindAttrSet
	KindList
	KindLambda
	KindApply
	KindLetIn
	KindIfElse
	KindWith
	KindAssert
	KindBinaryOp
	KindUnaryOp
	KindSelect
	KindHasAttr
	// KindImport is an application whose callee is the identifier import.
	KindImport
	KindInherit
	// KindInheritFrom is the parenthesised source of inherit (src) a b;
	KindInheritFrom
	KindParen
	KindBinding
	KindAttrPath
	// KindDynamic is a ${...} attribute name.
	KindDynamic
	// KindInterpolation is a ${...} inside a string or path.
	KindInterpolation
	KindPattern
	KindPatternEntry
)

var kindNames = [...]string{
	KindRoot:          "Root",
	KindError:         "Error",
	KindLiteral:       "Literal",
	KindString:        "String",
	KindPath:          "Path",
	KindIdent:         "Ident",
	KindAttrSet:       "AttrSet",
	KindList:          "List",
	KindLambda:        "Lambda",
	KindApply:         "Apply",
	KindLetIn:         "LetIn",
	KindIfElse:        "IfElse",
	KindWith:          "With",
	KindAssert:        "Assert",
	KindBinaryOp:      "BinaryOp",
	KindUnaryOp:       "UnaryOp",
	KindSelect:        "Select",
	KindHasAttr:       "HasAttr",
	KindImport:        "Import",
	KindInherit:       "Inherit",
	KindInheritFrom:   "InheritFrom",
	KindParen:         "Paren",
	KindBinding:       "Binding",
	KindAttrPath:      "AttrPath",
	KindDynamic:       "Dynamic",
	KindInterpolation: "Interpolation",
	KindPattern:       "Pattern",
	KindPatternEntry:  "PatternEntry",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsExpr reports whether nodes of this kind can appear in expression position.
func (k Kind) IsExpr() bool {
	switch k {
	case KindLiteral, KindString, KindPath, KindIdent, KindAttrSet, KindList,
		KindLambda, KindApply, KindLetIn, KindIfElse, KindWith, KindAssert,
		KindBinaryOp, KindUnaryOp, KindSelect, KindHasAttr, KindImport, KindParen, KindError:
		return true
	}
	return false
}

// LiteralKind is the derived type of a Literal node.
type LiteralKind uint8

const (
	LitNone LiteralKind = iota
	LitInt
	LitFloat
	LitBool
	LitNull
)

func (k LiteralKind) String() string {
	switch k {
	case LitInt:
		return "Int"
	case LitFloat:
		return "Float"
	case LitBool:
		return "Bool"
	case LitNull:
		return "Null"
	}
	return "None"
}
