package token

var keywords = map[string]Kind{
	"let":     KwLet,
	"in":      KwIn,
	"rec":     KwRec,
	"with":    KwWith,
	"inherit": KwInherit,
	"if":      KwIf,
	"then":    KwThen,
	"else":    KwElse,
	"assert":  KwAssert,
	"or":      KwOr,
}

// LookupKeyword returns the keyword kind for ident, if it is one.
// Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
