package performance

// Type names a performance rule.
type Type uint8

const (
	TypeImportFromDerivation Type = iota
	TypeDeepNesting
	TypeListOperation
	TypeFlattenMap
	TypeOperatorChain
	TypeLetInLoop
	TypeManyImports
	TypeDeepAttrAccess
)

var typeNames = [...]string{
	TypeImportFromDerivation: "ImportFromDerivation",
	TypeDeepNesting:          "DeepNesting",
	TypeListOperation:        "InefficientListOperation",
	TypeFlattenMap:           "FlattenMap",
	TypeOperatorChain:        "LongOperatorChain",
	TypeLetInLoop:            "LetInLoop",
	TypeManyImports:          "ManyImports",
	TypeDeepAttrAccess:       "DeepAttributeAccess",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(?)"
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
