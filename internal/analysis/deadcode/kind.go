package deadcode

// Type names a dead-code category.
type Type uint8

const (
	TypeUnusedVariable Type = iota
	TypeUnusedParameter
	TypeUnusedImport
	TypeUnreachableCode
	TypeRedundantDefinition
	TypeUnusedFile
)

var typeNames = [...]string{
	TypeUnusedVariable:      "UnusedVariable",
	TypeUnusedParameter:     "UnusedParameter",
	TypeUnusedImport:        "UnusedImport",
	TypeUnreachableCode:     "UnreachableCode",
	TypeRedundantDefinition: "RedundantDefinition",
	TypeUnusedFile:          "UnusedFile",
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
