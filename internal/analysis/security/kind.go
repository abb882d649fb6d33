package security

// Kind names a security rule.
type Kind uint8

const (
	KindInsecureFetcher Kind = iota
	KindImpureBuiltin
	KindUnfreeAllowed
	KindInsecureAllowed
	KindSandboxDisabled
	KindWeakHash
	KindExecBuiltin
	KindImportFromDerivation
	KindInsecureURL
)

var kindNames = [...]string{
	KindInsecureFetcher:      "InsecureFetcher",
	KindImpureBuiltin:        "ImpureBuiltin",
	KindUnfreeAllowed:        "UnfreeAllowed",
	KindInsecureAllowed:      "InsecureAllowed",
	KindSandboxDisabled:      "SandboxDisabled",
	KindWeakHash:             "WeakHash",
	KindExecBuiltin:          "ExecBuiltin",
	KindImportFromDerivation: "ImportFromDerivation",
	KindInsecureURL:          "InsecureURL",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
