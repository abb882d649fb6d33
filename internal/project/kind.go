package project

import (
	"strings"

	"nixscan/internal/query"
	"nixscan/internal/syntax"
)

// FileKind is the role a Nix file plays in a project.
type FileKind uint8

const (
	KindUnknown FileKind = iota
	KindFlake
	KindModule
	KindOverlay
	KindDerivation
	KindConfiguration
)

var fileKindNames = [...]string{
	KindUnknown:       "unknown",
	KindFlake:         "flake",
	KindModule:        "module",
	KindOverlay:       "overlay",
	KindDerivation:    "derivation",
	KindConfiguration: "configuration",
}

func (k FileKind) String() string {
	if int(k) < len(fileKindNames) {
		return fileKindNames[k]
	}
	return "unknown"
}

// MarshalText lets reports print kinds by name.
func (k FileKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// configurationKeys mark a NixOS system configuration.
var configurationKeys = []string{
	"system.stateVersion", "boot", "fileSystems", "networking", "services", "users", "environment",
}

// DetectFileKind classifies a parsed file. Checks run in a fixed order and
// the first match wins: flake, module, overlay, derivation, configuration.
func DetectFileKind(t *syntax.Tree) FileKind {
	root := t.Unparen(query.RootExpr(t))
	if !root.IsValid() {
		return KindUnknown
	}
	if t.Kind(root) == syntax.KindAttrSet && query.HasAttribute(t, root, "outputs") {
		return KindFlake
	}
	body := query.BodyAttrSet(t, root)
	if body.IsValid() {
		if query.HasAttribute(t, body, "imports") ||
			(query.HasAttribute(t, body, "options") && query.HasAttribute(t, body, "config")) {
			return KindModule
		}
	}
	if isOverlay(t, root) {
		return KindOverlay
	}
	if callsMkDerivation(t, root) {
		return KindDerivation
	}
	if body.IsValid() {
		for _, key := range configurationKeys {
			if query.HasAttribute(t, body, key) {
				return KindConfiguration
			}
		}
	}
	return KindUnknown
}

// isOverlay matches a curried two-argument function such as final: prev: ...
func isOverlay(t *syntax.Tree, root syntax.NodeID) bool {
	if t.Kind(root) != syntax.KindLambda {
		return false
	}
	inner := t.Unparen(t.LambdaBody(root))
	if t.Kind(inner) != syntax.KindLambda {
		return false
	}
	return singleIdentParam(t, root) && singleIdentParam(t, inner)
}

func singleIdentParam(t *syntax.Tree, lambda syntax.NodeID) bool {
	params := t.LambdaParams(lambda)
	return len(params) == 1 && params[0].Kind == syntax.ParamIdent
}

func callsMkDerivation(t *syntax.Tree, root syntax.NodeID) bool {
	found := false
	t.Walk(root, func(id syntax.NodeID) bool {
		if found {
			return false
		}
		if k := t.Kind(id); k == syntax.KindApply || k == syntax.KindImport {
			callee, _ := query.CallParts(t, id)
			found = strings.Contains(t.TrimmedText(callee), "mkDerivation")
		}
		return !found
	})
	return found
}
