package query

import (
	"strings"

	"nixscan/internal/syntax"
)

// CallParts unwinds a curried application f a b into its callee and the
// arguments in order. Import nodes report the ident import as callee.
func CallParts(t *syntax.Tree, id syntax.NodeID) (callee syntax.NodeID, args []syntax.NodeID) {
	switch t.Kind(id) {
	case syntax.KindApply, syntax.KindImport:
	default:
		return syntax.NoNodeID, nil
	}
	for {
		switch t.Kind(id) {
		case syntax.KindApply, syntax.KindImport:
			fn, arg := t.ApplyParts(id)
			if arg.IsValid() {
				args = append(args, arg)
			}
			id = t.Unparen(fn)
			continue
		}
		break
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return id, args
}

// CalleeName returns the source text of the function being applied, e.g.
// "stdenv.mkDerivation" or "import". Callees other than identifiers and
// selections yield "".
func CalleeName(t *syntax.Tree, id syntax.NodeID) string {
	callee, _ := CallParts(t, id)
	switch t.Kind(callee) {
	case syntax.KindIdent:
		return t.IdentName(callee)
	case syntax.KindSelect:
		subject, path, def := t.SelectParts(callee)
		if def.IsValid() || t.Kind(subject) != syntax.KindIdent {
			return t.TrimmedText(callee)
		}
		return t.IdentName(subject) + "." + path.String()
	}
	return ""
}

// IsOutermostCall reports whether id is an application that is not itself
// the function part of a larger application.
func IsOutermostCall(t *syntax.Tree, id syntax.NodeID) bool {
	switch t.Kind(id) {
	case syntax.KindApply, syntax.KindImport:
	default:
		return false
	}
	parent := t.Parent(id)
	switch t.Kind(parent) {
	case syntax.KindApply, syntax.KindImport:
		fn, _ := t.ApplyParts(parent)
		return fn != id
	}
	return true
}

// Calls returns the outermost applications under root whose callee matches
// name: either exactly, or as the last segment of a selection (so "fetchurl"
// matches pkgs.fetchurl and builtins.fetchurl).
func Calls(t *syntax.Tree, root syntax.NodeID, name string) []syntax.NodeID {
	return FindNodes(t, root, func(id syntax.NodeID) bool {
		return IsOutermostCall(t, id) && calleeMatches(CalleeName(t, id), name)
	})
}

// ContainsFunctionCall reports whether any application under node calls
// name (matched as in Calls).
func ContainsFunctionCall(t *syntax.Tree, node syntax.NodeID, name string) bool {
	found := false
	t.Walk(node, func(id syntax.NodeID) bool {
		if found {
			return false
		}
		if IsOutermostCall(t, id) && calleeMatches(CalleeName(t, id), name) {
			found = true
		}
		return !found
	})
	return found
}

func calleeMatches(callee, name string) bool {
	if callee == "" || name == "" {
		return false
	}
	return callee == name || strings.HasSuffix(callee, "."+name)
}
