package syntax

import (
	"strings"

	"nixscan/internal/token"
)

// Segment is one component of an attribute path.
type Segment struct {
	Name string
	Node NodeID
	// Dynamic is set for ${...} names and interpolated string names; Name
	// then holds the source text.
	Dynamic bool
}

// AttrPath is the projection of an AttrPath node.
type AttrPath struct {
	Node     NodeID
	Segments []Segment
}

// String joins the segment names with dots.
func (p AttrPath) String() string {
	names := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		names[i] = s.Name
	}
	return strings.Join(names, ".")
}

// Names returns the segment names.
func (p AttrPath) Names() []string {
	out := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		out[i] = s.Name
	}
	return out
}

// AttrPathOf projects an AttrPath node.
func (t *Tree) AttrPathOf(id NodeID) AttrPath {
	path := AttrPath{Node: id}
	if t.Kind(id) != KindAttrPath {
		return path
	}
	for _, seg := range t.ChildNodes(id) {
		path.Segments = append(path.Segments, t.segmentOf(seg))
	}
	return path
}

func (t *Tree) segmentOf(id NodeID) Segment {
	switch t.Kind(id) {
	case KindIdent:
		return Segment{Name: t.IdentName(id), Node: id}
	case KindString:
		if v, ok := t.StringValue(id); ok {
			return Segment{Name: v, Node: id}
		}
	}
	return Segment{Name: t.TrimmedText(id), Node: id, Dynamic: true}
}

// InheritClause is the projection of inherit [(from)] a b c;
type InheritClause struct {
	// From is the expression inside the parentheses, or NoNodeID.
	From      NodeID
	Attrs     []string
	AttrNodes []NodeID
}

// Binding is either "path = value;" or an inherit clause.
type Binding struct {
	Node    NodeID
	Path    AttrPath
	Value   NodeID
	Inherit *InheritClause
}

// BindingOf projects a Binding or Inherit node.
func (t *Tree) BindingOf(id NodeID) (Binding, bool) {
	switch t.Kind(id) {
	case KindBinding:
		b := Binding{Node: id}
		for _, child := range t.ChildNodes(id) {
			if t.Kind(child) == KindAttrPath && !b.Path.Node.IsValid() {
				b.Path = t.AttrPathOf(child)
				continue
			}
			if !b.Value.IsValid() {
				b.Value = child
			}
		}
		return b, true
	case KindInherit:
		clause := &InheritClause{}
		for _, child := range t.ChildNodes(id) {
			switch t.Kind(child) {
			case KindInheritFrom:
				if inner := t.ChildNodes(child); len(inner) > 0 {
					clause.From = inner[0]
				}
			default:
				clause.Attrs = append(clause.Attrs, t.segmentOf(child).Name)
				clause.AttrNodes = append(clause.AttrNodes, child)
			}
		}
		return Binding{Node: id, Inherit: clause}, true
	}
	return Binding{}, false
}

// Bindings returns the bindings of an AttrSet or LetIn node in order.
func (t *Tree) Bindings(container NodeID) []Binding {
	switch t.Kind(container) {
	case KindAttrSet, KindLetIn:
	default:
		return nil
	}
	var out []Binding
	for _, child := range t.ChildNodes(container) {
		if b, ok := t.BindingOf(child); ok {
			out = append(out, b)
		}
	}
	return out
}

// LetBody returns the expression after "in".
func (t *Tree) LetBody(let NodeID) NodeID {
	if t.Kind(let) != KindLetIn {
		return NoNodeID
	}
	seenIn := false
	for _, el := range t.Children(let) {
		if el.IsToken() && t.Token(el.Token).Kind == token.KwIn {
			seenIn = true
			continue
		}
		if seenIn && el.IsNode() {
			return el.Node
		}
	}
	return NoNodeID
}

// ParamKind tells how a lambda parameter was declared.
type ParamKind uint8

const (
	ParamIdent ParamKind = iota
	ParamField
	ParamCapture
)

// Param is a name bound by a lambda.
type Param struct {
	Name string
	Node NodeID
	Kind ParamKind
	// Default is the "? expr" of a pattern field.
	Default NodeID
}

// LambdaParams lists the names a Lambda node binds.
func (t *Tree) LambdaParams(lambda NodeID) []Param {
	if t.Kind(lambda) != KindLambda {
		return nil
	}
	var out []Param
	hasPattern := t.ChildOfKind(lambda, KindPattern).IsValid()
	for _, el := range t.Children(lambda) {
		if el.IsToken() && t.Token(el.Token).Kind == token.Colon {
			break
		}
		if !el.IsNode() {
			continue
		}
		switch t.Kind(el.Node) {
		case KindIdent:
			kind := ParamIdent
			if hasPattern {
				kind = ParamCapture
			}
			out = append(out, Param{Name: t.IdentName(el.Node), Node: el.Node, Kind: kind})
		case KindPattern:
			for _, entry := range t.ChildNodes(el.Node) {
				if t.Kind(entry) != KindPatternEntry {
					continue
				}
				nodes := t.ChildNodes(entry)
				if len(nodes) == 0 {
					continue
				}
				p := Param{Name: t.IdentName(nodes[0]), Node: nodes[0], Kind: ParamField}
				if len(nodes) > 1 {
					p.Default = nodes[1]
				}
				out = append(out, p)
			}
		}
	}
	return out
}

// LambdaBody returns the expression after the colon.
func (t *Tree) LambdaBody(lambda NodeID) NodeID {
	if t.Kind(lambda) != KindLambda {
		return NoNodeID
	}
	seenColon := false
	for _, el := range t.Children(lambda) {
		if el.IsToken() && t.Token(el.Token).Kind == token.Colon {
			seenColon = true
			continue
		}
		if seenColon && el.IsNode() {
			return el.Node
		}
	}
	return NoNodeID
}

// HasEllipsis reports whether a Pattern node accepts extra attributes.
func (t *Tree) HasEllipsis(pattern NodeID) bool {
	return t.ChildToken(pattern, token.Ellipsis).IsValid()
}

// ApplyParts returns the function and argument of an Apply or Import node.
func (t *Tree) ApplyParts(id NodeID) (fn, arg NodeID) {
	switch t.Kind(id) {
	case KindApply, KindImport:
		nodes := t.ChildNodes(id)
		if len(nodes) > 0 {
			fn = nodes[0]
		}
		if len(nodes) > 1 {
			arg = nodes[1]
		}
	}
	return fn, arg
}

// SelectParts returns the subject, the attribute path and the "or" default
// of a Select node (or the subject and path of a HasAttr node).
func (t *Tree) SelectParts(id NodeID) (subject NodeID, path AttrPath, def NodeID) {
	switch t.Kind(id) {
	case KindSelect, KindHasAttr:
	default:
		return NoNodeID, AttrPath{}, NoNodeID
	}
	for _, child := range t.ChildNodes(id) {
		switch {
		case !subject.IsValid():
			subject = child
		case t.Kind(child) == KindAttrPath && !path.Node.IsValid():
			path = t.AttrPathOf(child)
		default:
			def = child
		}
	}
	return subject, path, def
}

// BinaryOperands returns the operands of a BinaryOp node.
func (t *Tree) BinaryOperands(id NodeID) (lhs, rhs NodeID) {
	if t.Kind(id) != KindBinaryOp {
		return NoNodeID, NoNodeID
	}
	nodes := t.ChildNodes(id)
	if len(nodes) > 0 {
		lhs = nodes[0]
	}
	if len(nodes) > 1 {
		rhs = nodes[1]
	}
	return lhs, rhs
}

// ListElements returns the element expressions of a List node.
func (t *Tree) ListElements(list NodeID) []NodeID {
	if t.Kind(list) != KindList {
		return nil
	}
	return t.ChildNodes(list)
}

// Unparen strips any number of enclosing parentheses.
func (t *Tree) Unparen(id NodeID) NodeID {
	for t.Kind(id) == KindParen {
		inner := t.ChildNodes(id)
		if len(inner) == 0 {
			return id
		}
		id = inner[0]
	}
	return id
}
