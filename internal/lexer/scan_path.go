package lexer

// matchPath returns the length of a path literal at the cursor, or 0.
//
//	path    = pathchar* ("/" pathchar+)+
//	homepath = "~" ("/" pathchar+)+
//
// A prefix ending in "/" directly followed by "${" is also a path: it is the
// leading piece of an interpolated path such as ./pkgs/${name}.
func (lx *Lexer) matchPath() uint32 {
	c := &lx.cursor
	var i uint32
	if c.Peek() == '~' {
		i = 1
	} else {
		for isPathChar(c.PeekAt(i)) {
			i++
		}
	}
	segments := 0
	for c.PeekAt(i) == '/' {
		j := i + 1
		if c.PeekAt(j) == '$' && c.PeekAt(j+1) == '{' {
			return j
		}
		for isPathChar(c.PeekAt(j)) {
			j++
		}
		if j == i+1 {
			break
		}
		i = j
		segments++
	}
	if segments == 0 {
		return 0
	}
	return i
}

// matchURI returns the length of an unquoted URI (scheme ":" uri-chars+), or 0.
func (lx *Lexer) matchURI() uint32 {
	c := &lx.cursor
	if !isAlpha(c.Peek()) {
		return 0
	}
	i := uint32(1)
	for isSchemeChar(c.PeekAt(i)) {
		i++
	}
	if c.PeekAt(i) != ':' {
		return 0
	}
	j := i + 1
	for isURIChar(c.PeekAt(j)) {
		j++
	}
	if j == i+1 {
		return 0
	}
	return j
}

// matchSearchPath returns the length of a <nixpkgs/lib>-style lookup path, or 0.
func (lx *Lexer) matchSearchPath() uint32 {
	c := &lx.cursor
	i := uint32(1)
	for {
		j := i
		for isPathChar(c.PeekAt(j)) {
			j++
		}
		if j == i {
			return 0
		}
		switch c.PeekAt(j) {
		case '/':
			i = j + 1
		case '>':
			return j + 1
		default:
			return 0
		}
	}
}
