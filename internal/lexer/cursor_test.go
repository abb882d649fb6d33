package lexer

import (
	"testing"

	"nixscan/internal/source"
)

func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.nix", []byte(content))
	return fs.Get(id)
}

func TestCursorSequentialReading(t *testing.T) {
	c := NewCursor(createFile("a\nb"))
	for _, want := range []byte("a\nb") {
		if c.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := c.Bump(); got != want {
			t.Fatalf("Bump() = %q, want %q", got, want)
		}
	}
	if !c.EOF() || c.Peek() != 0 || c.Bump() != 0 {
		t.Fatalf("cursor should be exhausted")
	}
}

func TestCursorPeekHelpers(t *testing.T) {
	c := NewCursor(createFile("abc"))
	if b0, b1, b2, ok := c.Peek3(); !ok || b0 != 'a' || b1 != 'b' || b2 != 'c' {
		t.Fatalf("Peek3 = %q %q %q %v", b0, b1, b2, ok)
	}
	c.Bump()
	if _, _, _, ok := c.Peek3(); ok {
		t.Fatalf("Peek3 should fail with two bytes left")
	}
	if c.PeekAt(1) != 'c' || c.PeekAt(2) != 0 {
		t.Fatalf("PeekAt is off")
	}
	if !c.HasPrefix("bc") || c.HasPrefix("bcd") {
		t.Fatalf("HasPrefix is off")
	}
}

func TestCursorMarkResetAdvance(t *testing.T) {
	c := NewCursor(createFile("hello"))
	m := c.Mark()
	c.Advance(3)
	if sp := c.SpanFrom(m); sp.Start != 0 || sp.End != 3 {
		t.Fatalf("SpanFrom = %v", sp)
	}
	c.Advance(100)
	if !c.EOF() || c.Off != 5 {
		t.Fatalf("Advance must clamp to EOF, off=%d", c.Off)
	}
	c.Reset(m)
	if !c.Eat('h') || c.Eat('x') {
		t.Fatalf("Eat misbehaves")
	}
}
