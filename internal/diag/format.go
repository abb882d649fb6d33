package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"nixscan/internal/source"
)

type shortLine struct {
	sev, code, path string
	pos             source.LineCol
	msg             string
}

// FormatShort renders one diagnostic per line as
// "<severity> <code> <path>:<line>:<col> <message>", ordered by position,
// with paths relative to the FileSet base. Notes become "note" lines when
// includeNotes is set. Diagnostics without a known file are skipped.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil {
		return ""
	}
	var lines []shortLine
	locate := func(sp source.Span) (string, source.LineCol, bool) {
		f := fs.Get(sp.File)
		if f == nil {
			return "", source.LineCol{}, false
		}
		return strings.TrimPrefix(f.FormatPath("relative", fs.BaseDir()), "./"), f.Position(sp.Start), true
	}
	for _, d := range diags {
		if path, pos, ok := locate(d.Primary); ok {
			lines = append(lines, shortLine{d.Severity.Label(), d.Code.ID(), path, pos, oneLine(d.Message)})
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			if path, pos, ok := locate(n.Span); ok {
				lines = append(lines, shortLine{"note", d.Code.ID(), path, pos, oneLine(n.Msg)})
			}
		}
	}
	slices.SortStableFunc(lines, func(a, b shortLine) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.pos.Line, b.pos.Line),
			cmp.Compare(a.pos.Col, b.pos.Col),
			cmp.Compare(a.sev, b.sev),
			cmp.Compare(a.code, b.code),
		)
	})

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", l.sev, l.code, l.path, l.pos.Line, l.pos.Col, l.msg)
	}
	return b.String()
}

// oneLine folds CR/LF runs into spaces.
func oneLine(msg string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(msg)), " ")
}
