package driver

import (
	"nixscan/internal/diag"
	"nixscan/internal/parser"
	"nixscan/internal/source"
	"nixscan/internal/syntax"
)

type SingleParseResult struct {
	FileSet *source.FileSet
	File    *syntax.SourceFile
	Bag     *diag.Bag
}

// Parse lexes and parses one file from disk.
func Parse(filePath string, maxDiagnostics int) (*SingleParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}

	sf := parser.ParseFile(fs, fileID, parser.Options{MaxErrors: maxErrors(maxDiagnostics)})
	bag := diag.NewBag(maxDiagnostics)
	for _, d := range sf.Diagnostics {
		bag.Add(d)
	}
	bag.Sort()
	bag.Dedup()
	return &SingleParseResult{FileSet: fs, File: sf, Bag: bag}, nil
}

// ParseText parses in-memory text registered under path.
func ParseText(path string, text []byte, maxDiagnostics int) *SingleParseResult {
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, text)
	sf := parser.ParseFile(fs, id, parser.Options{MaxErrors: maxErrors(maxDiagnostics)})
	bag := diag.NewBag(maxDiagnostics)
	for _, d := range sf.Diagnostics {
		bag.Add(d)
	}
	bag.Sort()
	bag.Dedup()
	return &SingleParseResult{FileSet: fs, File: sf, Bag: bag}
}
