package analysis

import (
	"cmp"
	"slices"
)

// Finding is the analyzer-neutral form of a reported defect.
type Finding struct {
	Analyzer    string   `json:"analyzer" yaml:"analyzer"`
	Kind        string   `json:"kind" yaml:"kind"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
	File        string   `json:"file" yaml:"file"`
	Line        int      `json:"line,omitempty" yaml:"line,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// SortFindings orders findings most severe first, then by file and line.
func SortFindings(fs []Finding) {
	slices.SortStableFunc(fs, func(a, b Finding) int {
		return cmp.Or(
			cmp.Compare(b.Severity, a.Severity),
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Kind, b.Kind),
		)
	})
}

// FilterSeverity drops findings below min. The input slice is reused.
func FilterSeverity(fs []Finding, min Severity) []Finding {
	out := fs[:0]
	for _, f := range fs {
		if f.Severity >= min {
			out = append(out, f)
		}
	}
	return out
}

// CountBySeverity returns how many findings fall in each severity.
func CountBySeverity(fs []Finding) map[Severity]int {
	counts := make(map[Severity]int, len(severityNames))
	for _, f := range fs {
		counts[f.Severity]++
	}
	return counts
}
