package diag

import "strings"

// Severity of a diagnostic, ordered Info < Warning < Error.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityLabels = [...]string{SevInfo: "info", SevWarning: "warning", SevError: "error"}

// String is the upper-case form, e.g. "WARNING".
func (s Severity) String() string {
	if int(s) < len(severityLabels) {
		return strings.ToUpper(severityLabels[s])
	}
	return "UNKNOWN"
}

// Label is the lowercase form used in single-line output. Unknown values
// read as info.
func (s Severity) Label() string {
	if int(s) < len(severityLabels) {
		return severityLabels[s]
	}
	return severityLabels[SevInfo]
}
