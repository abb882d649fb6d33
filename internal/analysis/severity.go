package analysis

import (
	"fmt"
	"strings"
)

// Severity ranks findings. The zero value is the least severe.
type Severity uint8

const (
	SevLow Severity = iota
	SevMedium
	SevHigh
	// SevCritical is for findings that defeat build isolation.
	SevCritical
)

var severityNames = [...]string{
	SevLow:      "low",
	SevMedium:   "medium",
	SevHigh:     "high",
	SevCritical: "critical",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeverity accepts the names printed by String, case-insensitively.
func ParseSeverity(name string) (Severity, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return SevLow, fmt.Errorf("unknown severity %q", name)
}
