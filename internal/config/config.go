// Package config loads the per-project .nixscan.toml file.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"nixscan/internal/analysis"
	"nixscan/internal/project"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Output formats understood by the report package.
var Formats = []string{"text", "json", "yaml"}

var colorModes = []string{"auto", "on", "off"}

type Scan struct {
	Exclude        []string `toml:"exclude"`
	SkipDirs       []string `toml:"skip_dirs"`
	NoIgnoreFiles  bool     `toml:"no_ignore_files"`
	Jobs           int      `toml:"jobs"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
}

type Analyze struct {
	Analyzers   []string `toml:"analyzers"`
	MinSeverity string   `toml:"min_severity"`
	// FailOn makes analyze exit non-zero when a finding reaches this level.
	FailOn string `toml:"fail_on"`
}

type Output struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type Store struct {
	// Path of the SQLite database; empty disables persistence.
	Path string `toml:"path"`
}

// Config is the decoded .nixscan.toml. Zero sections keep their defaults.
type Config struct {
	Scan    Scan    `toml:"scan"`
	Analyze Analyze `toml:"analyze"`
	Output  Output  `toml:"output"`
	Cache   Cache   `toml:"cache"`
	Store   Store   `toml:"store"`

	// Path is the file the config came from, empty for defaults.
	Path string `toml:"-"`
	// Unknown lists keys present in the file that nothing reads.
	Unknown []string `toml:"-"`
}

func Default() Config {
	return Config{
		Scan:    Scan{Jobs: runtime.GOMAXPROCS(0), MaxDiagnostics: 100},
		Analyze: Analyze{MinSeverity: "low"},
		Output:  Output{Format: "text", Color: "auto"},
		Cache:   Cache{Enabled: true},
	}
}

// Load decodes path over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.Path = path
	for _, key := range meta.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, key.String())
	}
	// пустые значения в файле не должны затирать умолчания
	if meta.IsDefined("scan", "jobs") && cfg.Scan.Jobs <= 0 {
		cfg.Scan.Jobs = runtime.GOMAXPROCS(0)
	}
	if meta.IsDefined("analyze", "min_severity") && strings.TrimSpace(cfg.Analyze.MinSeverity) == "" {
		cfg.Analyze.MinSeverity = "low"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover finds .nixscan.toml at or above startDir and loads it. Without a
// file it returns Default.
func Discover(startDir string) (Config, error) {
	path, ok, err := project.FindConfig(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("%w: output.format %q (want one of %s)", ErrInvalid, c.Output.Format, strings.Join(Formats, ", "))
	}
	if !slices.Contains(colorModes, c.Output.Color) {
		return fmt.Errorf("%w: output.color %q (want one of %s)", ErrInvalid, c.Output.Color, strings.Join(colorModes, ", "))
	}
	if _, err := analysis.ParseSeverity(c.Analyze.MinSeverity); err != nil {
		return fmt.Errorf("%w: analyze.min_severity: %w", ErrInvalid, err)
	}
	if c.Analyze.FailOn != "" {
		if _, err := analysis.ParseSeverity(c.Analyze.FailOn); err != nil {
			return fmt.Errorf("%w: analyze.fail_on: %w", ErrInvalid, err)
		}
	}
	if c.Scan.MaxDiagnostics < 0 {
		return fmt.Errorf("%w: scan.max_diagnostics must not be negative", ErrInvalid)
	}
	return nil
}

// MinSeverity returns the parsed analyze.min_severity.
func (c Config) MinSeverity() analysis.Severity {
	sev, err := analysis.ParseSeverity(c.Analyze.MinSeverity)
	if err != nil {
		return analysis.SevLow
	}
	return sev
}

// FailOn returns the parsed analyze.fail_on and whether it is set.
func (c Config) FailOn() (analysis.Severity, bool) {
	if c.Analyze.FailOn == "" {
		return 0, false
	}
	sev, err := analysis.ParseSeverity(c.Analyze.FailOn)
	return sev, err == nil
}
