package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the per-project configuration file.
const ConfigFileName = ".nixscan.toml"

// FindUp walks up from startDir and returns the first existing file called
// name.
func FindUp(startDir, name string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindConfig locates .nixscan.toml at or above startDir.
func FindConfig(startDir string) (path string, ok bool, err error) {
	return FindUp(startDir, ConfigFileName)
}

// FindProjectRoot returns the nearest directory holding .nixscan.toml, or
// failing that flake.nix.
func FindProjectRoot(startDir string) (root string, ok bool, err error) {
	for _, name := range []string{ConfigFileName, "flake.nix"} {
		path, ok, err := FindUp(startDir, name)
		if err != nil {
			return "", false, err
		}
		if ok {
			return filepath.Dir(path), true, nil
		}
	}
	return "", false, nil
}
