package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestFilesSkipsDefaultDirsAndNonNix(t *testing.T) {
	root := tree(t, map[string]string{
		"flake.nix":            "{}",
		"hosts/web.nix":        "{}",
		"README.md":            "",
		".git/hooks/x.nix":     "{}",
		"result/lib.nix":       "{}",
		".direnv/flake.nix":    "{}",
		"node_modules/pkg.nix": "{}",
		"modules/zz/deep.nix":  "{}",
	})

	got, err := Files(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"flake.nix", "hosts/web.nix", "modules/zz/deep.nix"}, rel(t, root, got))
}

func TestFilesHonoursIgnoreFiles(t *testing.T) {
	root := tree(t, map[string]string{
		".gitignore":        "generated/\n*.bak.nix\n",
		".nixscanignore":    "vendor/\n",
		"default.nix":       "{}",
		"old.bak.nix":       "{}",
		"generated/out.nix": "{}",
		"vendor/dep.nix":    "{}",
		"sub/.gitignore":    "local.nix\n",
		"sub/local.nix":     "{}",
		"sub/kept.nix":      "{}",
		"other/local.nix":   "{}",
	})

	got, err := Files(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"default.nix", "other/local.nix", "sub/kept.nix"}, rel(t, root, got))

	all, err := Files(root, Options{NoIgnoreFiles: true})
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestFilesExtraExcludesAndSkipDirs(t *testing.T) {
	root := tree(t, map[string]string{
		"a.nix":         "{}",
		"tests/t.nix":   "{}",
		"build/out.nix": "{}",
	})

	got, err := Files(root, Options{Exclude: []string{"tests/"}, SkipDirs: []string{"build"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.nix"}, rel(t, root, got))
}

func TestFilesSingleFileRoot(t *testing.T) {
	root := tree(t, map[string]string{"x.nix": "1"})
	p := filepath.Join(root, "x.nix")

	got, err := Files(p, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{p}, got)

	_, err = Files(filepath.Join(root, "missing"), Options{})
	assert.Error(t, err)
}
