package version

import (
	"strings"
	"testing"
)

func withBuild(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestBannerPlain(t *testing.T) {
	cases := []struct {
		version, commit, date string
		want                  string
	}{
		{"1.2.3", "", "", "nixscan 1.2.3"},
		{"0.1.0-dev", "abc123", "", "nixscan 0.1.0-dev (abc123)"},
		{"1.0.0", "1234567890abcdef1234", "2024-01-15", "nixscan 1.0.0 (1234567890ab, 2024-01-15)"},
	}
	for _, tc := range cases {
		withBuild(t, tc.version, tc.commit, tc.date)
		if got := Banner(false); got != tc.want {
			t.Errorf("Banner(false) = %q, want %q", got, tc.want)
		}
	}
}

func TestBannerColored(t *testing.T) {
	withBuild(t, "1.2.3-rc.1", "", "")
	got := Banner(true)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected ANSI colours in %q", got)
	}
	if !strings.HasSuffix(got, "-rc.1") {
		t.Fatalf("suffix lost in %q", got)
	}

	withBuild(t, "snapshot", "", "")
	if got := Banner(true); got != "nixscan snapshot" {
		t.Fatalf("non-semver version = %q", got)
	}
}
