package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nixscan/internal/analysis"
	"nixscan/internal/project"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var findings = []analysis.Finding{
	{Analyzer: "security", Kind: "InsecureFetcher", Severity: analysis.SevHigh, Description: "fetchurl without a hash", File: "a.nix", Line: 2, Suggestion: "add sha256"},
	{Analyzer: "deadcode", Kind: "UnusedVariable", Severity: analysis.SevLow, Description: "x is defined but never used", File: "b.nix", Line: 1},
}

func TestRecordRunRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	run := &Run{Root: "/src/cfg", StartedAt: time.Now().Truncate(time.Second), Files: 2, WithErrors: 1, GraphDigest: "abc", DurationMS: 12.5}
	files := FileRecords([]project.FileNode{
		{Path: "a.nix", Kind: project.KindDerivation},
		{Path: "b.nix", HasErrors: true},
	})
	id, err := s.RecordRun(ctx, run, files, findings)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, run.ID)

	latest, err := s.LatestRun(ctx, "/src/cfg")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id, latest.ID)
	assert.Equal(t, 2, latest.Findings)
	assert.Equal(t, "abc", latest.GraphDigest)
	assert.InDelta(t, 12.5, latest.DurationMS, 0.001)
	assert.True(t, run.StartedAt.Equal(latest.StartedAt))

	gotFiles, err := s.Files(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, files, gotFiles)

	gotFindings, err := s.Findings(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, findings, gotFindings)
}

func TestRunsNewestFirstAndDelete(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	for i := range 3 {
		_, err := s.RecordRun(ctx, &Run{Root: "r", StartedAt: base.Add(time.Duration(i) * time.Minute)}, nil, findings[:i%2+1])
		require.NoError(t, err)
	}
	_, err := s.RecordRun(ctx, &Run{Root: "other", StartedAt: base}, nil, nil)
	require.NoError(t, err)

	runs, err := s.Runs(ctx, "r", 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))

	two, err := s.Runs(ctx, "r", 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	require.NoError(t, s.DeleteRun(ctx, runs[0].ID))
	left, err := s.Findings(ctx, runs[0].ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	latest, err := s.LatestRun(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, runs[1].ID, latest.ID)
}

func TestLatestRunMissing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	r, err := s.LatestRun(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestDiffIgnoresLineMoves(t *testing.T) {
	moved := findings[0]
	moved.Line = 40
	fresh := analysis.Finding{Analyzer: "security", Kind: "WeakHash", Severity: analysis.SevHigh, Description: "md5", File: "c.nix"}

	added, resolved := Diff(findings, []analysis.Finding{moved, fresh})
	assert.Equal(t, []analysis.Finding{fresh}, added)
	assert.Equal(t, []analysis.Finding{findings[1]}, resolved)

	added, resolved = Diff(findings, findings)
	assert.Empty(t, added)
	assert.Empty(t, resolved)
}
