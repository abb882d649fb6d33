package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nixscan/internal/analysis"
	"nixscan/internal/version"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "info")
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("scan.done", "files", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=scan.done files=3")

	_, err = newLogger(&buf, "loud")
	assert.Error(t, err)

	l, err = newLogger(&buf, " DEBUG ")
	require.NoError(t, err)
	assert.True(t, l.Enabled(t.Context(), slog.LevelDebug))
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := readUIMode("maybe")
	assert.Error(t, err)

	assert.True(t, shouldUseTUI(uiModeOn, true))
	assert.False(t, shouldUseTUI(uiModeOff, false))
	assert.False(t, shouldUseTUI(uiModeAuto, true))
}

func TestColorEnabledExplicitModes(t *testing.T) {
	assert.True(t, colorEnabled("on", nil))
	assert.False(t, colorEnabled("off", nil))
}

func TestCountAtLeast(t *testing.T) {
	fs := []analysis.Finding{
		{Severity: analysis.SevLow},
		{Severity: analysis.SevHigh},
		{Severity: analysis.SevCritical},
	}
	assert.Equal(t, 2, countAtLeast(fs, analysis.SevHigh))
	assert.Equal(t, 3, countAtLeast(fs, analysis.SevLow))
	assert.Zero(t, countAtLeast(nil, analysis.SevLow))
}

func TestRenderVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderVersionJSON(&buf, versionOptions{showHash: true}))

	var payload versionPayload
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "nixscan", payload.Tool)
	assert.Equal(t, version.Version, payload.Version)
	assert.Equal(t, valueOrUnknown(version.GitCommit), payload.GitCommit)
	assert.Empty(t, payload.BuildDate)
}
