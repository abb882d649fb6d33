package ui

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"nixscan/internal/driver"
)

func newModel(total int) *progressModel {
	return NewProgressModel("scan", total, nil).(*progressModel)
}

func TestApplyEventCountsFiles(t *testing.T) {
	m := newModel(4)
	m.applyEvent(driver.Event{File: "a.nix", Stage: driver.StageParse, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "a.nix", Stage: driver.StageParse, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b.nix", Stage: driver.StageParse, Status: driver.StatusCached})
	m.applyEvent(driver.Event{File: "c.nix", Stage: driver.StageParse, Status: driver.StatusError})

	if m.finished != 3 || m.cached != 1 || m.failed != 1 {
		t.Fatalf("finished=%d cached=%d failed=%d", m.finished, m.cached, m.failed)
	}
	if len(m.recent) != 3 || m.recent[0].path != "a.nix" || m.recent[0].status != "done" {
		t.Fatalf("recent = %+v", m.recent)
	}
	if got := m.percent(); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("percent = %v", got)
	}

	m.applyEvent(driver.Event{Stage: driver.StageAnalyze, Status: driver.StatusWorking})
	if m.stageLabel != "analyzing" || m.percent() != parseShare+graphShare {
		t.Fatalf("stage label %q percent %v", m.stageLabel, m.percent())
	}
	view := m.View()
	if !strings.Contains(view, "scan: 3/4 files, 1 cached, 1 failed (analyzing)") {
		t.Fatalf("view header missing:\n%s", view)
	}
}

func TestRecentListIsBounded(t *testing.T) {
	m := newModel(20)
	for i := range 20 {
		m.applyEvent(driver.Event{File: fmt.Sprintf("f%02d.nix", i), Stage: driver.StageParse, Status: driver.StatusDone})
	}
	if len(m.recent) != maxRecent || m.recent[maxRecent-1].path != "f19.nix" {
		t.Fatalf("recent = %+v", m.recent)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"averyverylongname.nix", 10, "averyve..."},
		{"abcdef", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
