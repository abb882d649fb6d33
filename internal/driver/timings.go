package driver

import (
	"encoding/json"
	"fmt"

	"nixscan/internal/diag"
	"nixscan/internal/observ"
	"nixscan/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func newTimingPayload(kind, path string, report observ.Report) timingPayload {
	return timingPayload{Kind: kind, Path: path, TotalMS: report.TotalMS, Phases: report.Phases}
}

// timingDiagnostic renders payload as an info diagnostic whose note holds the
// JSON form.
func timingDiagnostic(payload timingPayload) (diag.Diagnostic, bool) {
	if payload.Kind == "" {
		payload.Kind = "scan"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return diag.Diagnostic{}, false
	}
	return diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).
		WithNote(source.Span{}, string(data)), true
}

func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	entry, ok := timingDiagnostic(payload)
	if !ok {
		return
	}
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
