package driver

import (
	"log/slog"
	"time"
)

// PhaseStatus reports whether a scan stage started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

func (s PhaseStatus) String() string {
	if s == PhaseEnd {
		return "end"
	}
	return "start"
}

// PhaseEvent marks a boundary of one Scan stage (parse, graph or analyze).
// Elapsed is only set on PhaseEnd.
type PhaseEvent struct {
	Stage   Stage
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives the stage boundaries of Scan in order. It runs on
// the goroutine calling Scan.
type PhaseObserver func(PhaseEvent)

// phaseRelay adapts observ.Timer callbacks: finished stages are logged at
// debug level and every boundary goes to observer when it is set.
func phaseRelay(logger *slog.Logger, observer PhaseObserver) func(string, bool, time.Duration) {
	return func(name string, done bool, dur time.Duration) {
		if done {
			logger.Debug("phase.timing", "phase", name, "dur", dur)
		}
		if observer == nil {
			return
		}
		e := PhaseEvent{Stage: Stage(name), Status: PhaseStart}
		if done {
			e.Status, e.Elapsed = PhaseEnd, dur
		}
		observer(e)
	}
}
