package testkit

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"
)

// runReport is the machine-readable counterpart of the console output,
// written when TESTKIT_REPORT names a path.
type runReport struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMS int64        `json:"duration_ms"`
	Passed     int          `json:"passed"`
	Total      int          `json:"total"`
	Cases      []caseReport `json:"cases"`
}

type caseReport struct {
	Name            string `json:"name"`
	Location        string `json:"location,omitempty"`
	Kind            string `json:"kind"`
	Passed          bool   `json:"passed"`
	Outcome         string `json:"outcome"`
	Reason          string `json:"reason,omitempty"`
	ExitCode        int    `json:"exit_code"`
	Signal          string `json:"signal,omitempty"`
	DurationMS      int64  `json:"duration_ms"`
	OutputTruncated bool   `json:"output_truncated,omitempty"`
	CleanupFailed   bool   `json:"cleanup_failed,omitempty"`
}

func buildReport(s *summary) *runReport {
	rep := &runReport{
		RunID:      s.runID,
		StartedAt:  s.startedAt,
		DurationMS: s.duration.Milliseconds(),
		Passed:     s.passed,
		Total:      s.total,
		Cases:      make([]caseReport, 0, len(s.cases)),
	}
	for _, c := range s.cases {
		cr := caseReport{
			Name:            c.tc.Name,
			Location:        c.tc.Location,
			Kind:            c.tc.Kind.String(),
			Passed:          c.res.passed(),
			Outcome:         c.res.mode.String(),
			Reason:          c.res.reason(),
			ExitCode:        c.res.exitCode,
			DurationMS:      c.res.duration.Milliseconds(),
			OutputTruncated: c.res.truncated,
			CleanupFailed:   c.cleanup != nil && !c.cleanup.passed(),
		}
		if c.res.mode == termSignaled {
			cr.Signal = signalText(c.res.signal)
		}
		rep.Cases = append(rep.Cases, cr)
	}
	return rep
}

// writeReport is best-effort: a report that cannot be written is logged and
// otherwise ignored, since it must never affect verdicts or exit codes.
func writeReport(path string, s *summary, log *slog.Logger) {
	data, err := json.MarshalIndent(buildReport(s), "", "  ")
	if err != nil {
		log.Warn("cannot encode the run report", "path", path, "err", err)
		return
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn("cannot write the run report", "path", path, "err", err)
	}
}
