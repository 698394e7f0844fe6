package testkit

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nanshaqundao/testkit/logging"
)

// caseOutcome pairs a case with its classified results for the run report.
type caseOutcome struct {
	tc      *TestCase
	res     *runResult
	cleanup *runResult
}

// summary aggregates one full run.
type summary struct {
	runID     string
	startedAt time.Time
	duration  time.Duration
	passed    int
	total     int
	cases     []caseOutcome
}

// driver walks the registry in order, one isolated child at a time, and
// reports each verdict as it lands. Cleanup hooks run in children of their
// own, after the verdict is already fixed, pass or fail.
type driver struct {
	reg    *registry
	run    caseRunner
	rep    reporter
	filter *nameFilter
	log    *slog.Logger
}

func (d *driver) runAll() *summary {
	cases := d.reg.all()
	selected := make([]int, 0, len(cases))
	for i := range cases {
		if d.filter != nil && !d.filter.match(cases[i].Name) {
			d.log.Debug("filtered out", "test", cases[i].Name)
			continue
		}
		selected = append(selected, i)
	}

	s := &summary{startedAt: time.Now(), total: len(selected)}
	d.rep.suiteStarted(len(selected))
	for _, i := range selected {
		tc := &cases[i]
		res := d.run.runCase(i, tc)
		if res.passed() {
			s.passed++
		}
		d.rep.caseFinished(tc, res)

		var cleanup *runResult
		if tc.Fini != nil {
			cleanup = d.run.runCleanup(i, tc)
			if !cleanup.passed() {
				// A cleanup crash never rewrites the verdict; it only
				// surfaces in diagnostics.
				d.log.Warn("cleanup failed", "test", tc.Name,
					"outcome", cleanup.mode.String(), "reason", cleanup.reason())
			}
		}
		s.cases = append(s.cases, caseOutcome{tc: tc, res: res, cleanup: cleanup})
	}
	d.rep.suiteFinished(s.passed, s.total)
	s.duration = time.Since(s.startedAt)
	return s
}

// runSuite wires the real runner and reporter together and executes the
// whole run.
func runSuite(reg *registry, cfg *config) *summary {
	exe := selfPath()
	runID := uuid.NewString()
	log := logging.Logger.With("run_id", runID)
	log.Debug("starting test run",
		"registered", reg.size(), "timeout", cfg.timeout, "verbose", cfg.verbose)

	d := &driver{
		reg: reg,
		run: &processRunner{
			exe:         exe,
			timeout:     cfg.timeout,
			outputLimit: cfg.outputLimit,
			runID:       runID,
			log:         log,
		},
		rep:    &consoleReporter{out: cfg.out, verbose: cfg.verbose},
		filter: cfg.filter,
		log:    log,
	}
	s := d.runAll()
	s.runID = runID
	if cfg.reportPath != "" {
		writeReport(cfg.reportPath, s, log)
	}
	reg.releaseArgs()
	log.Debug("test run finished",
		"passed", s.passed, "total", s.total, "duration", s.duration)
	return s
}
