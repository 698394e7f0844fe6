package testkit

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/alessio/shellescape"

	"github.com/nanshaqundao/testkit/logging"
)

// caseRunner executes one case, or its cleanup hook, in isolation. The
// driver only depends on this seam, so it can be exercised without spawning
// real processes.
type caseRunner interface {
	runCase(index int, tc *TestCase) *runResult
	runCleanup(index int, tc *TestCase) *runResult
}

// waitDelay bounds how long the parent waits for the child's output pipe to
// close once the child itself is gone, so an orphaned grandchild that
// inherited the pipe cannot stall the run.
const waitDelay = 5 * time.Second

// processRunner isolates cases by re-executing the current binary with
// marker variables in the child environment. The child re-registers the same
// cases, sees the markers, and runs exactly one of them.
type processRunner struct {
	exe         string
	extraArgs   []string
	timeout     time.Duration
	outputLimit int
	runID       string
	log         *slog.Logger
}

func (r *processRunner) runCase(index int, tc *TestCase) *runResult {
	return r.spawn(index, stageTest, tc)
}

func (r *processRunner) runCleanup(index int, tc *TestCase) *runResult {
	return r.spawn(index, stageCleanup, tc)
}

func (r *processRunner) spawn(index int, stage string, tc *TestCase) *runResult {
	buf := newOutputBuffer(r.outputLimit)
	cmd := exec.Command(r.exe, r.extraArgs...)
	// One writer for both streams keeps stdout and stderr behind a single
	// pipe, preserving the child's interleaving.
	cmd.Stdout = buf
	cmd.Stderr = buf
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%d", envChildIndex, index),
		fmt.Sprintf("%s=%s", envChildStage, stage),
		fmt.Sprintf("%s=%s", logging.EnvRunID, r.runID),
	)
	cmd.WaitDelay = waitDelay
	r.log.Debug("spawning child",
		"test", tc.Name, "stage", stage, "command", shellescape.QuoteCommand(cmd.Args))

	start := time.Now()
	if err := cmd.Start(); err != nil {
		fatalf("cannot spawn a child process for %q: %v", tc.Name, err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()
	var timedOut bool
	var waitErr error
	select {
	case waitErr = <-done:
	case <-timer.C:
		select {
		case waitErr = <-done:
			// Finished just as the timer fired; keep the real status.
		default:
			timedOut = true
			_ = cmd.Process.Kill()
			waitErr = <-done
		}
	}

	ws, ok := cmd.ProcessState.Sys().(syscall.WaitStatus)
	if !ok {
		fatalf("unsupported platform: wait status is %T", cmd.ProcessState.Sys())
	}
	res := classify(ws, timedOut)
	res.duration = time.Since(start)
	res.output = buf.String()
	res.truncated = buf.Truncated()
	if res.truncated {
		r.log.Debug("captured output truncated",
			"test", tc.Name, "stage", stage, "limit", r.outputLimit)
	}
	if waitErr != nil {
		r.log.Debug("child wait", "test", tc.Name, "stage", stage, "err", waitErr)
	}
	r.log.Debug("child finished",
		"test", tc.Name, "stage", stage, "outcome", res.mode.String(),
		"reason", res.reason(), "duration", res.duration)
	return res
}
