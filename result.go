package testkit

import (
	"fmt"
	"syscall"
	"time"
)

// termination is how an isolated child ended.
type termination int

const (
	termExited termination = iota
	termTimeout
	termAborted
	termFaulted
	termSignaled
	termUnknown
)

func (t termination) String() string {
	switch t {
	case termExited:
		return "exit"
	case termTimeout:
		return "timeout"
	case termAborted:
		return "abort"
	case termFaulted:
		return "segfault"
	case termSignaled:
		return "signal"
	}
	return "unknown"
}

// runResult is the classified outcome of one isolated execution. It lives
// only long enough to be reported and folded into the run summary.
type runResult struct {
	mode      termination
	exitCode  int
	signal    syscall.Signal
	output    string
	truncated bool
	duration  time.Duration
}

func (r *runResult) passed() bool {
	return r.mode == termExited && r.exitCode == 0
}

// reason is the short failure annotation for reports. Empty for passes.
func (r *runResult) reason() string {
	switch r.mode {
	case termExited:
		if r.exitCode == 0 {
			return ""
		}
		return fmt.Sprintf("exit status %d", r.exitCode)
	case termTimeout:
		return "Timeout"
	case termAborted:
		return "Assertion fail"
	case termFaulted:
		return "Segmentation fault"
	case termSignaled:
		return signalText(r.signal)
	}
	return "unknown error"
}
