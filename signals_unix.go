//go:build unix

package testkit

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Children report abort-type and fault-type failures through the shell's
// 128+signal exit convention. The Go runtime keeps its own handlers on the
// fatal signals and turns a self-delivered SIGABRT or SIGSEGV into a plain
// exit, so a child cannot arrange to die by those signals; encoding the
// signal number in the exit status keeps the two failure modes apart for the
// parent. Reserving the codes means a test body that deliberately exits with
// 134 or 139 is indistinguishable from an abort or fault, the same ambiguity
// shells live with.
const (
	exitAborted = 128 + int(syscall.SIGABRT)
	exitFaulted = 128 + int(syscall.SIGSEGV)
)

// exitFatal ends a child process with the exit encoding of sig. A variable
// so tests can intercept it.
var exitFatal = func(sig syscall.Signal) {
	os.Exit(128 + int(sig))
}

// classify maps a child's termination to a run outcome. timedOut is set when
// the parent's own timer killed the child; a child that died by SIGALRM on
// its own is treated the same way, since both mean the time budget fired.
// The signaled branch covers deaths the harness did not arrange itself, such
// as an external kill or a fatal signal in a host's cgo code.
func classify(ws syscall.WaitStatus, timedOut bool) *runResult {
	if timedOut {
		return &runResult{mode: termTimeout}
	}
	switch {
	case ws.Exited():
		switch code := ws.ExitStatus(); code {
		case exitAborted:
			return &runResult{mode: termAborted}
		case exitFaulted:
			return &runResult{mode: termFaulted}
		default:
			return &runResult{mode: termExited, exitCode: code}
		}
	case ws.Signaled():
		switch ws.Signal() {
		case syscall.SIGALRM:
			return &runResult{mode: termTimeout}
		case syscall.SIGABRT:
			return &runResult{mode: termAborted}
		case syscall.SIGSEGV:
			return &runResult{mode: termFaulted}
		default:
			return &runResult{mode: termSignaled, signal: ws.Signal()}
		}
	}
	return &runResult{mode: termUnknown}
}

// signalText names a signal the way crash headers do, e.g.
// "SIGUSR1: user defined signal 1".
func signalText(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return fmt.Sprintf("%s: %s", name, sig.String())
	}
	return sig.String()
}
