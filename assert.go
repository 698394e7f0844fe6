package testkit

import (
	"fmt"
	"os"
	"sync/atomic"
	"syscall"
)

// childFailed records failures reported through T.Errorf. The child checks
// it after the test body returns and aborts, so a body that only recorded
// failures still ends up classified as an assertion failure.
var childFailed atomic.Bool

// Assert is the harness's assertion primitive. When cond is false it prints
// the formatted message to stderr and aborts the process, which the parent
// classifies as "Assertion fail". It is only meaningful inside a test
// callback, where the process is an expendable child.
func Assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	fmt.Fprintf(os.Stderr, "Assertion fail: "+format+"\n", args...)
	exitFatal(syscall.SIGABRT)
}

// T lets test callbacks use the testify assertion packages: it implements
// the subset of testing.T that assert and require need. Errorf records the
// failure and lets the body continue, so multiple assert violations all get
// printed before the child aborts; FailNow aborts on the spot, which is what
// require does after printing its message.
//
//	tk := testkit.T{}
//	require.Equal(tk, want, got)
type T struct{}

func (T) Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	childFailed.Store(true)
}

func (T) FailNow() {
	exitFatal(syscall.SIGABRT)
}

// Logf writes to the captured output, for ad-hoc diagnostics in callbacks.
func (T) Logf(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}
