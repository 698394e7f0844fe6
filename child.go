package testkit

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"

	"github.com/nanshaqundao/testkit/logging"
)

// Child execution stages.
const (
	stageTest    = "test"
	stageCleanup = "cleanup"
)

// childMarker identifies the single case a child process must execute.
type childMarker struct {
	index int
	stage string
}

func childMarkerFromEnv() (childMarker, bool) {
	v := os.Getenv(envChildIndex)
	if v == "" {
		return childMarker{}, false
	}
	index, err := strconv.Atoi(v)
	if err != nil || index < 0 {
		fatalf("invalid %s value %q", envChildIndex, v)
	}
	stage := os.Getenv(envChildStage)
	if stage == "" {
		stage = stageTest
	}
	if stage != stageTest && stage != stageCleanup {
		fatalf("invalid %s value %q", envChildStage, stage)
	}
	return childMarker{index: index, stage: stage}, true
}

// runChild executes one case inside an already-isolated child process and
// returns the exit code the child should finish with. A panic anywhere in
// the case's callbacks is translated into the exit encoding the parent-side
// classification expects.
func runChild(reg *registry, host HostFunc, m childMarker, cfg *config) int {
	tc := reg.at(m.index)
	if m.stage == stageTest && tc.Kind == System && host == nil {
		fatalf("system test %q needs a host entry point; pass one to Main", tc.Name)
	}
	defer translatePanic(tc.Name, os.Stderr)
	logging.Logger.Debug("child executing",
		"test", tc.Name, "stage", m.stage, "kind", tc.Kind.String())

	if m.stage == stageCleanup {
		if tc.Fini != nil {
			tc.Fini()
		}
		return 0
	}

	if tc.Init != nil {
		tc.Init()
	}
	code := 0
	switch tc.Kind {
	case Unit:
		tc.Run()
	case System:
		code = invokeHost(tc, host, cfg.outputLimit)
	}
	if childFailed.Load() {
		failChild(tc.Name)
	}
	return code
}

// invokeHost runs the host entry point in-process with the case's expanded
// argument vector, capturing what it writes so Check can inspect the text.
// The captured bytes are replayed to the real stdout afterwards, so the
// parent's capture of this child carries the same output.
func invokeHost(tc *TestCase, host HostFunc, limit int) int {
	pr, pw, err := os.Pipe()
	if err != nil {
		fatalf("cannot create a capture pipe for %q: %v", tc.Name, err)
	}
	buf := newOutputBuffer(limit)
	origOut, origErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = pw, pw
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		_, _ = io.Copy(buf, pr)
	}()

	restored := false
	restore := func() {
		if restored {
			return
		}
		restored = true
		os.Stdout, os.Stderr = origOut, origErr
		_ = pw.Close()
		<-drained
		_ = pr.Close()
		_, _ = os.Stdout.Write(buf.Bytes())
	}
	// Restore on the panic path too, so partial output still reaches the
	// parent before the crash dump does.
	defer restore()

	code := host(tc.argv)
	restore()

	// Check judges the outcome; an intentionally non-zero code is not by
	// itself a failure once a check is in play, so the child exits 0 unless
	// the check aborts.
	tc.Check(&HostResult{ExitStatus: code, Output: buf.String()})
	return 0
}

// translatePanic converts a panic escaping a test callback into the exit
// encoding the parent-side classification understands: memory faults become
// SIGSEGV, everything else SIGABRT. The message and stack go to the stderr
// this child started with, not to any stream swapped in since.
func translatePanic(name string, stderr io.Writer) {
	v := recover()
	if v == nil {
		return
	}
	fmt.Fprintf(stderr, "panic in %s: %v\n\n%s", name, v, debug.Stack())
	sig := syscall.SIGABRT
	if isMemoryFault(v) {
		sig = syscall.SIGSEGV
	}
	exitFatal(sig)
}

// isMemoryFault reports whether a recovered value is the runtime's nil
// dereference error, the one panic that corresponds to a memory fault.
func isMemoryFault(v any) bool {
	err, ok := v.(runtime.Error)
	return ok && strings.Contains(err.Error(), "invalid memory address")
}

// failChild ends a child whose case recorded failures through T instead of
// aborting at the first one.
func failChild(name string) {
	fmt.Fprintf(os.Stderr, "%s: test failed\n", name)
	exitFatal(syscall.SIGABRT)
}
