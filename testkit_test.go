package testkit

import (
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

// fatalPanic carries a fatalf message through a panic so tests can observe
// configuration errors without the process exiting.
type fatalPanic struct{ msg string }

// stubFatal replaces fatalf for the duration of a test. The replacement
// panics, preserving the real implementation's property of never returning.
func stubFatal(t *testing.T) {
	t.Helper()
	orig := fatalf
	fatalf = func(format string, args ...any) {
		panic(fatalPanic{msg: fmt.Sprintf(format, args...)})
	}
	t.Cleanup(func() { fatalf = orig })
}

// catchFatal runs fn, which must raise a configuration error through the
// stubbed fatalf, and returns its message.
func catchFatal(t *testing.T, fn func()) (msg string) {
	t.Helper()
	defer func() {
		v := recover()
		if v == nil {
			t.Fatal("expected a fatal configuration error")
		}
		fp, ok := v.(fatalPanic)
		if !ok {
			panic(v)
		}
		msg = fp.msg
	}()
	fn()
	return ""
}

// exitFatalPanic carries the signal a stubbed exitFatal would have encoded.
type exitFatalPanic struct{ sig syscall.Signal }

func stubExitFatal(t *testing.T) {
	t.Helper()
	orig := exitFatal
	exitFatal = func(sig syscall.Signal) {
		panic(exitFatalPanic{sig: sig})
	}
	t.Cleanup(func() { exitFatal = orig })
}

// catchExitFatal runs fn, which must end the child through the stubbed
// exitFatal, and returns the signal its exit status would have encoded.
func catchExitFatal(t *testing.T, fn func()) (sig syscall.Signal) {
	t.Helper()
	defer func() {
		v := recover()
		if v == nil {
			t.Fatal("expected the child to end with a fatal exit")
		}
		ep, ok := v.(exitFatalPanic)
		if !ok {
			panic(v)
		}
		sig = ep.sig
	}()
	fn()
	return 0
}

func resetDefaultRegistry(t *testing.T) {
	t.Helper()
	defaultRegistry.reset()
	t.Cleanup(func() { defaultRegistry.reset() })
}

func resetFailFlag(t *testing.T) {
	t.Helper()
	childFailed.Store(false)
	t.Cleanup(func() { childFailed.Store(false) })
}

// captureStderr redirects the process stderr around fn and returns what was
// written there.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return captureFile(t, &os.Stderr, fn)
}

// captureStdout does the same for stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	return captureFile(t, &os.Stdout, fn)
}

func captureFile(t *testing.T, f **os.File, fn func()) string {
	t.Helper()
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	orig := *f
	*f = pw

	var out strings.Builder
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = io.Copy(&out, pr)
	}()

	fn()

	*f = orig
	_ = pw.Close()
	<-done
	_ = pr.Close()
	return out.String()
}
