// Package testkit is a process-isolated test harness. A host program
// registers test cases while it starts up, runs its own logic, and then hands
// control to the harness, which executes every registered case in a child
// process of its own, captures everything the case prints, enforces a
// wall-clock timeout, and classifies how the child terminated (clean exit,
// timeout, assertion abort, memory fault, or another signal). Results are
// reported one line per case, with captured output dumped for failures in
// verbose mode.
//
// The harness stays inert unless TESTKIT_RUN or TESTKIT_VERBOSE is present in
// the environment, so shipping registration calls in a production binary has
// no effect on normal runs.
//
// A minimal host looks like this:
//
//	func main() {
//		testkit.Register(testkit.TestCase{
//			Name: "sum adds",
//			Run:  func() { testkit.Assert(sum(2, 2) == 4, "sum(2, 2) = %d", sum(2, 2)) },
//		})
//		testkit.Register(testkit.TestCase{
//			Name: "usage on bad args",
//			Kind: testkit.System,
//			Args: []string{"--bogus"},
//			Check: func(r *testkit.HostResult) {
//				testkit.Assert(r.ExitStatus != 0, "want a non-zero exit, got %d", r.ExitStatus)
//			},
//		})
//		os.Exit(testkit.Main(run))
//	}
//
// where run is the host's real entry point with signature
// func(args []string) int. Isolation works by re-executing the current
// binary: the child runs the same registration calls, sees a marker in its
// environment, and executes exactly one case instead of the host logic.
// Registration must therefore be deterministic so parent and child build
// identical registries.
package testkit

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Environment variables that make up the harness's external interface. The
// first two are activation toggles; the rest tune a run. Any non-empty value
// counts as set.
const (
	// EnvRun enables test execution after the host logic finishes.
	EnvRun = "TESTKIT_RUN"
	// EnvVerbose enables test execution and additionally dumps the captured
	// output of every failing case.
	EnvVerbose = "TESTKIT_VERBOSE"
	// EnvTimeout overrides the per-child timeout, in whole seconds.
	EnvTimeout = "TESTKIT_TIMEOUT"
	// EnvFilter restricts the run to cases whose name matches the regular
	// expression.
	EnvFilter = "TESTKIT_FILTER"
	// EnvSkip excludes cases whose name matches the regular expression.
	EnvSkip = "TESTKIT_SKIP"
	// EnvReport makes the harness write a JSON run report to the given path.
	EnvReport = "TESTKIT_REPORT"
)

// Markers the parent puts in a child's environment to select the case and
// stage that child should execute instead of the host logic.
const (
	envChildIndex = "TESTKIT_CHILD_INDEX"
	envChildStage = "TESTKIT_CHILD_STAGE"
)

// Kind distinguishes the two test flavors.
type Kind int

const (
	// Unit cases run the Run callback; completing it cleanly is a pass.
	Unit Kind = iota
	// System cases re-invoke the host's entry point with the Args vector and
	// hand the exit code and captured output to Check.
	System
)

func (k Kind) String() string {
	switch k {
	case Unit:
		return "unit"
	case System:
		return "system"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// HostFunc is the host program's programmatic entry point: it receives a full
// argument vector (args[0] included) and returns the process exit code it
// would have exited with. It must return rather than call os.Exit, or the
// harness never gets control back.
type HostFunc func(args []string) int

// HostResult is handed to a System case's Check callback after the host entry
// point returns.
type HostResult struct {
	// ExitStatus is the code the entry point returned.
	ExitStatus int
	// Output is everything the entry point wrote to stdout and stderr,
	// interleaved in write order.
	Output string
}

// TestCase describes one test. Zero-valued optional fields are simply unused.
type TestCase struct {
	// Name identifies the case in reports. Required. Uniqueness is not
	// enforced but duplicate names make reports ambiguous.
	Name string
	// Location is a free-form origin marker for diagnostics, typically
	// file:line. Register fills it with the caller's position when empty.
	Location string
	// Kind selects unit or system execution. The zero value is Unit.
	Kind Kind
	// Init runs in the child before the test body. A crash here fails the
	// case like a crash in the body would.
	Init func()
	// Run is the test body of a Unit case. Required for Unit, rejected for
	// System.
	Run func()
	// Args are the arguments after args[0] for a System case's host
	// invocation. The harness prepends the resolved path of the running
	// executable as args[0].
	Args []string
	// Check inspects a System case's outcome. Required for System, rejected
	// for Unit. Assertion failures inside it abort the child so they are
	// distinguishable from an intentionally non-zero ExitStatus.
	Check func(*HostResult)
	// Fini is an optional cleanup hook, run in a separate child after the
	// verdict is already fixed, whether the case passed or failed.
	Fini func()

	// argv is the expanded System argument vector, resolved at registration.
	argv []string
}

// Register appends a case to the registry. It is a no-op unless the harness
// is activated through the environment, so hosts can register
// unconditionally. Malformed cases (missing Name, a Unit case with Args or
// Check, a System case with Run or no Check, registry overflow) are fatal
// configuration errors, as is registering once the run has started.
//
// Register is meant to be called from the host's startup path, before
// Main; it is not safe for concurrent use.
func Register(tc TestCase) {
	if !activated() {
		return
	}
	if tc.Location == "" {
		if _, file, line, ok := runtime.Caller(1); ok {
			tc.Location = fmt.Sprintf("%s:%d", filepath.Base(file), line)
		}
	}
	defaultRegistry.add(tc)
}
