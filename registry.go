package testkit

import (
	"fmt"
	"os"
	"sync"
)

// maxTestCases caps the registry. Hitting the cap is a configuration error,
// never a silent drop.
const maxTestCases = 64

// registry is the ordered collection of registered cases. It is written only
// during host startup and read-only once execution starts; sealing turns any
// late Register into a fatal error instead of a mutation-during-iteration
// hazard.
type registry struct {
	cases  []TestCase
	sealed bool
}

var defaultRegistry = &registry{}

// fatalf reports a configuration error that makes the harness itself
// unusable and terminates the process. A variable so tests can intercept it.
var fatalf = func(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "testkit: "+format+"\n", args...)
	os.Exit(2)
}

func (r *registry) add(tc TestCase) {
	if r.sealed {
		fatalf("cannot register %q: the test run has already started", tc.Name)
	}
	if len(r.cases) >= maxTestCases {
		fatalf("cannot register %q: the harness supports up to %d test cases", tc.Name, maxTestCases)
	}
	if tc.Name == "" {
		fatalf("cannot register a test case without a name (registered at %s)", tc.Location)
	}
	switch tc.Kind {
	case Unit:
		if tc.Run == nil {
			fatalf("unit test %q has no Run callback", tc.Name)
		}
		if tc.Args != nil || tc.Check != nil {
			fatalf("unit test %q must not set Args or Check", tc.Name)
		}
	case System:
		if tc.Check == nil {
			fatalf("system test %q has no Check callback", tc.Name)
		}
		if tc.Run != nil {
			fatalf("system test %q must not set Run", tc.Name)
		}
		tc.argv = append([]string{selfPath()}, tc.Args...)
	default:
		fatalf("test %q has unknown kind %d", tc.Name, int(tc.Kind))
	}
	r.cases = append(r.cases, tc)
}

// all seals the registry and returns every case in registration order.
func (r *registry) all() []TestCase {
	r.sealed = true
	return r.cases
}

// at returns the case a child was told to execute. An index the parent never
// issued means registration diverged between parent and child.
func (r *registry) at(index int) *TestCase {
	if index < 0 || index >= len(r.cases) {
		fatalf("test index %d is out of range (%d registered); registration must be deterministic across processes", index, len(r.cases))
	}
	r.sealed = true
	return &r.cases[index]
}

func (r *registry) size() int { return len(r.cases) }

func (r *registry) hasSystemCases() bool {
	for i := range r.cases {
		if r.cases[i].Kind == System {
			return true
		}
	}
	return false
}

// releaseArgs drops the expanded argument vectors once the run is over.
func (r *registry) releaseArgs() {
	for i := range r.cases {
		r.cases[i].argv = nil
	}
}

// reset returns the registry to its pristine state. Test use only.
func (r *registry) reset() {
	r.cases = nil
	r.sealed = false
}

var (
	selfOnce sync.Once
	selfExe  string
	selfErr  error
)

// selfPath resolves the running executable once. It doubles as args[0] for
// System cases and as the spawn target for every isolated child, so failing
// to resolve it leaves the harness unable to run anything.
func selfPath() string {
	selfOnce.Do(func() {
		selfExe, selfErr = os.Executable()
	})
	if selfErr != nil {
		fatalf("cannot resolve the running executable, needed to spawn test processes: %v", selfErr)
	}
	return selfExe
}
