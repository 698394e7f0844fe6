package testkit

import (
	"os"

	"github.com/nanshaqundao/testkit/logging"
)

// osExit is a variable so tests can intercept the child dispatch path, which
// must terminate the process without returning into the host's main.
var osExit = os.Exit

// runSuiteFn is swappable so Main's policy around the suite can be tested
// without re-executing the test binary.
var runSuiteFn = runSuite

// activated reports whether the environment opted in to test execution.
func activated() bool {
	return os.Getenv(EnvRun) != "" || os.Getenv(EnvVerbose) != ""
}

// Main is the harness's entry point, called by the host's main after all
// Register calls:
//
//	os.Exit(testkit.Main(run))
//
// It invokes host with os.Args and returns the host's exit code. When the
// environment opted in and cases are registered, the suite runs after the
// host returns; test results do not change the returned code unless
// WithExitOnFailure was given. host may be nil for a host with no logic of
// its own, which rules out System cases.
//
// In a child process spawned by the harness itself, Main executes the single
// marked case and exits directly; nothing after Main runs there.
func Main(host HostFunc, opts ...Option) int {
	logging.Initialize()

	if m, ok := childMarkerFromEnv(); ok {
		osExit(runChild(defaultRegistry, host, m, newConfig(opts)))
		return 0 // not reached; osExit only returns when stubbed in tests
	}

	code := 0
	if host != nil {
		code = host(os.Args)
	}
	if !activated() || defaultRegistry.size() == 0 {
		return code
	}
	if defaultRegistry.hasSystemCases() && host == nil {
		fatalf("system tests are registered but Main was given no host entry point")
	}

	cfg := newConfig(opts)
	s := runSuiteFn(defaultRegistry, cfg)
	if cfg.exitOnFailure && code == 0 && s.passed != s.total {
		return 1
	}
	return code
}
