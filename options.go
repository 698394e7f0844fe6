package testkit

import (
	"io"
	"os"
	"strconv"
	"time"
)

// Defaults for the tunables an Option or environment variable can override.
const (
	defaultTimeout     = 5 * time.Second
	defaultOutputLimit = 64 * 1024
)

// config is the resolved run configuration. Options apply first, then
// environment overrides, so whoever launches the binary has the last word.
type config struct {
	timeout       time.Duration
	outputLimit   int
	out           io.Writer
	verbose       bool
	exitOnFailure bool
	filter        *nameFilter
	reportPath    string
}

// Option adjusts harness behavior; options are passed to Main.
type Option func(*config)

// WithTimeout sets the wall-clock budget for each isolated child. The
// TESTKIT_TIMEOUT environment variable overrides it at run time.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithOutputLimit caps how many captured bytes are kept per child; anything
// beyond the cap is dropped.
func WithOutputLimit(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.outputLimit = n
		}
	}
}

// WithOutput redirects the harness's console report, which goes to stdout by
// default.
func WithOutput(w io.Writer) Option {
	return func(cfg *config) {
		if w != nil {
			cfg.out = w
		}
	}
}

// WithExitOnFailure makes Main return 1 when any test failed and the host
// itself returned 0. By default test results leave the host's exit status
// untouched.
func WithExitOnFailure() Option {
	return func(cfg *config) {
		cfg.exitOnFailure = true
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		timeout:     defaultTimeout,
		outputLimit: defaultOutputLimit,
		out:         os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.verbose = os.Getenv(EnvVerbose) != ""
	if v := os.Getenv(EnvTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			fatalf("invalid %s value %q: want a positive number of seconds", EnvTimeout, v)
		}
		cfg.timeout = time.Duration(secs) * time.Second
	}
	cfg.filter = filterFromEnv()
	cfg.reportPath = os.Getenv(EnvReport)
	return cfg
}
