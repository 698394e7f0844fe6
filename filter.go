package testkit

import (
	"os"
	"regexp"
)

// nameFilter restricts a run to a subset of case names. It is configured
// through TESTKIT_FILTER (must match) and TESTKIT_SKIP (must not match);
// with neither set there is no filter at all and every case runs.
type nameFilter struct {
	mustMatch    *regexp.Regexp
	mustNotMatch *regexp.Regexp
}

func filterFromEnv() *nameFilter {
	f := nameFilter{
		mustMatch:    compileEnvPattern(EnvFilter),
		mustNotMatch: compileEnvPattern(EnvSkip),
	}
	if f.mustMatch == nil && f.mustNotMatch == nil {
		return nil
	}
	return &f
}

func compileEnvPattern(env string) *regexp.Regexp {
	pattern := os.Getenv(env)
	if pattern == "" {
		return nil
	}
	rx, err := regexp.Compile(pattern)
	if err != nil {
		fatalf("invalid %s pattern %q: %v", env, pattern, err)
	}
	return rx
}

func (f *nameFilter) match(name string) bool {
	if f.mustMatch != nil && !f.mustMatch.MatchString(name) {
		return false
	}
	if f.mustNotMatch != nil && f.mustNotMatch.MatchString(name) {
		return false
	}
	return true
}
