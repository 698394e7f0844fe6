package testkit

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearRunEnv blanks every harness variable so a test sees none of the
// launching environment's settings. Empty values count as unset.
func clearRunEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{EnvRun, EnvVerbose, EnvTimeout, EnvFilter, EnvSkip, EnvReport} {
		t.Setenv(env, "")
	}
}

func TestConfigDefaults(t *testing.T) {
	clearRunEnv(t)

	cfg := newConfig(nil)

	assert.Equal(t, 5*time.Second, cfg.timeout)
	assert.Equal(t, 64*1024, cfg.outputLimit)
	assert.Equal(t, os.Stdout, cfg.out)
	assert.False(t, cfg.verbose)
	assert.False(t, cfg.exitOnFailure)
	assert.Nil(t, cfg.filter)
	assert.Empty(t, cfg.reportPath)
}

func TestConfigAppliesOptions(t *testing.T) {
	clearRunEnv(t)
	var buf bytes.Buffer

	cfg := newConfig([]Option{
		WithTimeout(2 * time.Second),
		WithOutputLimit(128),
		WithOutput(&buf),
		WithExitOnFailure(),
	})

	assert.Equal(t, 2*time.Second, cfg.timeout)
	assert.Equal(t, 128, cfg.outputLimit)
	assert.Equal(t, &buf, cfg.out)
	assert.True(t, cfg.exitOnFailure)
}

func TestConfigIgnoresUselessOptionValues(t *testing.T) {
	clearRunEnv(t)

	cfg := newConfig([]Option{
		WithTimeout(0),
		WithTimeout(-time.Second),
		WithOutputLimit(0),
		WithOutput(nil),
	})

	assert.Equal(t, defaultTimeout, cfg.timeout)
	assert.Equal(t, defaultOutputLimit, cfg.outputLimit)
	assert.Equal(t, os.Stdout, cfg.out)
}

func TestConfigEnvTimeoutHasTheLastWord(t *testing.T) {
	clearRunEnv(t)
	t.Setenv(EnvTimeout, "30")

	cfg := newConfig([]Option{WithTimeout(2 * time.Second)})

	assert.Equal(t, 30*time.Second, cfg.timeout)
}

func TestConfigRejectsBadTimeout(t *testing.T) {
	for _, bad := range []string{"0", "-5", "soon", "1.5"} {
		t.Run(bad, func(t *testing.T) {
			clearRunEnv(t)
			t.Setenv(EnvTimeout, bad)
			stubFatal(t)

			msg := catchFatal(t, func() { newConfig(nil) })

			assert.Contains(t, msg, EnvTimeout)
			assert.Contains(t, msg, bad)
		})
	}
}

func TestConfigReadsVerboseFilterAndReportFromEnv(t *testing.T) {
	clearRunEnv(t)
	t.Setenv(EnvVerbose, "1")
	t.Setenv(EnvFilter, "^stream")
	t.Setenv(EnvReport, "/tmp/testkit-report.json")

	cfg := newConfig(nil)

	assert.True(t, cfg.verbose)
	require.NotNil(t, cfg.filter)
	assert.True(t, cfg.filter.match("stream reconnects"))
	assert.Equal(t, "/tmp/testkit-report.json", cfg.reportPath)
}
