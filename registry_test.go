package testkit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsInertWithoutActivation(t *testing.T) {
	resetDefaultRegistry(t)
	t.Setenv(EnvRun, "")
	t.Setenv(EnvVerbose, "")

	Register(TestCase{Name: "ignored", Run: func() {}})

	require.Zero(t, defaultRegistry.size())
}

func TestRegisterStoresCasesInOrder(t *testing.T) {
	resetDefaultRegistry(t)
	t.Setenv(EnvRun, "1")

	Register(TestCase{Name: "first", Run: func() {}})
	Register(TestCase{Name: "second", Run: func() {}})

	require.Equal(t, 2, defaultRegistry.size())
	assert.Equal(t, "first", defaultRegistry.cases[0].Name)
	assert.Equal(t, "second", defaultRegistry.cases[1].Name)
}

func TestRegisterActivatesInVerboseMode(t *testing.T) {
	resetDefaultRegistry(t)
	t.Setenv(EnvVerbose, "1")

	Register(TestCase{Name: "stored", Run: func() {}})

	require.Equal(t, 1, defaultRegistry.size())
}

func TestRegisterFillsCallerLocation(t *testing.T) {
	resetDefaultRegistry(t)
	t.Setenv(EnvRun, "1")

	Register(TestCase{Name: "located", Run: func() {}})

	assert.Regexp(t, `^registry_test\.go:\d+$`, defaultRegistry.cases[0].Location)
}

func TestRegisterKeepsExplicitLocation(t *testing.T) {
	resetDefaultRegistry(t)
	t.Setenv(EnvRun, "1")

	Register(TestCase{Name: "located", Location: "origin.c:12", Run: func() {}})

	assert.Equal(t, "origin.c:12", defaultRegistry.cases[0].Location)
}

func TestRegistryExpandsSystemArgs(t *testing.T) {
	reg := &registry{}
	reg.add(TestCase{
		Name:  "sys",
		Kind:  System,
		Args:  []string{"serve", "--port", "0"},
		Check: func(*HostResult) {},
	})

	argv := reg.cases[0].argv
	require.Len(t, argv, 4)
	assert.Equal(t, selfPath(), argv[0])
	assert.Equal(t, []string{"serve", "--port", "0"}, argv[1:])
}

func TestRegistryExpandsEmptySystemArgs(t *testing.T) {
	reg := &registry{}
	reg.add(TestCase{Name: "sys", Kind: System, Check: func(*HostResult) {}})

	require.Equal(t, []string{selfPath()}, reg.cases[0].argv)
}

func TestRegistryValidation(t *testing.T) {
	stubFatal(t)

	check := func(*HostResult) {}

	t.Run("empty name", func(t *testing.T) {
		reg := &registry{}
		msg := catchFatal(t, func() { reg.add(TestCase{Run: func() {}}) })
		assert.Contains(t, msg, "without a name")
	})
	t.Run("unit without a body", func(t *testing.T) {
		reg := &registry{}
		msg := catchFatal(t, func() { reg.add(TestCase{Name: "u"}) })
		assert.Contains(t, msg, "no Run callback")
	})
	t.Run("unit with args", func(t *testing.T) {
		reg := &registry{}
		msg := catchFatal(t, func() {
			reg.add(TestCase{Name: "u", Run: func() {}, Args: []string{"x"}})
		})
		assert.Contains(t, msg, "must not set Args or Check")
	})
	t.Run("unit with a check", func(t *testing.T) {
		reg := &registry{}
		msg := catchFatal(t, func() {
			reg.add(TestCase{Name: "u", Run: func() {}, Check: check})
		})
		assert.Contains(t, msg, "must not set Args or Check")
	})
	t.Run("system without a check", func(t *testing.T) {
		reg := &registry{}
		msg := catchFatal(t, func() { reg.add(TestCase{Name: "s", Kind: System}) })
		assert.Contains(t, msg, "no Check callback")
	})
	t.Run("system with a unit body", func(t *testing.T) {
		reg := &registry{}
		msg := catchFatal(t, func() {
			reg.add(TestCase{Name: "s", Kind: System, Check: check, Run: func() {}})
		})
		assert.Contains(t, msg, "must not set Run")
	})
	t.Run("unknown kind", func(t *testing.T) {
		reg := &registry{}
		msg := catchFatal(t, func() {
			reg.add(TestCase{Name: "k", Kind: Kind(7), Run: func() {}})
		})
		assert.Contains(t, msg, "unknown kind")
	})
}

func TestRegistryCapacity(t *testing.T) {
	stubFatal(t)

	reg := &registry{}
	for i := 0; i < maxTestCases; i++ {
		reg.add(TestCase{Name: fmt.Sprintf("case-%d", i), Run: func() {}})
	}
	require.Equal(t, maxTestCases, reg.size())

	msg := catchFatal(t, func() { reg.add(TestCase{Name: "overflow", Run: func() {}}) })
	assert.Contains(t, msg, fmt.Sprintf("up to %d test cases", maxTestCases))
}

func TestRegistrySealsOnFirstRead(t *testing.T) {
	stubFatal(t)

	reg := &registry{}
	reg.add(TestCase{Name: "early", Run: func() {}})
	require.Len(t, reg.all(), 1)

	msg := catchFatal(t, func() { reg.add(TestCase{Name: "late", Run: func() {}}) })
	assert.Contains(t, msg, "already started")
}

func TestRegistryIndexLookup(t *testing.T) {
	stubFatal(t)

	reg := &registry{}
	reg.add(TestCase{Name: "only", Run: func() {}})

	require.Equal(t, "only", reg.at(0).Name)

	msg := catchFatal(t, func() { reg.at(1) })
	assert.Contains(t, msg, "out of range")
	msg = catchFatal(t, func() { reg.at(-1) })
	assert.Contains(t, msg, "out of range")
}

func TestRegistryHasSystemCases(t *testing.T) {
	reg := &registry{}
	reg.add(TestCase{Name: "u", Run: func() {}})
	assert.False(t, reg.hasSystemCases())

	reg.add(TestCase{Name: "s", Kind: System, Check: func(*HostResult) {}})
	assert.True(t, reg.hasSystemCases())
}

func TestRegistryReleaseArgs(t *testing.T) {
	reg := &registry{}
	reg.add(TestCase{Name: "s", Kind: System, Check: func(*HostResult) {}})
	require.NotNil(t, reg.cases[0].argv)

	reg.releaseArgs()
	assert.Nil(t, reg.cases[0].argv)
}
