// Command testkit-demo is a small text utility wired into the testkit
// harness, kept here as a working example of the bootstrap contract. Normal
// runs behave like any CLI:
//
//	testkit-demo sum 1 2 3
//
// With TESTKIT_RUN=1 or TESTKIT_VERBOSE=1 in the environment, the registered
// test cases run after the command itself finishes.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"github.com/nanshaqundao/testkit"
)

type cli struct {
	Sum  sumCmd  `cmd:"" help:"Print the sum of the integer arguments."`
	Echo echoCmd `cmd:"" help:"Print each argument on its own line."`
}

type sumCmd struct {
	Values []int `arg:"" help:"Integers to add."`
}

func (c *sumCmd) Run() error {
	fmt.Println(sum(c.Values))
	return nil
}

type echoCmd struct {
	Words []string `arg:"" optional:"" help:"Words to print."`
}

func (c *echoCmd) Run() error {
	for _, w := range c.Words {
		fmt.Println(w)
	}
	return nil
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// run is the host entry point; the harness re-invokes it for system tests.
func run(args []string) int {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("testkit-demo"),
		kong.Description("Tiny text tool demonstrating the testkit harness."),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	kctx, err := parser.Parse(args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := kctx.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

var scratch = filepath.Join(os.TempDir(), "testkit-demo.scratch")

func registerTests() {
	testkit.Register(testkit.TestCase{
		Name: "sum adds",
		Run: func() {
			testkit.Assert(sum([]int{2, 2}) == 4, "sum(2, 2) = %d", sum([]int{2, 2}))
		},
	})
	testkit.Register(testkit.TestCase{
		Name: "sum of nothing is zero",
		Run: func() {
			require.Equal(testkit.T{}, 0, sum(nil))
		},
	})
	testkit.Register(testkit.TestCase{
		Name: "sum command prints the total",
		Kind: testkit.System,
		Args: []string{"sum", "1", "2", "3"},
		Check: func(r *testkit.HostResult) {
			testkit.Assert(r.ExitStatus == 0, "exit status %d", r.ExitStatus)
			testkit.Assert(r.Output == "6\n", "unexpected output %q", r.Output)
		},
	})
	testkit.Register(testkit.TestCase{
		Name: "echo round-trips words",
		Kind: testkit.System,
		Args: []string{"echo", "alpha", "beta"},
		Check: func(r *testkit.HostResult) {
			tk := testkit.T{}
			require.Equal(tk, 0, r.ExitStatus)
			require.Equal(tk, "alpha\nbeta\n", r.Output)
		},
	})
	testkit.Register(testkit.TestCase{
		Name: "unknown command is rejected",
		Kind: testkit.System,
		Args: []string{"frobnicate"},
		Check: func(r *testkit.HostResult) {
			testkit.Assert(r.ExitStatus != 0, "want a non-zero exit, got %d", r.ExitStatus)
		},
	})
	testkit.Register(testkit.TestCase{
		Name: "scratch file lifecycle",
		Init: func() {
			err := os.WriteFile(scratch, []byte("seed\n"), 0o644)
			testkit.Assert(err == nil, "cannot seed %s: %v", scratch, err)
		},
		Run: func() {
			data, err := os.ReadFile(scratch)
			testkit.Assert(err == nil, "cannot read %s: %v", scratch, err)
			testkit.Assert(string(data) == "seed\n", "unexpected scratch content %q", data)
		},
		Fini: func() {
			_ = os.Remove(scratch)
		},
	})
}

func main() {
	registerTests()
	os.Exit(testkit.Main(run))
}
