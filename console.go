package testkit

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// reporter receives run progress. consoleReporter is the production
// implementation; tests substitute their own.
type reporter interface {
	suiteStarted(total int)
	caseFinished(tc *TestCase, res *runResult)
	suiteFinished(passed, total int)
}

var (
	passStyle    = color.New(color.FgGreen)
	failStyle    = color.New(color.FgRed)
	timeoutStyle = color.New(color.FgYellow)
	abortStyle   = color.New(color.FgMagenta)
	faultStyle   = color.New(color.FgCyan)
	dumpStyle    = color.New(color.FgHiBlack)
)

// consoleReporter prints one line per test plus a final tally. Escape codes
// are emitted only when stdout is an interactive terminal; the color package
// handles that detection. In verbose mode the captured output of a failing
// case is dumped after its line, dimmed, with a trailing newline added if
// the capture lacked one; a case that produced no output shows a blank line.
type consoleReporter struct {
	out     io.Writer
	verbose bool
}

func (c *consoleReporter) suiteStarted(total int) {
	fmt.Fprint(c.out, "\nTestKit\n")
}

func (c *consoleReporter) caseFinished(tc *TestCase, res *runResult) {
	if res.passed() {
		fmt.Fprintf(c.out, "- [%s] %s (%s)\n",
			passStyle.Sprint("PASS"), tc.Name, tc.Location)
		return
	}
	fmt.Fprintf(c.out, "- [%s] %s (%s) - %s\n",
		failStyle.Sprint("FAIL"), tc.Name, tc.Location,
		reasonStyle(res).Sprint(res.reason()))
	if c.verbose {
		fmt.Fprint(c.out, dumpStyle.Sprint(res.output))
		if !strings.HasSuffix(res.output, "\n") {
			fmt.Fprintln(c.out)
		}
	}
}

func (c *consoleReporter) suiteFinished(passed, total int) {
	fmt.Fprintf(c.out, "- %d/%d test cases passed.\n", passed, total)
}

func reasonStyle(res *runResult) *color.Color {
	switch res.mode {
	case termTimeout:
		return timeoutStyle
	case termAborted:
		return abortStyle
	case termFaulted:
		return faultStyle
	}
	return failStyle
}
