package app

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/emenda-labs/pyapi/core/breaks"
)

// Exact user-facing strings; tooling downstream matches on them.
const (
	msgNoBreaks         = "No Python API breaks found."
	msgNoBreaksToAccept = "No Python API breaks found to accept."
	msgReleaseSkip      = "Current version is the same as the previous version, this is a release version, skipping analysis."
)

var (
	headerColor = color.New(color.FgRed, color.Underline)
	breakColor  = color.New(color.FgHiRed)
	hintColor   = color.New(color.FgCyan)
	errorColor  = color.New(color.FgRed)
)

// printBreakReport lists every remaining break in diff order, then shows
// ready-to-copy accept commands. The accept-one hint always references the
// first reported break. Color resets land before each trailing newline so
// colored output stays line-structured byte for byte.
func (a *App) printBreakReport(project string, remaining []breaks.Break) {
	fmt.Fprintln(a.Out, headerColor.Sprintf("\nPython API breaks found in %s:", project))
	for _, b := range remaining {
		fmt.Fprintln(a.Out, breakColor.Sprint(b.Code))
	}
	fmt.Fprintln(a.Out, "You can accept an API break via:")
	fmt.Fprintln(a.Out, hintColor.Sprintf("  pyapi acceptBreak \"%s\" \":justification:\"", remaining[0].Code))
	fmt.Fprintln(a.Out, "or all API breaks via:")
	fmt.Fprintln(a.Out, hintColor.Sprint("  pyapi acceptAllBreaks \":justification:\""))
}

// printFetchFailure names the unobtainable distribution and points the
// operator at the version-override remediation.
func (a *App) printFetchFailure(project, version string) {
	fmt.Fprintf(a.Out, "Failed to download %s %s from Python index.\n", project, version)
	fmt.Fprintln(a.Out, "If the above version was tagged but failed to publish, apply a version override via:")
	fmt.Fprintln(a.Out, "  pyapi versionOverride <last-published-version>")
}
