package main

import (
	"io"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v1.0.0"

func main() {
	os.Exit(runMain(os.Args, os.Stdout, os.Stderr, newApp()))
}

// runMain executes the root command and returns the process exit code.
// Install failures have already been reported as an annotation by then;
// cobra usage errors are printed to stderr.
func runMain(args []string, stdout, stderr io.Writer, a *app) int {
	a.stdout = stdout
	a.stderr = stderr

	cmd := newRootCmd(a)
	cmd.Version = Version
	cmd.SetVersionTemplate("setup-steamcmd {{.Version}}\n")
	if len(args) > 1 {
		cmd.SetArgs(args[1:])
	} else {
		cmd.SetArgs([]string{})
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if a.reporter != nil && a.reporter.ExitCode() != 0 {
			return a.reporter.ExitCode()
		}
		return 1
	}
	return 0
}
