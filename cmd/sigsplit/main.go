// Package main provides the sigsplit CLI entrypoint.
//
// Usage:
//
//	sigsplit run [options] <organism> <input.fasta> <output.tsv>
//	sigsplit stats|schema|version [options]
//
// Exit codes for `run`:
//   - 0: success
//   - 1: internal error
//   - 2: configuration error
//   - 3: malformed FASTA input
//   - 4: prediction tool failure
//   - 5: tool output schema violation
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/sigsplit/cli/cmd"
	"github.com/justapithecus/sigsplit/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "sigsplit",
		Usage:          "Run signalp over large FASTA files in bounded chunks",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.RunCommand(),
			cmd.StatsCommand(),
			cmd.SchemaCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch handles unexpected errors that weren't wrapped.
		os.Exit(1)
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	os.Exit(reportExit(os.Stderr, err))
}

// reportExit prints the diagnostic for err to w and returns the exit code.
func reportExit(w io.Writer, err error) int {
	// Check for ExitCoder (from cli.Exit), handles wrapped errors
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N", so skip those
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(w, msg)
		}
		return code
	}

	// Unexpected error - print and exit with code 1
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}
