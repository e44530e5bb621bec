package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

// fakeSignalP prints one short-format line per FASTA header of its last
// argument and fails with exit 7 when FAKE_SIGNALP_FAIL is set.
const fakeSignalP = `#!/bin/sh
for last; do :; done
if [ -n "$FAKE_SIGNALP_FAIL" ]; then
	echo "fake signalp: model files not found" >&2
	exit 7
fi
echo "# SignalP-NN euk predictions"
awk '/^>/ { id = substr($1, 2); printf "%s 0.152 23 N 0.213 23 N 0.489 16 N 0.190 N 0.201 N %s Q 0.000 23 N 0.000 N\n", substr(id, 1, 20), id }' "$last"
`

func writeFakeSignalP(t *testing.T) string {
	t.Helper()
	for _, bin := range []string{"sh", "awk"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available", bin)
		}
	}
	path := filepath.Join(t.TempDir(), "signalp")
	if err := os.WriteFile(path, []byte(fakeSignalP), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTestFasta(t *testing.T, dir string, n int) string {
	t.Helper()
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, ">protein_%03d hypothetical\n", i)
		b.WriteString(strings.Repeat("MKKLLAVAAS", 8) + "\n")
	}
	path := filepath.Join(dir, "in.fa")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestApp creates a cli.App with the commands wired up and ExitErrHandler
// suppressed so errors are returned instead of calling os.Exit.
func newTestApp() (*cli.App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	app := cli.NewApp()
	app.Name = "sigsplit"
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Commands = []*cli.Command{
		RunCommand(),
		StatsCommand(),
		SchemaCommand(),
		VersionCommand("test"),
	}
	app.ExitErrHandler = func(*cli.Context, error) {} // suppress os.Exit
	return app, &stdout, &stderr
}

// exitCode returns the exit code carried by err, 0 for nil.
func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	ec, ok := err.(cli.ExitCoder)
	if !ok {
		t.Fatalf("error %v (%T) does not carry an exit code", err, err)
	}
	return ec.ExitCode()
}
