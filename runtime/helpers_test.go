package runtime

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// fakeToolScript stands in for the predictor. It prints a comment header and
// one 21-field line per FASTA header of its last argument. When
// SIGSPLIT_FAIL_ON names a chunk ordinal, that chunk fails with exit 3.
// When SIGSPLIT_ARGS_LOG is set, each argv is appended to it.
const fakeToolScript = `#!/bin/sh
for last; do :; done
if [ -n "$SIGSPLIT_ARGS_LOG" ]; then
	echo "$@" >> "$SIGSPLIT_ARGS_LOG"
fi
case "$last" in
	*".${SIGSPLIT_FAIL_ON:-none}.tmp")
		echo "fake signalp: simulated failure" >&2
		exit 3
		;;
esac
echo "# SignalP-NN euk predictions"
echo "# name Cmax pos ? Ymax pos ? Smax pos ? Smean ? D ? # name ! Cmax pos ? Sprob ?"
awk '/^>/ { id = substr($1, 2); t = substr(id, 1, 20); printf "%s 0.152 23 N 0.213 23 N 0.489 16 N 0.190 N 0.201 N %s Q 0.000 23 N 0.000 N\n", t, id }' "$last"
`

// writeFakeTool installs the fake predictor in a temp dir and returns its path.
func writeFakeTool(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	if _, err := exec.LookPath("awk"); err != nil {
		t.Skip("awk not available")
	}
	path := filepath.Join(t.TempDir(), "signalp")
	if err := os.WriteFile(path, []byte(fakeToolScript), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeFasta writes n records titled "<prefix>_<i> description" with
// sequences of 80 residues.
func writeFasta(t *testing.T, dir, name, prefix string, n int) string {
	t.Helper()
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, ">%s_%04d some protein description\n", prefix, i)
		b.WriteString(strings.Repeat("MKVLAAGIVA", 4) + "\n")
		b.WriteString(strings.Repeat("LLAAPSQAES", 4) + "\n")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// listDir returns the sorted base names in dir.
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
