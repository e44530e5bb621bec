package runtime

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/justapithecus/sigsplit/types"
)

func TestToolManager_Args(t *testing.T) {
	m := NewToolManager(&ToolConfig{
		Organism: types.OrganismGramPositive,
		Args:     []string{"-trunc", "70"},
	})
	c := types.Chunk{InputPath: "in.fa.0.tmp", ResultPath: "in.fa.0.tmp.out"}

	got := strings.Join(m.Args(c), " ")
	if want := "-short -t gram+ -trunc 70 in.fa.0.tmp"; got != want {
		t.Errorf("Args = %q, want %q", got, want)
	}
}

func TestToolManager_Command(t *testing.T) {
	tests := []struct {
		name   string
		config ToolConfig
		chunk  types.Chunk
		want   string
	}{
		{
			name:   "default path",
			config: ToolConfig{Organism: types.OrganismEukaryote},
			chunk:  types.Chunk{InputPath: "in.fa.0.tmp", ResultPath: "in.fa.0.tmp.out"},
			want:   "signalp -short -t euk in.fa.0.tmp > in.fa.0.tmp.out",
		},
		{
			name:   "quoted paths",
			config: ToolConfig{Path: "/opt/signalp 3.0/signalp", Organism: types.OrganismGramNegative},
			chunk:  types.Chunk{InputPath: "my data.fa.1.tmp", ResultPath: "my data.fa.1.tmp.out"},
			want:   "'/opt/signalp 3.0/signalp' -short -t gram- 'my data.fa.1.tmp' > 'my data.fa.1.tmp.out'",
		},
		{
			name:   "single quote escaped",
			config: ToolConfig{Organism: types.OrganismEukaryote},
			chunk:  types.Chunk{InputPath: "it's.0.tmp", ResultPath: "it's.0.tmp.out"},
			want:   `signalp -short -t euk 'it'\''s.0.tmp' > 'it'\''s.0.tmp.out'`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewToolManager(&tt.config).Command(tt.chunk); got != tt.want {
				t.Errorf("Command =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestToolManager_InvokeSuccess(t *testing.T) {
	tool := writeFakeTool(t)
	dir := t.TempDir()
	in := writeFasta(t, dir, "in.fa.0.tmp", "prot", 3)
	c := types.Chunk{Index: 0, InputPath: in, ResultPath: in + ".out"}

	m := NewToolManager(&ToolConfig{Path: tool, Organism: types.OrganismEukaryote})
	res, err := m.Invoke(t.Context(), c)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if !strings.Contains(res.Command, "-short -t euk") {
		t.Errorf("Command = %q", res.Command)
	}

	out, err := os.ReadFile(c.ResultPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 5 {
		t.Fatalf("result has %d lines, want 2 comments + 3 rows:\n%s", len(lines), out)
	}
	if fields := strings.Fields(lines[2]); len(fields) != 21 || fields[14] != "prot_0000" {
		t.Errorf("unexpected row %q", lines[2])
	}
}

func TestToolManager_InvokeFailure(t *testing.T) {
	tool := writeFakeTool(t)
	dir := t.TempDir()
	in := writeFasta(t, dir, "in.fa.2.tmp", "prot", 1)
	c := types.Chunk{Index: 2, InputPath: in, ResultPath: in + ".out"}

	m := NewToolManager(&ToolConfig{
		Path:     tool,
		Organism: types.OrganismEukaryote,
		Env:      map[string]string{"SIGSPLIT_FAIL_ON": "2"},
	})
	res, err := m.Invoke(t.Context(), c)
	if !errors.Is(err, types.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}

	var toolErr *types.ExternalToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *ExternalToolError, got %T", err)
	}
	if toolErr.ExitCode != 3 || res.ExitCode != 3 {
		t.Errorf("exit code = %d/%d, want 3", toolErr.ExitCode, res.ExitCode)
	}
	if toolErr.Command != m.Command(c) {
		t.Errorf("Command = %q, want %q", toolErr.Command, m.Command(c))
	}
	if !strings.Contains(toolErr.Stderr, "simulated failure") {
		t.Errorf("Stderr = %q", toolErr.Stderr)
	}
	if !strings.HasPrefix(err.Error(), "tool failed with exit code 3: ") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestToolManager_InvokeMissingBinary(t *testing.T) {
	dir := t.TempDir()
	in := writeFasta(t, dir, "in.fa.0.tmp", "prot", 1)
	c := types.Chunk{InputPath: in, ResultPath: in + ".out"}

	m := NewToolManager(&ToolConfig{Path: filepath.Join(dir, "no-such-signalp"), Organism: types.OrganismEukaryote})
	res, err := m.Invoke(t.Context(), c)
	if !errors.Is(err, types.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
}

func TestToolManager_EnvPassedThrough(t *testing.T) {
	tool := writeFakeTool(t)
	dir := t.TempDir()
	in := writeFasta(t, dir, "in.fa.0.tmp", "prot", 1)
	argsLog := filepath.Join(dir, "args.log")
	t.Setenv("SIGSPLIT_ARGS_LOG", filepath.Join(dir, "inherited.log"))

	m := NewToolManager(&ToolConfig{
		Path:     tool,
		Organism: types.OrganismGramNegative,
		Env:      map[string]string{"SIGSPLIT_ARGS_LOG": argsLog},
	})
	if _, err := m.Invoke(t.Context(), types.Chunk{InputPath: in, ResultPath: in + ".out"}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	data, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatalf("configured env did not override inherited value: %v", err)
	}
	if want := "-short -t gram- " + in; strings.TrimSpace(string(data)) != want {
		t.Errorf("argv = %q, want %q", strings.TrimSpace(string(data)), want)
	}
}

func TestDeduplicateEnv(t *testing.T) {
	got := deduplicateEnv([]string{"A=1", "B=2", "A=3", "C=4", "B=5"})
	want := []string{"A=3", "C=4", "B=5"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("deduplicateEnv = %v, want %v", got, want)
	}
}

func TestLimitedBuffer(t *testing.T) {
	b := limitedBuffer{limit: 5}
	n, err := b.Write([]byte("abc"))
	if n != 3 || err != nil {
		t.Fatalf("Write = %d, %v", n, err)
	}
	n, _ = b.Write([]byte("defgh"))
	if n != 5 {
		t.Errorf("Write must report the full length, got %d", n)
	}
	if got := b.String(); got != "abcde\n[stderr truncated]" {
		t.Errorf("String = %q", got)
	}
}
