package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justapithecus/sigsplit/lode"
)

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		{ViewStatsRun, true},
		{"schema", false},
		{"version", false},
		{"run", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			if got := IsTUISupported(tt.viewType); got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestRun_UnsupportedViewType(t *testing.T) {
	if err := Run("schema", nil); err == nil {
		t.Error("expected error for unsupported view type")
	}
}

func TestRenderStatsStatic_RunSummary(t *testing.T) {
	summary := &lode.RunSummary{
		RunID:           "run-001",
		Organism:        "eukaryote",
		Input:           "/data/in.fa",
		Output:          "/data/out.tsv",
		Outcome:         "tool_failure",
		Message:         "tool failed with exit code 3",
		Records:         1200,
		Chunks:          3,
		Invocations:     2,
		DurationMs:      2500,
		FilesRemoved:    5,
		CleanupFailures: 1,
	}

	out := RenderStatsStatic(ViewStatsRun, summary)
	for _, want := range []string{"run-001", "tool_failure", "1200", "Invocations", "/data/in.fa", "2.5s", "1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered view missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStatsStatic_WrongData(t *testing.T) {
	out := RenderStatsStatic(ViewStatsRun, "not a summary")
	if !strings.Contains(out, "Invalid data type") {
		t.Errorf("unexpected view: %s", out)
	}
}

func TestStatsModel_QuitKey(t *testing.T) {
	m := NewStatsModel(ViewStatsRun, &lode.RunSummary{})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if v := next.View(); v != "" {
		t.Errorf("View after quit = %q, want empty", v)
	}
}

func TestOutcomeStyle(t *testing.T) {
	if OutcomeStyle("success").GetForeground() != SuccessStyle.GetForeground() {
		t.Error("success should use the success color")
	}
	if OutcomeStyle("schema_violation").GetForeground() != ErrorStyle.GetForeground() {
		t.Error("failures should use the error color")
	}
}
