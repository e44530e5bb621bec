package runtime

import (
	"errors"
	"fmt"
	"testing"

	"github.com/justapithecus/sigsplit/types"
)

func TestDetermineOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.OutcomeStatus
	}{
		{"success", nil, types.OutcomeSuccess},
		{"configuration", &types.ConfigurationError{Msg: "bad organism"}, types.OutcomeConfigError},
		{"malformed", &types.MalformedInputError{Line: 1, Text: "MKV", Reason: "sequence data before first header"}, types.OutcomeMalformedInput},
		{"tool", &types.ExternalToolError{Command: "signalp", ExitCode: 1}, types.OutcomeToolFailure},
		{"schema", fmt.Errorf("merge: %w", &types.SchemaViolationError{Reason: "expected 21 fields, got 4"}), types.OutcomeSchemaViolation},
		{"internal", errors.New("disk full"), types.OutcomeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineOutcome(tt.err, 2, 10).Status; got != tt.want {
				t.Errorf("Status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetermineOutcome_Messages(t *testing.T) {
	if msg := DetermineOutcome(nil, 2, 1000).Message; msg != "merged 1000 rows from 2 chunks" {
		t.Errorf("success message = %q", msg)
	}

	err := &types.ExternalToolError{
		Command:  "signalp -short -t euk in.fa.1.tmp > in.fa.1.tmp.out",
		ExitCode: 2,
		Stderr:   "line one\nline two\n",
	}
	want := "tool failed with exit code 2: signalp -short -t euk in.fa.1.tmp > in.fa.1.tmp.out: line one"
	if msg := DetermineOutcome(err, 0, 0).Message; msg != want {
		t.Errorf("message = %q, want %q", msg, want)
	}

	multi := errors.New("first\nsecond")
	if msg := DetermineOutcome(multi, 0, 0).Message; msg != "first second" {
		t.Errorf("message = %q, want single line", msg)
	}
}
