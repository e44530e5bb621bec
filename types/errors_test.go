package types //nolint:revive // types is a valid package name

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestExternalToolError_Message(t *testing.T) {
	err := &ExternalToolError{
		Command:  "signalp -short -t euk in.fa.1.tmp > in.fa.1.tmp.out",
		ExitCode: 2,
		Stderr:   "signalp: cannot allocate memory\nmore detail\n",
	}

	msg := err.Error()
	if !strings.Contains(msg, "exit code 2") {
		t.Errorf("message should carry the exit code, got %q", msg)
	}
	if !strings.Contains(msg, "signalp -short -t euk in.fa.1.tmp > in.fa.1.tmp.out") {
		t.Errorf("message should carry the command, got %q", msg)
	}
	if strings.Contains(msg, "\n") {
		t.Errorf("message should be a single line, got %q", msg)
	}
	if !errors.Is(err, ErrExternalTool) {
		t.Error("ExternalToolError should match ErrExternalTool")
	}
}

func TestExternalToolError_Unwrap(t *testing.T) {
	err := &ExternalToolError{Command: "signalp", ExitCode: -1, Err: fs.ErrNotExist}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("ExternalToolError should unwrap to the start error")
	}
	if !errors.Is(err, ErrExternalTool) {
		t.Error("ExternalToolError should still match ErrExternalTool")
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	errs := []error{
		&ConfigurationError{Msg: "x"},
		&MalformedInputError{Line: 3, Text: "ACGT", Reason: "sequence before header"},
		&ExternalToolError{ExitCode: 1},
		&SchemaViolationError{Path: "a.out", Line: 4, Reason: "expected 21 fields, got 20"},
	}
	sentinels := []error{ErrConfiguration, ErrMalformedInput, ErrExternalTool, ErrSchemaViolation}

	for i, err := range errs {
		for j, s := range sentinels {
			if got := errors.Is(err, s); got != (i == j) {
				t.Errorf("errors.Is(%T, %v) = %v, want %v", err, s, got, i == j)
			}
		}
	}
}

func TestSchemaViolationError_Location(t *testing.T) {
	err := &SchemaViolationError{Path: "in.fa.0.tmp.out", Line: 7, Reason: "bad"}
	if got := err.Error(); got != "schema violation at in.fa.0.tmp.out:7: bad" {
		t.Errorf("Error() = %q", got)
	}
}
