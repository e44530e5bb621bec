package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestExitErrHandler_NilError(_ *testing.T) {
	// Should not panic or exit on nil error
	exitErrHandler(nil, nil)
}

func TestReportExit_ExitCoder(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{
			name:     "exit code 0 no message",
			err:      cli.Exit("", 0),
			wantCode: 0,
			wantOut:  "",
		},
		{
			name:     "configuration error",
			err:      cli.Exit("organism argument \"plant\" is not one of euk, gram+ or gram-", 2),
			wantCode: 2,
			wantOut:  "organism argument \"plant\" is not one of euk, gram+ or gram-\n",
		},
		{
			name:     "tool failure",
			err:      cli.Exit("sigsplit: tool failed with exit code 1: signalp -short -t euk in.fa.0.tmp > in.fa.0.tmp.out", 4),
			wantCode: 4,
			wantOut:  "sigsplit: tool failed with exit code 1: signalp -short -t euk in.fa.0.tmp > in.fa.0.tmp.out\n",
		},
		{
			name:     "bare exit status is not printed",
			err:      cli.Exit("exit status 5", 5),
			wantCode: 5,
			wantOut:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if code := reportExit(&buf, tt.err); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if buf.String() != tt.wantOut {
				t.Errorf("output = %q, want %q", buf.String(), tt.wantOut)
			}
		})
	}
}

func TestReportExit_WrappedExitCoder(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), cli.Exit("inner error", 3))

	var buf bytes.Buffer
	if code := reportExit(&buf, wrapped); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestReportExit_RegularError(t *testing.T) {
	var buf bytes.Buffer
	if code := reportExit(&buf, errors.New("regular error")); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if buf.String() != "Error: regular error\n" {
		t.Errorf("output = %q", buf.String())
	}
}
