package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/justapithecus/sigsplit/metrics"
	"github.com/justapithecus/sigsplit/types"
)

// RunReport is the structured JSON report written by --report.
type RunReport struct {
	Version    string              `json:"version"`
	RunID      string              `json:"run_id"`
	Organism   types.Organism      `json:"organism"`
	Input      string              `json:"input"`
	Output     string              `json:"output"`
	Outcome    types.OutcomeStatus `json:"outcome"`
	Message    string              `json:"message"`
	ExitCode   int                 `json:"exit_code"`
	DurationMs int64               `json:"duration_ms"`

	Split   *ReportSplit      `json:"split"`
	Rows    int               `json:"rows"`
	Cleanup CleanupReport     `json:"cleanup"`
	Metrics *metrics.Snapshot `json:"metrics"`

	FailedCommand  string `json:"failed_command,omitempty"`
	ToolExitCode   *int   `json:"tool_exit_code,omitempty"`
	Stderr         string `json:"stderr,omitempty"`
	InvocationsRun int    `json:"invocations"`
}

// ReportSplit holds splitting stats in the report.
type ReportSplit struct {
	Records   int `json:"records"`
	Chunks    int `json:"chunks"`
	Truncated int `json:"truncated"`
}

// BuildRunReport composes a RunReport from a RunResult and metrics snapshot.
// exitCode is the process exit code that will be returned to the caller.
func BuildRunReport(result *RunResult, snap metrics.Snapshot, exitCode int) *RunReport {
	report := &RunReport{
		Version:    types.Version,
		RunID:      result.RunMeta.RunID,
		Organism:   result.RunMeta.Organism,
		Input:      result.RunMeta.InputPath,
		Output:     result.RunMeta.OutputPath,
		Outcome:    result.Outcome.Status,
		Message:    result.Outcome.Message,
		ExitCode:   exitCode,
		DurationMs: result.Duration.Milliseconds(),
		Split: &ReportSplit{
			Records:   result.Split.Records,
			Chunks:    result.Split.Chunks,
			Truncated: result.Split.Truncated,
		},
		Rows:           result.Merge.Rows,
		Cleanup:        result.Cleanup,
		Metrics:        &snap,
		InvocationsRun: len(result.Invocations),
	}

	if failed := result.FailedInvocation(); failed != nil {
		code := failed.ExitCode
		report.FailedCommand = failed.Command
		report.ToolExitCode = &code
		report.Stderr = failed.Stderr
	}

	return report
}

// WriteRunReport writes the report as JSON to the specified path.
// If path is "-", writes to stderr.
func WriteRunReport(report *RunReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	if path == "-" {
		if err := writeRunReportTo(report, os.Stderr); err != nil {
			return fmt.Errorf("failed to write report to stderr: %w", err)
		}
		return nil
	}

	data, err := marshalReport(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// writeRunReportTo writes report JSON to any writer.
func writeRunReportTo(report *RunReport, w io.Writer) error {
	data, err := marshalReport(report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func marshalReport(report *RunReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}
