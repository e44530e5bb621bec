package lode

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/justapithecus/sigsplit/metrics"
)

// RecordKindRunSummary is the record_kind partition value of run summaries.
const RecordKindRunSummary = "run_summary"

// RunSummary is the archived description of one finished run.
type RunSummary struct {
	RunID    string `json:"run_id"`
	Organism string `json:"organism"`
	Input    string `json:"input"`
	Output   string `json:"output"`

	Outcome  string `json:"outcome"`
	Message  string `json:"message"`
	ExitCode int    `json:"exit_code"`

	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`

	Records     int `json:"records"`
	Chunks      int `json:"chunks"`
	Truncated   int `json:"truncated"`
	Invocations int `json:"invocations"`
	Rows        int `json:"rows"`

	FilesRemoved    int `json:"files_removed"`
	CleanupFailures int `json:"cleanup_failures"`

	// TableFile is the sidecar name of the merged table, empty when not stored.
	TableFile string `json:"table_file,omitempty"`

	Metrics *metrics.Snapshot `json:"metrics,omitempty"`
}

// toRunSummaryMap converts a summary to a map for Lode storage.
// Lode HiveLayout requires records as map[string]any. Partition keys come
// from cfg so the record always lands in the client's partition.
func toRunSummaryMap(s RunSummary, cfg Config) map[string]any {
	m := map[string]any{
		"record_kind":      RecordKindRunSummary,
		"run_id":           cfg.RunID,
		"organism":         cfg.Organism,
		"day":              cfg.Day,
		"input":            s.Input,
		"output":           s.Output,
		"outcome":          s.Outcome,
		"message":          s.Message,
		"exit_code":        s.ExitCode,
		"started_at":       s.StartedAt.UTC().Format(time.RFC3339Nano),
		"duration_ms":      s.DurationMs,
		"records":          s.Records,
		"chunks":           s.Chunks,
		"truncated":        s.Truncated,
		"invocations":      s.Invocations,
		"rows":             s.Rows,
		"files_removed":    s.FilesRemoved,
		"cleanup_failures": s.CleanupFailures,
	}
	if s.TableFile != "" {
		m["table_file"] = s.TableFile
	}
	if s.Metrics != nil {
		m["metrics"] = s.Metrics
	}
	return m
}

// DecodeRunSummary converts a record read back from the dataset.
func DecodeRunSummary(record map[string]any) (*RunSummary, error) {
	if kind := toString(record["record_kind"]); kind != RecordKindRunSummary {
		return nil, fmt.Errorf("record_kind %q is not %s", kind, RecordKindRunSummary)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("re-encode record: %w", err)
	}
	var s RunSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode run summary: %w", err)
	}
	return &s, nil
}

// toString converts a value to string, returning empty string for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
