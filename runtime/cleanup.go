package runtime

import (
	"github.com/justapithecus/sigsplit/iox"
	"github.com/justapithecus/sigsplit/log"
)

// CleanupFailure records a file that could not be removed.
type CleanupFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// CleanupReport summarizes a cleanup pass.
type CleanupReport struct {
	// Removed counts files that existed and were deleted.
	Removed int `json:"removed"`
	// Missing counts paths that did not exist (never created, or already gone).
	Missing int `json:"missing"`
	// Failures lists paths whose removal failed.
	Failures []CleanupFailure `json:"failures,omitempty"`
}

// OK reports whether every existing file was removed.
func (r CleanupReport) OK() bool {
	return len(r.Failures) == 0
}

// Cleanup removes every path that currently exists. Absent paths are not an
// error. A failed removal is logged as a warning and recorded in the report;
// the remaining paths are still attempted.
func Cleanup(paths []string, logger *log.Logger) CleanupReport {
	if logger == nil {
		logger = log.NewNop()
	}

	var report CleanupReport
	for _, p := range paths {
		removed, err := iox.RemoveIfExists(p)
		switch {
		case err != nil:
			report.Failures = append(report.Failures, CleanupFailure{Path: p, Error: err.Error()})
			logger.Warn("failed to remove intermediate file", map[string]any{
				"path":  p,
				"error": err.Error(),
			})
		case removed:
			report.Removed++
		default:
			report.Missing++
		}
	}

	logger.Debug("cleanup finished", map[string]any{
		"removed":  report.Removed,
		"missing":  report.Missing,
		"failures": len(report.Failures),
	})
	return report
}
