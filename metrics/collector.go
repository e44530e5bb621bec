// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single run. It is a leaf package
// with no internal dependencies. Snapshots feed the run report, the run
// archive and the stats command.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all run metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Run lifecycle
	RunsStarted   int64 `json:"runs_started"`
	RunsCompleted int64 `json:"runs_completed"`
	RunsFailed    int64 `json:"runs_failed"`

	// Splitting
	RecordsRead        int64 `json:"records_read"`
	ChunksWritten      int64 `json:"chunks_written"`
	SequencesTruncated int64 `json:"sequences_truncated"`

	// Tool
	ToolInvocationSuccess int64 `json:"tool_invocation_success"`
	ToolInvocationFailure int64 `json:"tool_invocation_failure"`

	// Merge
	RowsMerged int64 `json:"rows_merged"`

	// Cleanup
	FilesRemoved    int64 `json:"files_removed"`
	CleanupFailures int64 `json:"cleanup_failures"`

	// Lode / Storage
	LodeWriteSuccess int64 `json:"lode_write_success"`
	LodeWriteFailure int64 `json:"lode_write_failure"`

	// Dimensions (informational, set at construction)
	Organism       string `json:"organism"`
	Tool           string `json:"tool"`
	StorageBackend string `json:"storage_backend,omitempty"`
	RunID          string `json:"run_id"`
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	runsStarted   int64
	runsCompleted int64
	runsFailed    int64

	recordsRead        int64
	chunksWritten      int64
	sequencesTruncated int64

	toolInvocationSuccess int64
	toolInvocationFailure int64

	rowsMerged int64

	filesRemoved    int64
	cleanupFailures int64

	lodeWriteSuccess int64
	lodeWriteFailure int64

	organism       string
	tool           string
	storageBackend string
	runID          string
}

// NewCollector creates a Collector with dimension labels.
// storageBackend is empty when no run archive is configured.
func NewCollector(organism, tool, storageBackend, runID string) *Collector {
	return &Collector{
		organism:       organism,
		tool:           tool,
		storageBackend: storageBackend,
		runID:          runID,
	}
}

func (c *Collector) add(p *int64, n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	*p += n
	c.mu.Unlock()
}

// --- Run lifecycle ---

// IncRunStarted records a run start.
func (c *Collector) IncRunStarted() {
	if c == nil {
		return
	}
	c.add(&c.runsStarted, 1)
}

// IncRunCompleted records a successful run.
func (c *Collector) IncRunCompleted() {
	if c == nil {
		return
	}
	c.add(&c.runsCompleted, 1)
}

// IncRunFailed records a run that ended with any error outcome.
func (c *Collector) IncRunFailed() {
	if c == nil {
		return
	}
	c.add(&c.runsFailed, 1)
}

// --- Splitting ---

// AddSplit records the result of splitting the input.
func (c *Collector) AddSplit(records, chunks, truncated int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.recordsRead += int64(records)
	c.chunksWritten += int64(chunks)
	c.sequencesTruncated += int64(truncated)
	c.mu.Unlock()
}

// --- Tool ---

// IncToolInvocationSuccess records a chunk the tool processed with exit 0.
func (c *Collector) IncToolInvocationSuccess() {
	if c == nil {
		return
	}
	c.add(&c.toolInvocationSuccess, 1)
}

// IncToolInvocationFailure records a failed start or non-zero exit.
func (c *Collector) IncToolInvocationFailure() {
	if c == nil {
		return
	}
	c.add(&c.toolInvocationFailure, 1)
}

// --- Merge ---

// AddRowsMerged records normalized rows written to the output.
func (c *Collector) AddRowsMerged(n int) {
	if c == nil {
		return
	}
	c.add(&c.rowsMerged, int64(n))
}

// --- Cleanup ---

// AddCleanup records the outcome of a cleanup pass.
func (c *Collector) AddCleanup(removed, failures int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.filesRemoved += int64(removed)
	c.cleanupFailures += int64(failures)
	c.mu.Unlock()
}

// --- Lode / Storage ---

// IncLodeWriteSuccess records a successful archive write.
func (c *Collector) IncLodeWriteSuccess() {
	if c == nil {
		return
	}
	c.add(&c.lodeWriteSuccess, 1)
}

// IncLodeWriteFailure records a failed archive write.
func (c *Collector) IncLodeWriteFailure() {
	if c == nil {
		return
	}
	c.add(&c.lodeWriteFailure, 1)
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		RunsStarted:   c.runsStarted,
		RunsCompleted: c.runsCompleted,
		RunsFailed:    c.runsFailed,

		RecordsRead:        c.recordsRead,
		ChunksWritten:      c.chunksWritten,
		SequencesTruncated: c.sequencesTruncated,

		ToolInvocationSuccess: c.toolInvocationSuccess,
		ToolInvocationFailure: c.toolInvocationFailure,

		RowsMerged: c.rowsMerged,

		FilesRemoved:    c.filesRemoved,
		CleanupFailures: c.cleanupFailures,

		LodeWriteSuccess: c.lodeWriteSuccess,
		LodeWriteFailure: c.lodeWriteFailure,

		Organism:       c.organism,
		Tool:           c.tool,
		StorageBackend: c.storageBackend,
		RunID:          c.runID,
	}
}
