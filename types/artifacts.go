//nolint:revive // types is a common Go package naming convention
package types

import "sync"

// Chunk is one bounded batch of the input, materialized as a file.
// Its identity is its 0-based ordinal within the run.
type Chunk struct {
	// Index is the chunk ordinal in creation order.
	Index int
	// InputPath is the chunk FASTA file handed to the tool.
	InputPath string
	// ResultPath receives the tool's standard output for this chunk.
	ResultPath string
	// Records is the number of sequences written to InputPath.
	Records int
}

// RunArtifacts owns every intermediate file created during a run.
// Stages register paths as soon as they are derived, so cleanup driven from
// this single collection covers files from any point of failure.
// Safe for concurrent use.
type RunArtifacts struct {
	mu     sync.Mutex
	chunks []Chunk
	extra  []string
}

// NewRunArtifacts returns an empty artifact set.
func NewRunArtifacts() *RunArtifacts {
	return &RunArtifacts{}
}

// AddChunk registers a chunk's input and result paths.
// The chunk's Index is assigned from the registration order and returned.
func (a *RunArtifacts) AddChunk(c Chunk) Chunk {
	a.mu.Lock()
	defer a.mu.Unlock()
	c.Index = len(a.chunks)
	a.chunks = append(a.chunks, c)
	return c
}

// SetRecords records how many sequences chunk index holds.
func (a *RunArtifacts) SetRecords(index, n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index >= 0 && index < len(a.chunks) {
		a.chunks[index].Records = n
	}
}

// AddFile registers a non-chunk intermediate (e.g. a staging output).
func (a *RunArtifacts) AddFile(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.extra = append(a.extra, path)
}

// Chunks returns a copy of the registered chunks in ordinal order.
func (a *RunArtifacts) Chunks() []Chunk {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Chunk, len(a.chunks))
	copy(out, a.chunks)
	return out
}

// ResultPaths returns chunk result paths in ordinal order.
func (a *RunArtifacts) ResultPaths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.chunks))
	for i, c := range a.chunks {
		out[i] = c.ResultPath
	}
	return out
}

// Paths returns every registered path: chunk inputs, chunk results, then
// extra files.
func (a *RunArtifacts) Paths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, 2*len(a.chunks)+len(a.extra))
	for _, c := range a.chunks {
		out = append(out, c.InputPath)
	}
	for _, c := range a.chunks {
		out = append(out, c.ResultPath)
	}
	return append(out, a.extra...)
}
