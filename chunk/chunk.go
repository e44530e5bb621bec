// Package chunk splits a FASTA record stream into bounded chunk files.
//
// Each chunk holds at most Options.Size records and every sequence is cut to
// its first Options.Truncate residues: the predictor only looks at sequence
// starts, so the prefix keeps its input and run time bounded.
package chunk

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/justapithecus/sigsplit/types"
)

// Defaults for the signal-peptide tool's input limits.
const (
	DefaultSize     = 500
	DefaultTruncate = 60
)

// ResultSuffix is appended to a chunk path to form its result path.
const ResultSuffix = ".out"

// RecordSource is a forward-only record iterator (see fasta.Reader).
type RecordSource interface {
	Next() bool
	Record() types.FastaRecord
	Err() error
}

// Options configures splitting.
type Options struct {
	// Size is the maximum number of records per chunk.
	Size int
	// Truncate is the maximum number of residues kept per sequence.
	Truncate int
	// WorkDir, if set, holds the chunk files instead of the source's directory.
	WorkDir string
}

// WithDefaults fills zero values with DefaultSize and DefaultTruncate.
func (o Options) WithDefaults() Options {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.Truncate == 0 {
		o.Truncate = DefaultTruncate
	}
	return o
}

// Validate rejects non-positive limits.
func (o Options) Validate() error {
	if o.Size < 1 {
		return &types.ConfigurationError{Msg: fmt.Sprintf("chunk size must be >= 1, got %d", o.Size)}
	}
	if o.Truncate < 1 {
		return &types.ConfigurationError{Msg: fmt.Sprintf("truncate length must be >= 1, got %d", o.Truncate)}
	}
	return nil
}

// Stats summarizes one Split call.
type Stats struct {
	Records   int
	Chunks    int
	Truncated int
}

// InputPath derives the n-th chunk path: <source>.<n>.tmp, relocated into
// workDir when one is given. Distinct ordinals never collide.
func InputPath(sourcePath, workDir string, n int) string {
	base := sourcePath
	if workDir != "" {
		base = filepath.Join(workDir, filepath.Base(sourcePath))
	}
	return fmt.Sprintf("%s.%d.tmp", base, n)
}

// ResultPath derives the result path for a chunk input path.
func ResultPath(inputPath string) string {
	return inputPath + ResultSuffix
}

// IsIntermediate reports whether path names a chunk or chunk result file
// that splitting sourcePath into workDir could create.
func IsIntermediate(sourcePath, workDir, path string) bool {
	prefix := InputPath(sourcePath, workDir, 0)
	prefix = strings.TrimSuffix(prefix, "0.tmp")

	rest, ok := strings.CutPrefix(absPath(path), absPath(prefix))
	if !ok {
		return false
	}
	rest = strings.TrimSuffix(rest, ResultSuffix)
	digits, ok := strings.CutSuffix(rest, ".tmp")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(digits)
	return err == nil && n >= 0 && strconv.Itoa(n) == digits
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Split drains src into chunk files and returns their paths in creation
// order. Every chunk is registered in arts before its file is created, so
// the caller can clean up whatever exists if Split fails part way.
func Split(src RecordSource, sourcePath string, opts Options, arts *types.RunArtifacts) ([]string, Stats, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, Stats{}, err
	}

	var (
		paths []string
		stats Stats
		batch = make([]types.FastaRecord, 0, min(opts.Size, DefaultSize))
	)

	for {
		batch = batch[:0]
		for len(batch) < opts.Size && src.Next() {
			batch = append(batch, src.Record())
		}
		if err := src.Err(); err != nil {
			return paths, stats, err
		}
		if len(batch) == 0 {
			return paths, stats, nil
		}

		in := InputPath(sourcePath, opts.WorkDir, len(paths))
		c := arts.AddChunk(types.Chunk{InputPath: in, ResultPath: ResultPath(in)})

		truncated, err := writeChunk(in, batch, opts.Truncate)
		if err != nil {
			return paths, stats, fmt.Errorf("write chunk %d: %w", c.Index, err)
		}
		arts.SetRecords(c.Index, len(batch))

		paths = append(paths, in)
		stats.Chunks++
		stats.Records += len(batch)
		stats.Truncated += truncated

		if len(batch) < opts.Size {
			// Short batch: the source is exhausted.
			return paths, stats, nil
		}
	}
}

// writeChunk writes records as two-line FASTA entries, cutting sequences to
// truncate residues. It returns how many sequences were cut.
func writeChunk(path string, records []types.FastaRecord, truncate int) (truncated int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	for _, rec := range records {
		seq := rec.Sequence
		if len(seq) > truncate {
			seq = seq[:truncate]
			truncated++
		}
		if _, err := fmt.Fprintf(w, ">%s\n%s\n", rec.Title, seq); err != nil {
			return truncated, err
		}
	}
	return truncated, w.Flush()
}
