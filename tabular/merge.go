package tabular

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/justapithecus/sigsplit/iox"
	"github.com/justapithecus/sigsplit/types"
)

const maxLineSize = 1 << 20 // 1 MiB

// MergeStats counts what a merge consumed and produced.
type MergeStats struct {
	// Files is the number of result files read.
	Files int `json:"files"`
	// Lines is the number of raw lines read.
	Lines int `json:"lines"`
	// Skipped is the number of blank or comment lines.
	Skipped int `json:"skipped"`
	// Rows is the number of data rows written.
	Rows int `json:"rows"`
}

// Merger concatenates normalized result files under a single header.
type Merger struct {
	schema *Schema
}

// NewMerger returns a Merger for schema.
func NewMerger(schema *Schema) *Merger {
	return &Merger{schema: schema}
}

// Merge writes the header line followed by every normalized row of paths,
// in the given file order and in line order within each file. The first
// schema violation aborts the merge; what was already written to w is left
// to the caller to discard.
func (m *Merger) Merge(ctx context.Context, paths []string, w io.Writer) (MergeStats, error) {
	var stats MergeStats

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, m.schema.HeaderLine()); err != nil {
		return stats, err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := m.mergeFile(path, bw, &stats); err != nil {
			return stats, err
		}
		stats.Files++
	}

	return stats, bw.Flush()
}

func (m *Merger) mergeFile(path string, w *bufio.Writer, stats *MergeStats) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open result file: %w", err)
	}
	defer iox.DiscardClose(f)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		stats.Lines++

		rec, ok, err := m.schema.Normalize(sc.Text())
		if err != nil {
			var sv *types.SchemaViolationError
			if errors.As(err, &sv) {
				sv.Path = path
				sv.Line = line
			}
			return err
		}
		if !ok {
			stats.Skipped++
			continue
		}

		if _, err := w.WriteString(rec.String()); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
		stats.Rows++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read result file %s: %w", path, err)
	}
	return nil
}
