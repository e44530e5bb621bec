package tabular

import (
	"fmt"
	"strings"

	"github.com/justapithecus/sigsplit/types"
)

// Record is one normalized output row.
type Record []string

// String renders the row tab-separated, without a trailing newline.
func (r Record) String() string {
	return strings.Join(r, "\t")
}

// IsSkippable reports whether a raw line carries no data: blank, or a
// # header/comment line.
func IsSkippable(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "#")
}

// Normalize reshapes one raw output line. ok is false for lines that carry
// no data. Field count and identifier mismatches return a
// *types.SchemaViolationError without location; the merger fills it in.
func (s *Schema) Normalize(line string) (rec Record, ok bool, err error) {
	if IsSkippable(line) {
		return nil, false, nil
	}

	fields := strings.Fields(line)
	if len(fields) != len(s.RawFields) {
		return nil, false, &types.SchemaViolationError{
			Reason: fmt.Sprintf("expected %d fields, got %d", len(s.RawFields), len(fields)),
		}
	}

	truncated, full := fields[s.truncIdx], fields[s.fullIdx]
	if !strings.HasPrefix(full, truncated) {
		return nil, false, &types.SchemaViolationError{
			Reason: fmt.Sprintf("%s %q does not start with %s %q", s.FullIDField, full, s.TruncatedIDField, truncated),
		}
	}

	rec = make(Record, len(s.colIdx))
	for o, i := range s.colIdx {
		rec[o] = fields[i]
	}
	return rec, true, nil
}
