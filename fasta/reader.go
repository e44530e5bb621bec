// Package fasta provides a streaming FASTA reader.
//
// Reader yields one record at a time and never holds more than the record
// being assembled, so inputs of any size can be split without loading them.
package fasta

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/justapithecus/sigsplit/types"
)

const bufSize = 1 << 20 // 1 MiB

// Reader is a forward-only FASTA record iterator.
//
//	r, err := fasta.Open(path)
//	if err != nil { ... }
//	defer iox.DiscardClose(r)
//	for r.Next() {
//		rec := r.Record()
//	}
//	if err := r.Err(); err != nil { ... }
//
// Next returning false with a nil Err is the end of input.
// A Reader cannot be rewound; open the file again for another pass.
type Reader struct {
	name   string
	br     *bufio.Reader
	closer io.Closer

	line    int
	title   string
	seq     strings.Builder
	started bool
	done    bool

	rec     types.FastaRecord
	err     error
	pending error
}

// Open opens path for reading. Paths ending in .gz are decompressed.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		r := NewReader(f, path)
		r.closer = f
		return r, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r := NewReader(gz, path)
	r.closer = multiCloser{gz, f}
	return r, nil
}

// NewReader reads FASTA records from rd. name labels parse errors and may be
// empty. Close on a Reader built this way is a no-op.
func NewReader(rd io.Reader, name string) *Reader {
	return &Reader{
		name: name,
		br:   bufio.NewReaderSize(rd, bufSize),
	}
}

// Next advances to the next record. It returns false at end of input or on
// the first error; check Err to tell them apart.
func (r *Reader) Next() bool {
	if r.done {
		return false
	}
	if r.pending != nil {
		r.fail(r.pending)
		return false
	}
	for {
		raw, err := r.br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			r.fail(err)
			return false
		}
		if len(raw) > 0 {
			r.line++
			ok, emitted := r.consume(raw)
			if !ok {
				return false
			}
			if emitted {
				return true
			}
		}
		if errors.Is(err, io.EOF) {
			r.done = true
			if r.started {
				r.emit()
				r.started = false
				return true
			}
			return false
		}
	}
}

// consume handles one input line. ok is false on a parse error; emitted is
// true when a completed record became available.
func (r *Reader) consume(raw string) (ok, emitted bool) {
	text := strings.TrimRight(raw, "\r\n")

	if strings.HasPrefix(text, ">") {
		title := strings.TrimRightFunc(text[1:], isSpace)
		if title == "" {
			err := &types.MalformedInputError{Path: r.name, Line: r.line, Text: text, Reason: "empty title"}
			if r.started {
				// Hand out the record already assembled; fail on the next call.
				r.emit()
				r.started = false
				r.pending = err
				return true, true
			}
			r.fail(err)
			return false, false
		}
		if r.started {
			r.emit()
			emitted = true
		}
		r.title = title
		r.started = true
		return true, emitted
	}

	if r.started {
		r.seq.WriteString(strings.TrimSpace(text))
		return true, false
	}

	// Before the first header only blank lines and # comments may appear.
	if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
		return true, false
	}
	r.fail(&types.MalformedInputError{Path: r.name, Line: r.line, Text: text, Reason: "sequence data before first header"})
	return false, false
}

func (r *Reader) emit() {
	r.rec = types.FastaRecord{Title: r.title, Sequence: r.seq.String()}
	r.seq.Reset()
}

func (r *Reader) fail(err error) {
	r.err = err
	r.done = true
}

// Record returns the record produced by the last successful Next.
func (r *Reader) Record() types.FastaRecord {
	return r.rec
}

// Err returns the first error encountered, or nil at a clean end of input.
func (r *Reader) Err() error {
	return r.err
}

// Close releases the underlying file when the Reader came from Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
