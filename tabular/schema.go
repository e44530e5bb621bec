// Package tabular normalizes the prediction tool's short-format output into
// a single tab-separated table.
//
// The raw and normalized layouts are described by a Schema value rather than
// by positional constants, so a new tool version only needs a new Schema.
package tabular

import (
	"fmt"
	"strings"
)

// Method labels which prediction method a field belongs to.
type Method string

const (
	MethodID  Method = "id"
	MethodNN  Method = "nn"
	MethodHMM Method = "hmm"
)

// Column maps one raw field to one output column.
type Column struct {
	// Raw is the raw field name the value is taken from.
	Raw string `json:"raw" yaml:"raw"`
	// Header is the output column name.
	Header string `json:"header" yaml:"header"`
}

// Schema is a versioned description of the tool's raw line layout and of the
// normalized output derived from it. Build one with NewSchema.
type Schema struct {
	// Version names the tool version whose output this layout matches.
	Version string
	// RawFields names every whitespace-separated raw field, in order.
	RawFields []string
	// TruncatedIDField is the identifier as cut by the first method.
	TruncatedIDField string
	// FullIDField is the identifier as reported by the second method; it
	// must start with the truncated identifier.
	FullIDField string
	// Columns lists the output columns in order.
	Columns []Column

	methods map[string]Method

	truncIdx int
	fullIdx  int
	colIdx   []int
}

// FieldInfo describes one raw field and where it lands in the output.
type FieldInfo struct {
	Index  int    `json:"index" yaml:"index"`
	Name   string `json:"name" yaml:"name"`
	Method Method `json:"method" yaml:"method"`
	// Output is the output column index, or -1 when the field is dropped.
	Output int    `json:"output" yaml:"output"`
	Header string `json:"header,omitempty" yaml:"header,omitempty"`
}

// NewSchema resolves field names to positions and checks that every name
// referenced by the identifiers and columns exists exactly once.
func NewSchema(version string, raw []Field, truncatedID, fullID string, columns []Column) (*Schema, error) {
	s := &Schema{
		Version:          version,
		TruncatedIDField: truncatedID,
		FullIDField:      fullID,
		Columns:          columns,
		methods:          make(map[string]Method, len(raw)),
	}

	index := make(map[string]int, len(raw))
	for i, f := range raw {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s: raw field %d has no name", version, i)
		}
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate raw field %q", version, f.Name)
		}
		index[f.Name] = i
		s.RawFields = append(s.RawFields, f.Name)
		s.methods[f.Name] = f.Method
	}

	lookup := func(name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return 0, fmt.Errorf("schema %s: unknown raw field %q", version, name)
		}
		return i, nil
	}

	var err error
	if s.truncIdx, err = lookup(truncatedID); err != nil {
		return nil, err
	}
	if s.fullIdx, err = lookup(fullID); err != nil {
		return nil, err
	}

	headers := make(map[string]struct{}, len(columns))
	s.colIdx = make([]int, len(columns))
	for i, c := range columns {
		if s.colIdx[i], err = lookup(c.Raw); err != nil {
			return nil, err
		}
		if _, dup := headers[c.Header]; dup || c.Header == "" {
			return nil, fmt.Errorf("schema %s: output column %d has empty or duplicate header %q", version, i, c.Header)
		}
		headers[c.Header] = struct{}{}
	}
	return s, nil
}

// MustSchema is NewSchema that panics on error. For package-level schemas.
func MustSchema(version string, raw []Field, truncatedID, fullID string, columns []Column) *Schema {
	s, err := NewSchema(version, raw, truncatedID, fullID, columns)
	if err != nil {
		panic(err)
	}
	return s
}

// Field is a named raw field.
type Field struct {
	Name   string
	Method Method
}

// HeaderNames returns the output column names in order.
func (s *Schema) HeaderNames() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Header
	}
	return out
}

// HeaderLine returns the output header line without a trailing newline.
func (s *Schema) HeaderLine() string {
	return "#" + strings.Join(s.HeaderNames(), "\t")
}

// Width returns the number of output columns.
func (s *Schema) Width() int { return len(s.Columns) }

// RawWidth returns the number of raw fields.
func (s *Schema) RawWidth() int { return len(s.RawFields) }

// Fields describes every raw field and its output position.
func (s *Schema) Fields() []FieldInfo {
	out := make([]FieldInfo, len(s.RawFields))
	for i, name := range s.RawFields {
		out[i] = FieldInfo{Index: i, Name: name, Method: s.methods[name], Output: -1}
	}
	for o, i := range s.colIdx {
		out[i].Output = o
		out[i].Header = s.Columns[o].Header
	}
	return out
}
