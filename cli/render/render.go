// Package render writes command results as JSON, YAML or aligned tables.
//
// Without --format, a terminal gets a table and anything else gets JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/justapithecus/sigsplit/cli/tui"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a --format value. The empty string is returned as is
// so the caller can pick a default.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	switch f {
	case "", FormatJSON, FormatTable, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %q (must be json, table, or yaml)", s)
}

// Renderer writes one value per command in the selected format.
type Renderer struct {
	format Format
	out    io.Writer
}

// NewRenderer creates a renderer from the --format flag, writing to the
// command's stdout.
func NewRenderer(c *cli.Context) (*Renderer, error) {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}
	if format == "" {
		format = defaultFormat(out)
	}
	return &Renderer{format: format, out: out}, nil
}

func defaultFormat(out io.Writer) Format {
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// NewRendererWithWriter creates a renderer with a custom writer (for testing).
func NewRendererWithWriter(format Format, out io.Writer) *Renderer {
	return &Renderer{format: format, out: out}
}

// Format returns the selected output format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render writes data in the configured format.
func (r *Renderer) Render(data any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		return r.renderTable(data)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

// RenderTUI hands data to the interactive view.
func (r *Renderer) RenderTUI(viewType string, data any) error {
	if !tui.IsTUISupported(viewType) {
		return fmt.Errorf("--tui is not supported for %s", viewType)
	}
	return tui.Run(viewType, data)
}

// renderTable prints a slice of structs as rows under a header, and a
// single struct as one "name: value" line per field. Nested structs are
// flattened into dotted names (metrics.records_read).
func (r *Renderer) renderTable(data any) error {
	v := reflect.Indirect(reflect.ValueOf(data))

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	switch {
	case v.Kind() == reflect.Slice && v.Len() == 0:
		fmt.Fprintln(w, "(no results)")
	case v.Kind() == reflect.Slice && structType(v.Type().Elem()) != nil:
		cols := columnsOf(structType(v.Type().Elem()), "", nil)
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.name
		}
		fmt.Fprintln(w, strings.Join(names, "\t"))
		for i := range v.Len() {
			row := make([]string, len(cols))
			for j, c := range cols {
				row[j] = c.format(v.Index(i))
			}
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
	case v.Kind() == reflect.Struct:
		for _, c := range columnsOf(v.Type(), "", nil) {
			fmt.Fprintf(w, "%s:\t%s\n", c.name, c.format(v))
		}
	default:
		return fmt.Errorf("table format does not support %T", data)
	}
	return w.Flush()
}

// column is one flattened leaf field reachable from a struct type.
type column struct {
	name  string
	index []int
}

var timeType = reflect.TypeFor[time.Time]()

// structType returns t (or the struct t points to) when it is a struct
// other than time.Time.
func structType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType {
		return nil
	}
	return t
}

func columnsOf(t reflect.Type, prefix string, index []int) []column {
	var cols []column
	for i := range t.NumField() {
		f := t.Field(i)
		name := fieldName(f)
		if !f.IsExported() || name == "" {
			continue
		}
		path := append(append([]int{}, index...), i)
		if nested := structType(f.Type); nested != nil {
			cols = append(cols, columnsOf(nested, prefix+name+".", path)...)
			continue
		}
		cols = append(cols, column{name: prefix + name, index: path})
	}
	return cols
}

// format walks the column's field path from v. A nil pointer anywhere on
// the path renders as an empty cell.
func (c column) format(v reflect.Value) string {
	for _, i := range c.index {
		v = reflect.Indirect(v)
		if !v.IsValid() {
			return ""
		}
		v = v.Field(i)
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	switch {
	case v.Type() == timeType:
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Array:
		parts := make([]string, v.Len())
		for i := range v.Len() {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v.Interface())
	}
}

// fieldName is the json tag name, or the lowercased Go name without one.
// Fields tagged "-" return "".
func fieldName(f reflect.StructField) string {
	tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch tag {
	case "-":
		return ""
	case "":
		return strings.ToLower(f.Name)
	}
	return tag
}
