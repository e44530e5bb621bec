package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/sigsplit/cli/render"
	"github.com/justapithecus/sigsplit/tabular"
)

// SchemaResponse is the response for the schema command.
type SchemaResponse struct {
	Version string              `json:"version" yaml:"version"`
	Header  []string            `json:"header" yaml:"header"`
	Fields  []tabular.FieldInfo `json:"fields" yaml:"fields"`
	Columns []tabular.Column    `json:"columns" yaml:"columns"`
}

// SchemaCommand returns the schema command.
// It prints the raw tool layout and the merged table columns.
func SchemaCommand() *cli.Command {
	return &cli.Command{
		Name:   "schema",
		Usage:  "Show the raw signalp field layout and the merged table columns",
		Flags:  ReadOnlyFlags(),
		Action: schemaAction,
	}
}

func schemaAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for schema command", exitConfigError)
	}

	s := tabular.SignalP3
	if r.Format() == render.FormatTable {
		// Table format lists the raw fields only.
		return r.Render(s.Fields())
	}
	return r.Render(SchemaResponse{
		Version: s.Version,
		Header:  s.HeaderNames(),
		Fields:  s.Fields(),
		Columns: s.Columns,
	})
}
