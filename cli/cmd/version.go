package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/sigsplit/cli/render"
	"github.com/justapithecus/sigsplit/tabular"
	"github.com/justapithecus/sigsplit/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Schema  string `json:"schema"`
}

// VersionCommand returns the version command.
// It does not invoke the prediction tool.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}

		// TUI not supported for version command
		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for version command", exitConfigError)
		}

		resp := VersionResponse{
			Version: types.Version,
			Commit:  commit,
			Schema:  tabular.SignalP3.Version,
		}

		return r.Render(resp)
	}
}
