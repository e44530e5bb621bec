package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/sigsplit/cli/render"
	"github.com/justapithecus/sigsplit/cli/tui"
	"github.com/justapithecus/sigsplit/lode"
	"github.com/justapithecus/sigsplit/types"
)

// StatsCommand returns the stats command.
// Stats reads the latest archived run summary, optionally filtered by run
// and organism.
func StatsCommand() *cli.Command {
	flags := []cli.Flag{
		ConfigFlag,
		&cli.StringFlag{
			Name:  "run-id",
			Usage: "Show this run instead of the latest",
		},
		&cli.StringFlag{
			Name:  "organism",
			Usage: "Only consider runs for this organism",
		},
	}
	flags = append(flags, ReadOnlyFlags()...)
	flags = append(flags, StorageFlags()...)

	return &cli.Command{
		Name:   "stats",
		Usage:  "Show the latest archived run summary",
		Flags:  flags,
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	sc := resolveStorageChoice(c, cfg)
	if sc.path == "" {
		return cli.Exit("--storage-path is required (or storage.path in --config)", exitConfigError)
	}
	if err := validateStorageConfig(sc); err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	organism := ""
	if o := c.String("organism"); o != "" {
		parsed, err := types.ParseOrganism(o)
		if err != nil {
			return cli.Exit(err.Error(), exitConfigError)
		}
		organism = parsed.Name()
	}

	ctx := context.Background()
	ds, err := openReadDataset(ctx, sc)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open run archive: %v", err), exitInternalError)
	}

	summary, err := lode.QueryLatestRun(ctx, ds, c.String("run-id"), organism)
	if err != nil {
		if errors.Is(err, lode.ErrNoRunFound) {
			return cli.Exit("no archived run found", exitInternalError)
		}
		return cli.Exit(fmt.Sprintf("failed to read run archive: %v", err), exitInternalError)
	}

	if c.Bool("tui") {
		if !isStderrTTY() {
			_, err := fmt.Fprintln(c.App.Writer, tui.RenderStatsStatic(tui.ViewStatsRun, summary))
			return err
		}
		return r.RenderTUI(tui.ViewStatsRun, summary)
	}

	return r.Render(summary)
}
