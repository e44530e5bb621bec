package cmd

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/justapithecus/sigsplit/adapter"
	"github.com/justapithecus/sigsplit/chunk"
	"github.com/justapithecus/sigsplit/cli/config"
	"github.com/justapithecus/sigsplit/lode"
	"github.com/justapithecus/sigsplit/log"
	"github.com/justapithecus/sigsplit/metrics"
	"github.com/justapithecus/sigsplit/runtime"
	"github.com/justapithecus/sigsplit/types"
)

// Exit codes of the run command.
const (
	exitSuccess         = 0
	exitInternalError   = 1
	exitConfigError     = 2
	exitMalformedInput  = 3
	exitToolFailure     = 4
	exitSchemaViolation = 5
)

// postRunTimeout bounds archiving and publishing after the pipeline ends.
const postRunTimeout = 30 * time.Second

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	flags := []cli.Flag{
		ConfigFlag,
		&cli.StringFlag{
			Name:  "tool",
			Usage: "Path to the signalp executable",
			Value: runtime.DefaultToolPath,
		},
		&cli.StringSliceFlag{
			Name:  "tool-arg",
			Usage: "Extra argument passed to the tool before the chunk path (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "tool-env",
			Usage: "Extra tool environment variable as KEY=VALUE (repeatable)",
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Maximum sequences per chunk",
			Value: chunk.DefaultSize,
		},
		&cli.IntFlag{
			Name:  "truncate",
			Usage: "Maximum residues kept per sequence",
			Value: chunk.DefaultTruncate,
		},
		&cli.StringFlag{
			Name:  "work-dir",
			Usage: "Directory for chunk files (default: next to the input)",
		},
		&cli.StringFlag{
			Name:  "run-id",
			Usage: "Run identifier (default: random UUID)",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write a JSON run report to this path (- for stderr)",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Only log errors; suppress the result summary",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log progress and debug entries to stderr",
		},
	}
	flags = append(flags, StorageFlags()...)
	flags = append(flags, AdapterFlags()...)

	return &cli.Command{
		Name:      "run",
		Usage:     "Split a FASTA file, run signalp on each chunk and merge the results",
		ArgsUsage: "<organism> <input.fasta> <output.tsv>",
		Description: "organism is one of " + types.OrganismChoices() +
			" (eukaryote, gram-positive and gram-negative are accepted too).",
		Flags:  flags,
		Action: runAction,
	}
}

// runOptions holds everything resolved before the pipeline starts.
type runOptions struct {
	meta    *types.RunMeta
	chunk   chunk.Options
	tool    runtime.ToolConfig
	storage storageChoice
	adapter *adapterChoice
}

func runAction(c *cli.Context) error {
	opts, err := resolveRunOptions(c)
	if err != nil {
		return cli.Exit(err.Error(), exitCodeForError(err))
	}

	stderr := c.App.ErrWriter
	if stderr == nil {
		stderr = os.Stderr
	}

	// On failure the exit diagnostic is the only stderr line unless
	// --verbose is set.
	level := zapcore.WarnLevel
	switch {
	case c.Bool("verbose"):
		level = zapcore.DebugLevel
	case c.Bool("quiet"):
		level = zapcore.ErrorLevel
	}
	logger := log.NewLogger(opts.meta, log.WithWriter(stderr), log.WithLevel(level))
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	backend := ""
	if opts.storage.enabled() {
		backend = opts.storage.backend
	}
	collector := metrics.NewCollector(opts.meta.Organism.Name(), opts.tool.Path, backend, opts.meta.RunID)

	orchestrator, err := runtime.NewRunOrchestrator(&runtime.RunConfig{
		RunMeta:   opts.meta,
		Chunk:     opts.chunk,
		Tool:      opts.tool,
		Logger:    logger,
		Collector: collector,
	})
	if err != nil {
		return cli.Exit(err.Error(), exitCodeForError(err))
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	startTime := time.Now()
	result, runErr := orchestrator.Execute(ctx)
	exitCode := outcomeToExitCode(result.Outcome.Status)

	if !result.Cleanup.OK() {
		printCleanupWarning(stderr, result.Cleanup)
	}

	postCtx, postCancel := context.WithTimeout(context.WithoutCancel(ctx), postRunTimeout)
	defer postCancel()

	storagePath := ""
	if opts.storage.enabled() {
		lodeCfg := lode.Config{
			Dataset:  opts.storage.dataset,
			Organism: opts.meta.Organism.Name(),
			Day:      lode.DeriveDay(startTime),
			RunID:    opts.meta.RunID,
		}
		summary := buildRunSummary(result, exitCode, startTime)
		snap := collector.Snapshot()
		summary.Metrics = &snap

		tablePath := ""
		if runErr == nil {
			tablePath = opts.meta.OutputPath
		}
		if err := archiveRun(postCtx, opts.storage, lodeCfg, summary, tablePath, collector); err != nil {
			fmt.Fprintf(stderr, "Warning: run archive failed: %v\n", err)
		} else {
			storagePath = buildStoragePath(opts.storage, lodeCfg)
			sugar.Infof("run archived to %s", storagePath)
		}
	}

	if opts.adapter != nil {
		event := buildRunCompletedEvent(result, exitCode, storagePath, time.Now())
		if err := publishEvent(postCtx, opts.adapter, event); err != nil {
			fmt.Fprintf(stderr, "Warning: %s adapter publish failed: %v\n", opts.adapter.adapterType, err)
		} else {
			sugar.Infof("published %s event via %s adapter", event.EventType, opts.adapter.adapterType)
		}
	}

	if path := c.String("report"); path != "" {
		report := runtime.BuildRunReport(result, collector.Snapshot(), exitCode)
		if err := runtime.WriteRunReport(report, path); err != nil {
			fmt.Fprintf(stderr, "Warning: %v\n", err)
		} else {
			sugar.Infof("run report written to %s", path)
		}
	}

	if !c.Bool("quiet") {
		stdout := c.App.Writer
		if stdout == nil {
			stdout = os.Stdout
		}
		printRunResult(stdout, result)
	}

	if runErr != nil {
		return cli.Exit("sigsplit: "+result.Outcome.Message, exitCode)
	}
	return nil
}

// resolveRunOptions checks the positional arguments and merges flags over
// the config file. It performs no pipeline I/O.
func resolveRunOptions(c *cli.Context) (*runOptions, error) {
	if c.NArg() != 3 {
		return nil, &types.ConfigurationError{
			Msg: fmt.Sprintf("expected 3 arguments <organism> <input> <output>, got %d", c.NArg()),
		}
	}
	organism, err := types.ParseOrganism(c.Args().Get(0))
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	runID := c.String("run-id")
	if runID == "" {
		runID = uuid.NewString()
	}

	opts := &runOptions{
		meta: &types.RunMeta{
			RunID:      runID,
			Organism:   organism,
			InputPath:  c.Args().Get(1),
			OutputPath: c.Args().Get(2),
		},
		chunk: chunk.Options{
			Size:     resolveInt(c, "chunk-size", configVal(cfg, func(c *config.Config) int { return derefInt(c.Chunk.Size) })),
			Truncate: resolveInt(c, "truncate", configVal(cfg, func(c *config.Config) int { return derefInt(c.Chunk.Truncate) })),
			WorkDir:  resolveString(c, "work-dir", configVal(cfg, func(c *config.Config) string { return c.WorkDir })),
		},
		tool: runtime.ToolConfig{
			Path: resolveString(c, "tool", configVal(cfg, func(c *config.Config) string { return c.Tool.Path })),
			Args: resolveStringSlice(c, "tool-arg", configVal(cfg, func(c *config.Config) []string { return c.Tool.Args })),
		},
		storage: resolveStorageChoice(c, cfg),
	}
	if err := opts.chunk.Validate(); err != nil {
		return nil, err
	}
	if err := opts.meta.Validate(); err != nil {
		return nil, err
	}

	opts.tool.Env, err = parseToolEnv(configVal(cfg, func(c *config.Config) map[string]string { return c.Tool.Env }), c.StringSlice("tool-env"))
	if err != nil {
		return nil, err
	}

	if opts.storage.enabled() {
		if err := validateStorageConfig(opts.storage); err != nil {
			return nil, &types.ConfigurationError{Msg: err.Error()}
		}
	}

	adapterType := resolveString(c, "adapter", configVal(cfg, func(c *config.Config) string { return c.Adapter.Type }))
	opts.adapter, err = parseAdapterConfigWithPrecedence(c, cfg, adapterType)
	if err != nil {
		return nil, &types.ConfigurationError{Msg: err.Error()}
	}

	return opts, nil
}

// parseToolEnv merges config env with --tool-env KEY=VALUE pairs; flags win.
func parseToolEnv(base map[string]string, pairs []string) (map[string]string, error) {
	if len(base) == 0 && len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(base)+len(pairs))
	maps.Copy(env, base)
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, &types.ConfigurationError{Msg: fmt.Sprintf("invalid --tool-env %q: expected KEY=VALUE", p)}
		}
		env[k] = v
	}
	return env, nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// archiveRun writes the run summary, and the merged table when tablePath is
// set, to the run archive.
func archiveRun(ctx context.Context, sc storageChoice, cfg lode.Config, summary lode.RunSummary, tablePath string, collector *metrics.Collector) error {
	client, err := buildArchiveClient(ctx, sc, cfg)
	if err != nil {
		collector.IncLodeWriteFailure()
		return err
	}
	archiver := lode.NewArchiver(client, collector)
	defer func() { _ = archiver.Close() }()
	return archiver.Archive(ctx, summary, tablePath)
}

func publishEvent(ctx context.Context, ac *adapterChoice, event *adapter.RunCompletedEvent) error {
	a, err := buildAdapter(ac)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return a.Publish(ctx, event)
}

// exitCodeForError maps a pre-run error to an exit code.
func exitCodeForError(err error) int {
	return outcomeToExitCode(types.ClassifyError(err))
}

func outcomeToExitCode(status types.OutcomeStatus) int {
	switch status {
	case types.OutcomeSuccess:
		return exitSuccess
	case types.OutcomeConfigError:
		return exitConfigError
	case types.OutcomeMalformedInput:
		return exitMalformedInput
	case types.OutcomeToolFailure:
		return exitToolFailure
	case types.OutcomeSchemaViolation:
		return exitSchemaViolation
	default:
		return exitInternalError
	}
}

func printCleanupWarning(w io.Writer, report runtime.CleanupReport) {
	paths := make([]string, len(report.Failures))
	for i, f := range report.Failures {
		paths[i] = f.Path
	}
	fmt.Fprintf(w, "Warning: could not remove %d intermediate file(s): %s\n",
		len(report.Failures), strings.Join(paths, ", "))
}

func printRunResult(w io.Writer, result *runtime.RunResult) {
	fmt.Fprintf(w, "run_id=%s, organism=%s, outcome=%s, duration=%s\n",
		result.RunMeta.RunID,
		result.RunMeta.Organism,
		result.Outcome.Status,
		result.Duration.Round(time.Millisecond),
	)
	fmt.Fprintf(w, "records=%d, chunks=%d, truncated=%d, invocations=%d, rows=%d\n",
		result.Split.Records,
		result.Split.Chunks,
		result.Split.Truncated,
		len(result.Invocations),
		result.Merge.Rows,
	)
}
