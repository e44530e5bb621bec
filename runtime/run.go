package runtime

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/justapithecus/sigsplit/chunk"
	"github.com/justapithecus/sigsplit/fasta"
	"github.com/justapithecus/sigsplit/iox"
	"github.com/justapithecus/sigsplit/log"
	"github.com/justapithecus/sigsplit/metrics"
	"github.com/justapithecus/sigsplit/tabular"
	"github.com/justapithecus/sigsplit/types"
)

// StagingSuffix is appended to the output path for the file the merge
// writes before it is moved into place.
const StagingSuffix = ".partial"

// RunConfig configures a single run.
type RunConfig struct {
	// RunMeta is the run identity.
	RunMeta *types.RunMeta
	// Chunk configures splitting. Zero values take the package defaults.
	Chunk chunk.Options
	// Tool configures the prediction tool. Organism is taken from RunMeta.
	Tool ToolConfig
	// InvokerFactory overrides invoker creation (for testing).
	// If nil, uses NewToolManager.
	InvokerFactory InvokerFactory
	// Schema is the tool output layout. Defaults to tabular.SignalP3.
	Schema *tabular.Schema
	// Logger receives run logs. If nil, a stderr logger with run context is used.
	Logger *log.Logger
	// Collector is the metrics collector for this run.
	// If nil, no metrics are recorded (all Collector methods are nil-safe).
	Collector *metrics.Collector
}

// RunResult represents the result of a run.
type RunResult struct {
	// RunMeta is the run identity.
	RunMeta *types.RunMeta
	// Outcome is the run outcome.
	Outcome *types.RunOutcome
	// Err is the error behind a failed outcome, nil on success.
	Err error
	// Duration is the total run duration, cleanup included.
	Duration time.Duration
	// Split holds record and chunk counts.
	Split chunk.Stats
	// Merge holds merged row counts.
	Merge tabular.MergeStats
	// Invocations lists every tool run attempted, in chunk order.
	Invocations []InvocationResult
	// Cleanup reports the intermediate file removal.
	Cleanup CleanupReport
}

// FailedInvocation returns the last invocation if it failed.
func (r *RunResult) FailedInvocation() *InvocationResult {
	if n := len(r.Invocations); n > 0 && r.Invocations[n-1].ExitCode != 0 {
		return &r.Invocations[n-1]
	}
	return nil
}

// RunOrchestrator orchestrates a single run.
type RunOrchestrator struct {
	config    *RunConfig
	logger    *log.Logger
	invoker   Invoker
	schema    *tabular.Schema
	startTime time.Time
}

// NewRunOrchestrator creates a new run orchestrator.
// Invalid run metadata or chunk options are reported before any file is
// touched.
func NewRunOrchestrator(config *RunConfig) (*RunOrchestrator, error) {
	if config.RunMeta == nil {
		return nil, errors.New("run metadata is required")
	}
	if err := config.RunMeta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run metadata: %w", err)
	}
	config.Chunk = config.Chunk.WithDefaults()
	if err := config.Chunk.Validate(); err != nil {
		return nil, err
	}
	if err := checkOutputPath(config.RunMeta, config.Chunk); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = log.NewLogger(config.RunMeta)
	}

	toolConfig := config.Tool
	toolConfig.Organism = config.RunMeta.Organism

	var invoker Invoker
	if config.InvokerFactory != nil {
		invoker = config.InvokerFactory(&toolConfig)
	} else {
		invoker = NewToolManager(&toolConfig)
	}

	schema := config.Schema
	if schema == nil {
		schema = tabular.SignalP3
	}

	return &RunOrchestrator{
		config:  config,
		logger:  logger,
		invoker: invoker,
		schema:  schema,
	}, nil
}

// Execute executes the run end-to-end:
//  1. Stream the input into chunk files
//  2. Invoke the tool on each chunk in order, stopping at the first failure
//  3. Merge the results into a staging file and move it over the output
//  4. Remove every intermediate file, whatever happened above
//
// The output file is only created or replaced when every step succeeds.
// The returned error is the same as RunResult.Err.
func (r *RunOrchestrator) Execute(ctx context.Context) (*RunResult, error) {
	r.startTime = time.Now()
	r.config.Collector.IncRunStarted()

	r.logger.Info("starting run", map[string]any{
		"output":     r.config.RunMeta.OutputPath,
		"chunk_size": r.config.Chunk.Size,
		"truncate":   r.config.Chunk.Truncate,
	})

	result := &RunResult{RunMeta: r.config.RunMeta}
	arts := types.NewRunArtifacts()

	err := r.execute(ctx, arts, result)

	result.Cleanup = Cleanup(arts.Paths(), r.logger)
	r.config.Collector.AddCleanup(result.Cleanup.Removed, len(result.Cleanup.Failures))

	result.Err = err
	result.Outcome = DetermineOutcome(err, result.Split.Chunks, result.Merge.Rows)
	result.Duration = time.Since(r.startTime)

	if err != nil {
		r.config.Collector.IncRunFailed()
		r.logger.Info("run failed", map[string]any{
			"outcome":  result.Outcome.Status,
			"error":    err.Error(),
			"duration": result.Duration.String(),
		})
	} else {
		r.config.Collector.IncRunCompleted()
		r.logger.Info("run completed", map[string]any{
			"outcome":  result.Outcome.Status,
			"records":  result.Split.Records,
			"chunks":   result.Split.Chunks,
			"rows":     result.Merge.Rows,
			"duration": result.Duration.String(),
		})
	}
	return result, err
}

func (r *RunOrchestrator) execute(ctx context.Context, arts *types.RunArtifacts, result *RunResult) error {
	meta := r.config.RunMeta

	if err := r.split(arts, result); err != nil {
		return err
	}

	for _, c := range arts.Chunks() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run canceled before chunk %d: %w", c.Index, err)
		}

		clog := r.logger.With(map[string]any{"chunk": c.Index})
		clog.Debug("invoking tool", map[string]any{"records": c.Records})
		inv, err := r.invoker.Invoke(ctx, c)
		if inv != nil {
			result.Invocations = append(result.Invocations, *inv)
		}
		if err != nil {
			r.config.Collector.IncToolInvocationFailure()
			fields := map[string]any{"error": err.Error()}
			if inv != nil {
				fields["exit_code"] = inv.ExitCode
				fields["command"] = inv.Command
			}
			clog.Info("tool invocation failed", fields)
			return err
		}
		r.config.Collector.IncToolInvocationSuccess()
	}

	staging := meta.OutputPath + StagingSuffix
	arts.AddFile(staging)

	stats, err := r.merge(ctx, arts.ResultPaths(), staging)
	result.Merge = stats
	r.config.Collector.AddRowsMerged(stats.Rows)
	if err != nil {
		return err
	}

	if err := iox.CommitFile(staging, meta.OutputPath); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}
	return nil
}

// checkOutputPath rejects outputs that the run would delete or that would
// clobber the input through the staging file.
func checkOutputPath(meta *types.RunMeta, opts chunk.Options) error {
	if chunk.IsIntermediate(meta.InputPath, opts.WorkDir, meta.OutputPath) {
		return &types.ConfigurationError{
			Msg: fmt.Sprintf("output %s collides with an intermediate chunk file", meta.OutputPath),
		}
	}
	staging := meta.OutputPath + StagingSuffix
	if sameFile(staging, meta.InputPath) {
		return &types.ConfigurationError{
			Msg: fmt.Sprintf("staging file %s would overwrite the input", staging),
		}
	}
	if sameFile(meta.OutputPath, meta.InputPath) {
		return &types.ConfigurationError{Msg: "input and output must be different files"}
	}
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func (r *RunOrchestrator) split(arts *types.RunArtifacts, result *RunResult) error {
	meta := r.config.RunMeta

	reader, err := fasta.Open(meta.InputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &types.ConfigurationError{Msg: fmt.Sprintf("input file %s does not exist", meta.InputPath)}
		}
		return fmt.Errorf("open input: %w", err)
	}
	defer iox.DiscardClose(reader)

	_, stats, err := chunk.Split(reader, meta.InputPath, r.config.Chunk, arts)
	result.Split = stats
	r.config.Collector.AddSplit(stats.Records, stats.Chunks, stats.Truncated)
	if err != nil {
		return err
	}

	r.logger.Info("input split", map[string]any{
		"records":   stats.Records,
		"chunks":    stats.Chunks,
		"truncated": stats.Truncated,
	})
	return nil
}

func (r *RunOrchestrator) merge(ctx context.Context, paths []string, staging string) (tabular.MergeStats, error) {
	f, err := os.Create(staging)
	if err != nil {
		return tabular.MergeStats{}, fmt.Errorf("create output: %w", err)
	}

	stats, err := tabular.NewMerger(r.schema).Merge(ctx, paths, f)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	return stats, err
}
