package cmd

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/sigsplit/adapter"
	"github.com/justapithecus/sigsplit/adapter/redis"
	"github.com/justapithecus/sigsplit/adapter/webhook"
	"github.com/justapithecus/sigsplit/cli/config"
	"github.com/justapithecus/sigsplit/lode"
	"github.com/justapithecus/sigsplit/runtime"
	"github.com/justapithecus/sigsplit/types"
)

// adapterChoice is the resolved event adapter configuration.
type adapterChoice struct {
	adapterType string
	url         string
	channel     string
	encoding    adapter.Encoding
	headers     map[string]string
	timeout     time.Duration
	retries     int
}

// AdapterFlags returns the event adapter flags of the run command.
func AdapterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "adapter",
			Usage: "Event adapter published to after the run: webhook or redis",
		},
		&cli.StringFlag{
			Name:  "adapter-url",
			Usage: "Webhook endpoint or Redis URL",
		},
		&cli.StringFlag{
			Name:  "adapter-channel",
			Usage: "Redis channel (default " + redis.DefaultChannel + ")",
		},
		&cli.StringFlag{
			Name:  "adapter-encoding",
			Usage: "Event payload encoding: json or msgpack",
		},
		&cli.StringSliceFlag{
			Name:  "adapter-header",
			Usage: "Extra webhook header as key=value (repeatable)",
		},
		&cli.DurationFlag{
			Name:  "adapter-timeout",
			Usage: "Per-attempt publish timeout",
			Value: webhook.DefaultTimeout,
		},
		&cli.IntFlag{
			Name:  "adapter-retries",
			Usage: "Publish retry attempts",
			Value: webhook.DefaultRetries,
		},
	}
}

// parseAdapterConfigWithPrecedence resolves adapter settings for adapterType.
// An empty adapterType disables publishing and returns nil.
func parseAdapterConfigWithPrecedence(c *cli.Context, cfg *config.Config, adapterType string) (*adapterChoice, error) {
	if adapterType == "" {
		return nil, nil
	}
	if adapterType != "webhook" && adapterType != "redis" {
		return nil, fmt.Errorf("unknown adapter type %q (valid: webhook, redis)", adapterType)
	}

	ac := &adapterChoice{
		adapterType: adapterType,
		url:         resolveString(c, "adapter-url", configVal(cfg, func(c *config.Config) string { return c.Adapter.URL })),
		channel:     resolveString(c, "adapter-channel", configVal(cfg, func(c *config.Config) string { return c.Adapter.Channel })),
		timeout:     resolveDuration(c, "adapter-timeout", configVal(cfg, func(c *config.Config) time.Duration { return c.Adapter.Timeout.Duration })),
		retries:     c.Int("adapter-retries"),
	}
	if !c.IsSet("adapter-retries") && cfg != nil && cfg.Adapter.Retries != nil {
		ac.retries = *cfg.Adapter.Retries
	}
	if ac.url == "" {
		return nil, fmt.Errorf("--adapter-url is required when --adapter=%s", adapterType)
	}

	enc, err := adapter.ParseEncoding(resolveString(c, "adapter-encoding", configVal(cfg, func(c *config.Config) string { return c.Adapter.Encoding })))
	if err != nil {
		return nil, fmt.Errorf("invalid --adapter-encoding: %w", err)
	}
	ac.encoding = enc

	ac.headers = make(map[string]string)
	if cfg != nil {
		maps.Copy(ac.headers, cfg.Adapter.Headers)
	}
	for _, h := range c.StringSlice("adapter-header") {
		k, v, ok := strings.Cut(h, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --adapter-header %q: expected key=value", h)
		}
		ac.headers[strings.TrimSpace(k)] = v
	}

	return ac, nil
}

// buildAdapter constructs the adapter described by ac.
func buildAdapter(ac *adapterChoice) (adapter.Adapter, error) {
	switch ac.adapterType {
	case "webhook":
		a, err := webhook.New(webhook.Config{
			URL:      ac.url,
			Headers:  ac.headers,
			Timeout:  ac.timeout,
			Retries:  ac.retries,
			Encoding: ac.encoding,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "redis":
		a, err := redis.New(redis.Config{
			URL:      ac.url,
			Channel:  ac.channel,
			Timeout:  ac.timeout,
			Retries:  ac.retries,
			Encoding: ac.encoding,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown adapter type %q", ac.adapterType)
	}
}

// buildRunCompletedEvent builds the event published after a run.
// storagePath is empty when the run was not archived.
func buildRunCompletedEvent(result *runtime.RunResult, exitCode int, storagePath string, finishedAt time.Time) *adapter.RunCompletedEvent {
	return &adapter.RunCompletedEvent{
		EventType:   adapter.EventTypeRunCompleted,
		Version:     types.Version,
		RunID:       result.RunMeta.RunID,
		Organism:    result.RunMeta.Organism.Name(),
		Input:       result.RunMeta.InputPath,
		Output:      result.RunMeta.OutputPath,
		Outcome:     string(result.Outcome.Status),
		Message:     result.Outcome.Message,
		ExitCode:    exitCode,
		Records:     result.Split.Records,
		Chunks:      result.Split.Chunks,
		Rows:        result.Merge.Rows,
		StoragePath: storagePath,
		Timestamp:   finishedAt.UTC().Format(time.RFC3339),
		DurationMs:  result.Duration.Milliseconds(),
	}
}

// buildRunSummary builds the archived summary of a run.
func buildRunSummary(result *runtime.RunResult, exitCode int, startedAt time.Time) lode.RunSummary {
	return lode.RunSummary{
		RunID:           result.RunMeta.RunID,
		Organism:        result.RunMeta.Organism.Name(),
		Input:           result.RunMeta.InputPath,
		Output:          result.RunMeta.OutputPath,
		Outcome:         string(result.Outcome.Status),
		Message:         result.Outcome.Message,
		ExitCode:        exitCode,
		StartedAt:       startedAt,
		DurationMs:      result.Duration.Milliseconds(),
		Records:         result.Split.Records,
		Chunks:          result.Split.Chunks,
		Truncated:       result.Split.Truncated,
		Invocations:     len(result.Invocations),
		Rows:            result.Merge.Rows,
		FilesRemoved:    result.Cleanup.Removed,
		CleanupFailures: len(result.Cleanup.Failures),
	}
}
