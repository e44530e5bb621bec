package config

import (
	"fmt"
	"time"

	"github.com/justapithecus/sigsplit/types"
)

// Config represents a sigsplit.yaml configuration file.
// All values are optional and act as defaults for sigsplit run flags.
// CLI flags always override config values.
type Config struct {
	Tool    ToolConfig    `yaml:"tool"`
	Chunk   ChunkConfig   `yaml:"chunk"`
	WorkDir string        `yaml:"work_dir"`
	Storage StorageConfig `yaml:"storage"`
	Adapter AdapterConfig `yaml:"adapter"`
}

// ToolConfig describes how the prediction tool is launched.
type ToolConfig struct {
	Path string            `yaml:"path"`
	Args []string          `yaml:"args,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
}

// ChunkConfig holds chunking defaults. Nil means "not set in the file".
type ChunkConfig struct {
	Size     *int `yaml:"size,omitempty"`
	Truncate *int `yaml:"truncate,omitempty"`
}

// StorageConfig holds run archive defaults from the config file.
type StorageConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// AdapterConfig holds adapter defaults from the config file.
type AdapterConfig struct {
	Type     string            `yaml:"type"`
	URL      string            `yaml:"url"`
	Channel  string            `yaml:"channel,omitempty"`
	Encoding string            `yaml:"encoding,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Timeout  Duration          `yaml:"timeout,omitempty"`
	Retries  *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks values that are only meaningful in a certain range.
// Violations are configuration errors.
func (c *Config) Validate() error {
	if c.Chunk.Size != nil && *c.Chunk.Size < 1 {
		return &types.ConfigurationError{Msg: fmt.Sprintf("chunk.size must be >= 1, got %d", *c.Chunk.Size)}
	}
	if c.Chunk.Truncate != nil && *c.Chunk.Truncate < 1 {
		return &types.ConfigurationError{Msg: fmt.Sprintf("chunk.truncate must be >= 1, got %d", *c.Chunk.Truncate)}
	}
	switch c.Storage.Backend {
	case "", "fs", "s3":
	default:
		return &types.ConfigurationError{Msg: fmt.Sprintf("storage.backend must be fs or s3, got %q", c.Storage.Backend)}
	}
	switch c.Adapter.Type {
	case "", "webhook", "redis":
	default:
		return &types.ConfigurationError{Msg: fmt.Sprintf("adapter.type must be webhook or redis, got %q", c.Adapter.Type)}
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		return &types.ConfigurationError{Msg: fmt.Sprintf("adapter.retries must be >= 0, got %d", *c.Adapter.Retries)}
	}
	return nil
}
