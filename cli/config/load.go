package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/justapithecus/sigsplit/types"
)

// Load reads a YAML config file, expands environment variables, and
// decodes it into a Config. Unknown keys are rejected. Every failure is a
// *types.ConfigurationError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &types.ConfigurationError{Msg: fmt.Sprintf("config file not found: %s", path)}
		}
		return nil, &types.ConfigurationError{Msg: fmt.Sprintf("cannot read config file %q: %v", path, err)}
	}

	expanded := ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	// An empty or comment-only document decodes to io.EOF.
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &types.ConfigurationError{Msg: fmt.Sprintf("invalid YAML in %s: %v", path, err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
