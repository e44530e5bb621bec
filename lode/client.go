// Package lode archives run summaries and merged tables in a Lode dataset.
//
// Records are laid out with Hive partitions organism/day/run_id/record_kind.
// Sidecar files (the merged table) bypass the dataset and land under the
// run's partition in files/.
package lode

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/justapithecus/lode/lode"
)

// DefaultDataset is the dataset ID used when none is configured.
const DefaultDataset = "sigsplit"

// partitionKeys is shared by the write and read paths.
var partitionKeys = []string{"organism", "day", "run_id", "record_kind"}

// DeriveDay computes the partition day from run start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Config holds the partition keys of one run.
type Config struct {
	// Dataset is the Lode dataset ID. Defaults to DefaultDataset.
	Dataset string
	// Organism is the organism partition key.
	Organism string
	// Day is derived from run start time (YYYY-MM-DD UTC).
	Day string
	// RunID is the run partition key.
	RunID string
}

// Validate checks that every partition key is set.
func (c *Config) Validate() error {
	switch {
	case c.Organism == "":
		return errors.New("lode config: organism is required")
	case c.Day == "":
		return errors.New("lode config: day is required")
	case c.RunID == "":
		return errors.New("lode config: run_id is required")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Dataset == "" {
		c.Dataset = DefaultDataset
	}
	return c
}

// Client abstracts the run archive.
type Client interface {
	// WriteRunSummary appends one run summary record.
	WriteRunSummary(ctx context.Context, summary RunSummary) error
	// PutFile stores a sidecar file under the run's partition.
	PutFile(ctx context.Context, filename, contentType string, data []byte) error
	// Close releases client resources.
	Close() error
}

// LodeClient is a Lode-backed Client.
type LodeClient struct {
	dataset lode.Dataset
	config  Config

	storeFactory lode.StoreFactory
	storeOnce    sync.Once
	store        lode.Store
	storeErr     error
}

// NewLodeClient creates a client with filesystem storage rooted at root.
func NewLodeClient(cfg Config, root string) (*LodeClient, error) {
	return NewLodeClientWithFactory(cfg, lode.NewFSFactory(root))
}

// NewLodeClientWithFactory creates a client with a custom store factory.
// Use lode.NewMemoryFactory() for testing.
func NewLodeClientWithFactory(cfg Config, factory lode.StoreFactory) (*LodeClient, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ds, err := newDataset(cfg.Dataset, factory)
	if err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}
	return newClient(ds, cfg, factory), nil
}

func newClient(ds lode.Dataset, cfg Config, factory lode.StoreFactory) *LodeClient {
	return &LodeClient{
		dataset:      ds,
		config:       cfg,
		storeFactory: factory,
	}
}

func newDataset(id string, factory lode.StoreFactory) (lode.Dataset, error) {
	return lode.NewDataset(
		lode.DatasetID(id),
		factory,
		lode.WithHiveLayout(partitionKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
}

// WriteRunSummary writes summary with this client's partition keys.
func (c *LodeClient) WriteRunSummary(ctx context.Context, summary RunSummary) error {
	record := toRunSummaryMap(summary, c.config)
	if _, err := c.dataset.Write(ctx, []any{record}, lode.Metadata{}); err != nil {
		return WrapWriteError(err, c.config.Dataset)
	}
	return nil
}

// Close releases client resources.
func (c *LodeClient) Close() error {
	// Dataset doesn't require explicit close in current Lode API
	return nil
}

// Verify LodeClient implements Client.
var _ Client = (*LodeClient)(nil)
