package lode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/justapithecus/sigsplit/metrics"
)

// TableContentType is the content type recorded for merged tables.
const TableContentType = "text/tab-separated-values"

// Archiver stores a finished run in a Client and records write metrics.
// Each PutFile/WriteRunSummary call increments lode_write_success or
// lode_write_failure on the collector.
type Archiver struct {
	client    Client
	collector *metrics.Collector
}

// NewArchiver wraps a client with metrics instrumentation.
func NewArchiver(client Client, collector *metrics.Collector) *Archiver {
	return &Archiver{client: client, collector: collector}
}

// Archive stores the merged table at tablePath (when non-empty) as a sidecar
// file, then writes the run summary. A failed table upload does not prevent
// the summary write; all failures are joined in the returned error.
func (a *Archiver) Archive(ctx context.Context, summary RunSummary, tablePath string) error {
	var errs []error

	if tablePath != "" {
		name := filepath.Base(tablePath)
		if err := a.putTable(ctx, name, tablePath); err != nil {
			errs = append(errs, err)
		} else {
			summary.TableFile = name
		}
	}

	err := a.client.WriteRunSummary(ctx, summary)
	a.record(err)
	if err != nil {
		errs = append(errs, fmt.Errorf("write run summary: %w", err))
	}

	return errors.Join(errs...)
}

func (a *Archiver) putTable(ctx context.Context, name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		a.record(err)
		return fmt.Errorf("read table %s: %w", path, err)
	}
	err = a.client.PutFile(ctx, name, TableContentType, data)
	a.record(err)
	if err != nil {
		return fmt.Errorf("store table %s: %w", name, err)
	}
	return nil
}

func (a *Archiver) record(err error) {
	if err != nil {
		a.collector.IncLodeWriteFailure()
	} else {
		a.collector.IncLodeWriteSuccess()
	}
}

// Close closes the underlying client.
func (a *Archiver) Close() error {
	return a.client.Close()
}
