// Package webhook POSTs run completion events to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/justapithecus/sigsplit/adapter"
	"github.com/justapithecus/sigsplit/iox"
)

// Defaults applied by New.
const (
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 3
)

// Headers set on every request in addition to Config.Headers.
const (
	HeaderEvent = "X-Sigsplit-Event"
	HeaderRunID = "X-Sigsplit-Run-Id"
)

// Config configures the webhook adapter.
type Config struct {
	// URL is the HTTP endpoint to POST to (required).
	URL string
	// Headers are added to each request and may override the defaults.
	Headers map[string]string
	// Timeout bounds each attempt (default 10s).
	Timeout time.Duration
	// Retries is the number of attempts after the first one.
	Retries int
	// Encoding is the body format (default json).
	Encoding adapter.Encoding
}

// Adapter publishes events via HTTP POST.
type Adapter struct {
	url      string
	headers  map[string]string
	delivery adapter.Delivery
	client   *http.Client
}

// New creates a webhook adapter. The URL is required.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook adapter requires a URL")
	}
	d, err := adapter.Delivery{
		Timeout:  cfg.Timeout,
		Retries:  cfg.Retries,
		Encoding: cfg.Encoding,
	}.Resolve(DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("webhook adapter: %w", err)
	}
	return &Adapter{
		url:      cfg.URL,
		headers:  cfg.Headers,
		delivery: d,
		client:   &http.Client{},
	}, nil
}

// Publish posts the event. 5xx responses and network errors are retried
// with backoff; any other non-2xx status fails at once.
func (a *Adapter) Publish(ctx context.Context, event *adapter.RunCompletedEvent) error {
	err := adapter.Deliver(ctx, a.delivery, event, func(ctx context.Context, body []byte) error {
		return a.post(ctx, event, body)
	})
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

func (a *Adapter) post(ctx context.Context, event *adapter.RunCompletedEvent, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return adapter.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", a.delivery.Encoding.ContentType())
	req.Header.Set(HeaderEvent, event.EventType)
	req.Header.Set(HeaderRunID, event.RunID)
	for k, v := range a.headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		return &StatusError{Code: resp.StatusCode}
	default:
		return adapter.Permanent(&StatusError{Code: resp.StatusCode})
	}
}

// Close releases idle connections.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
