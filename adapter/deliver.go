package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Delivery holds the settings every adapter shares.
type Delivery struct {
	// Timeout bounds each attempt.
	Timeout time.Duration
	// Retries is the number of attempts after the first one.
	Retries int
	// Encoding is the payload format.
	Encoding Encoding
}

// Resolve fills a zero Timeout with defaultTimeout and an empty Encoding
// with JSON. Negative retries and unknown encodings are errors.
func (d Delivery) Resolve(defaultTimeout time.Duration) (Delivery, error) {
	if d.Timeout <= 0 {
		d.Timeout = defaultTimeout
	}
	if d.Retries < 0 {
		return d, fmt.Errorf("retries must be >= 0, got %d", d.Retries)
	}
	enc, err := ParseEncoding(string(d.Encoding))
	if err != nil {
		return d, err
	}
	d.Encoding = enc
	return d, nil
}

// Backoff returns the delay before retry attempt i (1-based):
// 500ms, 1s, 2s, ...
func Backoff(i int) time.Duration {
	return time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return &permanentError{err: err}
}

// Deliver encodes event once and hands the payload to send until it
// succeeds, returns a Permanent error, or 1+Retries attempts fail. Each
// attempt runs under its own Timeout.
func Deliver(ctx context.Context, d Delivery, event *RunCompletedEvent, send func(ctx context.Context, body []byte) error) error {
	body, err := Encode(event, d.Encoding)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	attempts := 1 + d.Retries
	var lastErr error
	for i := range attempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context canceled during backoff: %w", ctx.Err())
			case <-time.After(Backoff(i)):
			}
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context canceled: %w", err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, d.Timeout)
		lastErr = send(attemptCtx, body)
		cancel()
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return fmt.Errorf("non-retriable error: %w", perm.err)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
