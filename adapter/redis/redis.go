// Package redis PUBLISHes run completion events on a Redis channel.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/justapithecus/sigsplit/adapter"
)

// Defaults applied by New.
const (
	DefaultChannel = "sigsplit:run_completed"
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 3
)

// Config configures the Redis adapter.
type Config struct {
	// URL is the connection URL, redis://[:password@]host:port[/db] (required).
	URL string
	// Channel is the pub/sub channel (default sigsplit:run_completed).
	Channel string
	// Timeout bounds each attempt (default 5s).
	Timeout time.Duration
	// Retries is the number of attempts after the first one.
	Retries int
	// Encoding is the payload format (default json).
	Encoding adapter.Encoding
}

// Adapter publishes events via Redis PUBLISH.
type Adapter struct {
	channel  string
	delivery adapter.Delivery
	client   *goredis.Client
}

// New creates a Redis adapter. The URL is required and must parse.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}
	d, err := adapter.Delivery{
		Timeout:  cfg.Timeout,
		Retries:  cfg.Retries,
		Encoding: cfg.Encoding,
	}.Resolve(DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: %w", err)
	}

	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Adapter{
		channel:  channel,
		delivery: d,
		client:   goredis.NewClient(opts),
	}, nil
}

// Publish sends the event to the channel, retrying with backoff until the
// client is closed or attempts run out. Zero subscribers is not an error.
func (a *Adapter) Publish(ctx context.Context, event *adapter.RunCompletedEvent) error {
	err := adapter.Deliver(ctx, a.delivery, event, func(ctx context.Context, body []byte) error {
		err := a.client.Publish(ctx, a.channel, body).Err()
		if errors.Is(err, goredis.ErrClosed) {
			return adapter.Permanent(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Close closes the client.
func (a *Adapter) Close() error {
	return a.client.Close()
}

var _ adapter.Adapter = (*Adapter)(nil)
