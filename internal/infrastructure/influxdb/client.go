package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/mqtt-sender/internal/infrastructure/config"
)

const (
	// connectTimeout bounds the startup ping.
	connectTimeout = 10 * time.Second

	defaultBatchSize     = 100
	defaultFlushInterval = 10 * time.Second
)

// Client is the telemetry sink for one sender process.
//
// Every point carries the default tags given to Connect, so points from
// several senders writing to one bucket stay distinguishable.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Writes are non-blocking and batched; they become no-ops after Close.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI

	mu      sync.RWMutex
	closed  bool
	onError func(err error)

	closeOnce sync.Once
}

// Connect pings the server and opens a batched write API on the configured
// org and bucket.
//
// Parameters:
//   - ctx: Bounds the startup ping together with an internal timeout
//   - cfg: InfluxDB configuration; a disabled config yields ErrDisabled
//   - tags: Default tags added to every point (e.g. service, client_id)
//
// Returns:
//   - *Client: Ready telemetry sink
//   - error: ErrDisabled, or ErrConnectionFailed wrapping the ping failure
func Connect(ctx context.Context, cfg config.InfluxDBConfig, tags map[string]string) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	opts := influxdb2.DefaultOptions().
		SetBatchSize(batchSize(cfg.BatchSize)).
		SetFlushInterval(flushIntervalMillis(cfg.FlushInterval))
	for key, value := range tags {
		opts.WriteOptions().AddDefaultTag(key, value)
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
	}
	go c.forwardErrors(c.writeAPI.Errors())

	return c, nil
}

// batchSize falls back to the default for non-positive config values.
func batchSize(configured int) uint {
	if configured <= 0 {
		return defaultBatchSize
	}
	return uint(configured) // #nosec G115 -- positive
}

// flushIntervalMillis converts the configured seconds to the milliseconds the
// client library expects.
func flushIntervalMillis(seconds int) uint {
	interval := defaultFlushInterval
	if seconds > 0 {
		interval = time.Duration(seconds) * time.Second
	}
	return uint(interval.Milliseconds()) // #nosec G115 -- positive
}

// forwardErrors hands async write failures to the error callback.
func (c *Client) forwardErrors(errorsCh <-chan error) {
	for err := range errorsCh {
		c.mu.RLock()
		callback := c.onError
		c.mu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// SetOnError sets the callback for failed batch writes.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// Close stops accepting points, flushes what is buffered and releases the
// client. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		c.writeAPI.Flush()
		c.client.Close()
	})
	return nil
}
