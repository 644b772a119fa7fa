package sender

import (
	"context"
	"fmt"
	"time"
)

// DefaultPollInterval is the spacing between liveness checks.
const DefaultPollInterval = time.Second

// minTimeoutSeconds is the floor applied to misconfigured readiness bounds.
const minTimeoutSeconds = 1

// Liveness reports whether the connection handshake has completed.
type Liveness interface {
	IsConnected() bool
}

// Checker waits for a connection that is already connecting to become live.
//
// The transport has no "connected" event to wait on, so the Checker polls:
// sleep one interval, ask Liveness, repeat up to the bound.
type Checker struct {
	// Interval between polls. Zero means DefaultPollInterval.
	Interval time.Duration

	// Logger receives the debug line on success and the critical line on
	// timeout. Nil disables logging.
	Logger Logger
}

// EffectiveTimeout returns the readiness bound in seconds, raising values
// below one to one.
func EffectiveTimeout(timeoutSeconds int) int {
	return max(minTimeoutSeconds, timeoutSeconds)
}

// AwaitReady polls conn once per second until it reports live or
// timeoutSeconds polls have failed.
//
// Parameters:
//   - ctx: Cancels the wait early
//   - conn: A connection whose connect has already been initiated
//   - timeoutSeconds: Bound in seconds; values below 1 are treated as 1
//   - log: Optional logger
//
// Returns:
//   - error: nil once live, ErrConnectionTimeout when the bound is exhausted,
//     or the context error if ctx ends first
func AwaitReady(ctx context.Context, conn Liveness, timeoutSeconds int, log Logger) error {
	return Checker{Logger: log}.Await(ctx, conn, timeoutSeconds)
}

// Await is AwaitReady with the Checker's interval and logger.
//
// Each poll counts as one elapsed second of the bound, so a connection that
// turns live at poll k returns after k intervals and never waits out the rest.
func (c Checker) Await(ctx context.Context, conn Liveness, timeoutSeconds int) error {
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	log := c.Logger
	if log == nil {
		log = nopLogger{}
	}

	bound := EffectiveTimeout(timeoutSeconds)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for elapsed := 1; elapsed <= bound; elapsed++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("sender: waiting for connection: %w", ctx.Err())
		case <-ticker.C:
		}

		if conn.IsConnected() {
			log.Debug("sender connected", "elapsed_seconds", elapsed)
			return nil
		}
	}

	log.Critical("sender timed out while connecting", "timeout_seconds", bound)
	return fmt.Errorf("%w: not live after %d seconds", ErrConnectionTimeout, bound)
}
