package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/voicemesh/core"
	"github.com/hupe1980/voicemesh/logging"
)

// probeInterval is how long the tiered store waits after a remote failure
// before attempting to re-establish the remote tier.
const probeInterval = 30 * time.Second

// Tiered composes the shared Redis tier with a process-local fallback behind
// the core.Cache interface. The remote tier is preferred; on any remote
// failure every operation transparently uses the local map and the remote is
// re-probed after a cool-down. No operation ever fails the caller due to
// cache unavailability. Safe for concurrent use.
type Tiered struct {
	remote *Redis
	local  *Local
	logger logging.Logger
	// probe checks remote reachability during recovery; swappable for tests.
	probe func(ctx context.Context) error

	mu        sync.Mutex
	healthy   bool
	lastProbe time.Time
}

// TieredOptions configure a Tiered cache.
type TieredOptions struct {
	// Logger receives tier health transitions. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewTiered builds a tiered cache. remote may be nil, in which case the store
// runs purely on the local tier (the startup path when Redis is unreachable).
func NewTiered(remote *Redis, optFns ...func(o *TieredOptions)) *Tiered {
	opts := TieredOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	t := &Tiered{
		remote:  remote,
		local:   NewLocal(),
		logger:  opts.Logger,
		healthy: remote != nil,
	}
	if remote != nil {
		remote.onError = t.markUnhealthy
		t.probe = remote.Ping
	}
	return t
}

var _ core.Cache = (*Tiered)(nil)

func (t *Tiered) markUnhealthy(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.healthy {
		t.logger.Warn("shared cache tier lost, falling back to local", "error", err)
	}
	t.healthy = false
	t.lastProbe = time.Now()
}

// useRemote reports whether the remote tier should serve the next operation,
// re-probing it when the cool-down has elapsed. The probe runs without
// holding the mutex so concurrent operations keep serving from the local
// tier while the ping is in flight.
func (t *Tiered) useRemote(ctx context.Context) bool {
	if t.remote == nil {
		return false
	}
	t.mu.Lock()
	if t.healthy {
		t.mu.Unlock()
		return true
	}
	if time.Since(t.lastProbe) < probeInterval {
		t.mu.Unlock()
		return false
	}
	// Claim the probe slot before unlocking so only one caller pings per
	// cool-down window.
	t.lastProbe = time.Now()
	t.mu.Unlock()

	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := t.probe(pingCtx); err != nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.healthy {
		t.logger.Info("shared cache tier recovered")
		t.healthy = true
	}
	return true
}

// Get reads from the active tier.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if t.useRemote(ctx) {
		if val, ok := t.remote.Get(ctx, key); ok {
			return val, true
		}
		// A remote miss is authoritative while the tier is healthy; only
		// consult the fallback after a failure flipped the health flag.
		t.mu.Lock()
		healthy := t.healthy
		t.mu.Unlock()
		if healthy {
			return nil, false
		}
	}
	return t.local.Get(ctx, key)
}

// Set writes to the active tier. Writes always land in the local tier as well
// so a remote outage does not lose recently written entries.
func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if t.useRemote(ctx) {
		t.remote.Set(ctx, key, value, ttl)
	}
	t.local.Set(ctx, key, value, ttl)
}

// Delete removes the key from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) {
	if t.useRemote(ctx) {
		t.remote.Delete(ctx, key)
	}
	t.local.Delete(ctx, key)
}

// Healthy reports whether the remote tier is currently serving operations.
// Intended for health endpoints; call sites must not branch on it.
func (t *Tiered) Healthy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remote != nil && t.healthy
}
