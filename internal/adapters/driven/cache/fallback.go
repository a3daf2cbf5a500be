package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// Ensure Fallback implements the interface.
var _ driven.Cache = (*Fallback)(nil)

// Fallback writes through to a local cache and Redis, and reads from Redis
// while the breaker is closed. After consecutive Redis failures the breaker
// opens and reads are served locally until it half-opens again.
//
// Deletes that cannot reach Redis are queued and replayed, in order, before
// the next Redis operation, so a cleared key never reappears after an outage.
type Fallback struct {
	remote  driven.Cache
	local   *Memory
	breaker *gobreaker.CircuitBreaker

	mu      sync.Mutex
	pending []pendingDelete
}

// pendingDelete is a delete Redis has not seen yet. Exactly one of keys
// and prefix is set.
type pendingDelete struct {
	keys   []string
	prefix string
}

// BreakerSettings returns the circuit breaker settings used by NewFallback.
func BreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 3 },
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Cache breaker %s: %s -> %s", name, from, to)
		},
	}
}

// NewFallback creates a fallback cache over remote.
func NewFallback(remote driven.Cache, settings gobreaker.Settings) *Fallback {
	return &Fallback{
		remote:  remote,
		local:   NewMemory(),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Healthy reports whether the breaker currently allows Redis traffic.
func (f *Fallback) Healthy() bool {
	return f.breaker.State() != gobreaker.StateOpen
}

type hit struct {
	value []byte
	ok    bool
}

// Get reads from Redis, or from the local cache when Redis is unavailable.
func (f *Fallback) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := f.replay(ctx); err != nil {
		logger.Debug("Cache read of %s served locally: %v", key, err)
		return f.local.Get(ctx, key)
	}
	res, err := f.breaker.Execute(func() (interface{}, error) {
		value, ok, err := f.remote.Get(ctx, key)
		return hit{value: value, ok: ok}, err
	})
	if err != nil {
		logger.Debug("Cache read of %s served locally: %v", key, err)
		return f.local.Get(ctx, key)
	}
	h := res.(hit)
	return h.value, h.ok, nil
}

// Set writes locally and, when possible, to Redis.
func (f *Fallback) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := f.local.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if err := f.replay(ctx); err != nil {
		logger.Warn("Cache set skipped on redis: %v", err)
		return nil
	}
	f.remoteDo("set", func() error { return f.remote.Set(ctx, key, value, ttl) })
	return nil
}

// Delete removes keys locally and, when possible, from Redis.
func (f *Fallback) Delete(ctx context.Context, keys ...string) error {
	if err := f.local.Delete(ctx, keys...); err != nil {
		return err
	}
	f.remoteDelete(ctx, pendingDelete{keys: keys})
	return nil
}

// DeletePrefix removes matching keys locally and, when possible, from Redis.
func (f *Fallback) DeletePrefix(ctx context.Context, prefix string) error {
	if err := f.local.DeletePrefix(ctx, prefix); err != nil {
		return err
	}
	f.remoteDelete(ctx, pendingDelete{prefix: prefix})
	return nil
}

func (f *Fallback) remoteDo(op string, fn func() error) {
	_, err := f.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err != nil {
		logger.Warn("Cache %s skipped on redis: %v", op, err)
	}
}

// remoteDelete queues d and replays the queue. Whatever Redis rejects stays
// queued for the next operation.
func (f *Fallback) remoteDelete(ctx context.Context, d pendingDelete) {
	f.mu.Lock()
	f.pending = append(f.pending, d)
	f.mu.Unlock()

	if err := f.replay(ctx); err != nil {
		logger.Warn("Cache delete queued until redis recovers: %v", err)
	}
}

// replay applies queued deletes to Redis in order and stops at the first
// failure.
func (f *Fallback) replay(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.pending) > 0 {
		d := f.pending[0]
		_, err := f.breaker.Execute(func() (interface{}, error) {
			if d.prefix != "" {
				return nil, f.remote.DeletePrefix(ctx, d.prefix)
			}
			return nil, f.remote.Delete(ctx, d.keys...)
		})
		if err != nil {
			return err
		}
		f.pending = f.pending[1:]
	}
	return nil
}

// Pending returns the number of deletes waiting for Redis.
func (f *Fallback) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}
