package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyCache is a remote cache that can be switched into failure.
type flakyCache struct {
	*Memory
	down  bool
	calls int
}

var errDown = errors.New("connection refused")

func newFlakyCache() *flakyCache {
	return &flakyCache{Memory: NewMemory()}
}

func (f *flakyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.calls++
	if f.down {
		return nil, false, errDown
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.calls++
	if f.down {
		return errDown
	}
	return f.Memory.Set(ctx, key, value, ttl)
}

func (f *flakyCache) Delete(ctx context.Context, keys ...string) error {
	f.calls++
	if f.down {
		return errDown
	}
	return f.Memory.Delete(ctx, keys...)
}

func (f *flakyCache) DeletePrefix(ctx context.Context, prefix string) error {
	f.calls++
	if f.down {
		return errDown
	}
	return f.Memory.DeletePrefix(ctx, prefix)
}

func TestFallback_HealthyReadsRemote(t *testing.T) {
	remote := newFlakyCache()
	c := NewFallback(remote, BreakerSettings("test"))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	// A value written only to redis by another process is visible.
	require.NoError(t, remote.Memory.Set(ctx, "shared", []byte("s"), time.Minute))

	got, ok, err := c.Get(ctx, "shared")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("s"), got)
	assert.True(t, c.Healthy())
}

func TestFallback_RemoteDownServesLocal(t *testing.T) {
	remote := newFlakyCache()
	c := NewFallback(remote, BreakerSettings("test"))
	ctx := context.Background()

	remote.down = true
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestFallback_BreakerOpensAfterFailures(t *testing.T) {
	remote := newFlakyCache()
	c := NewFallback(remote, BreakerSettings("test"))
	ctx := context.Background()
	remote.down = true

	for i := 0; i < 3; i++ {
		_, _, err := c.Get(ctx, "k")
		require.NoError(t, err)
	}
	assert.False(t, c.Healthy())

	calls := remote.calls
	_, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, calls, remote.calls, "open breaker must not call redis")
}

// TestFallback_ClearDuringOutageSurvivesRecovery tests that a prefix cleared
// while redis is down stays cleared once redis is back.
func TestFallback_ClearDuringOutageSurvivesRecovery(t *testing.T) {
	remote := newFlakyCache()
	c := NewFallback(remote, BreakerSettings("test"))
	ctx := context.Background()
	marker := "ledgerbridge:system:synced:invoices"

	require.NoError(t, c.Set(ctx, marker, []byte("1"), time.Hour))

	remote.down = true
	require.NoError(t, c.DeletePrefix(ctx, "ledgerbridge:system:"))
	assert.Equal(t, 1, c.Pending())

	_, ok, err := c.Get(ctx, marker)
	require.NoError(t, err)
	assert.False(t, ok, "cleared during outage")

	remote.down = false
	_, ok, err = c.Get(ctx, marker)
	require.NoError(t, err)
	assert.False(t, ok, "cleared after recovery")
	assert.Equal(t, 0, c.Pending())

	_, ok, err = remote.Memory.Get(ctx, marker)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFallback_QueuedDeletesReplayInOrder(t *testing.T) {
	remote := newFlakyCache()
	c := NewFallback(remote, BreakerSettings("test"))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))

	remote.down = true
	require.NoError(t, c.Delete(ctx, "a"))
	assert.Equal(t, 1, c.Pending())

	remote.down = false
	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Hour))
	assert.Equal(t, 0, c.Pending())

	_, okA, _ := remote.Memory.Get(ctx, "a")
	_, okB, _ := remote.Memory.Get(ctx, "b")
	_, okC, _ := remote.Memory.Get(ctx, "c")
	assert.False(t, okA)
	assert.True(t, okB)
	assert.True(t, okC)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `ledgerbridge:user:1:`, escapeGlob("ledgerbridge:user:1:"))
	assert.Equal(t, `a\*b\?\[c\]`, escapeGlob("a*b?[c]"))
}
