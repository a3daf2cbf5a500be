package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/cache"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

func TestSettingsDir(t *testing.T) {
	dir, err := settingsDir("/tmp/custom")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom", dir)

	t.Setenv("HOME", "/home/tester")
	dir, err = settingsDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".ledgerbridge"), dir)
}

func TestOpenStores_Memory(t *testing.T) {
	st, err := openStores(domain.DatabaseSettings{Driver: "memory"})
	require.NoError(t, err)
	defer st.close()

	ctx := context.Background()
	created, err := st.contacts.Upsert(ctx, domain.Contact{RemoteID: "https://api.test/v2/contacts/1"})
	require.NoError(t, err)
	assert.True(t, created)
}

func TestOpenStores_SQLite(t *testing.T) {
	st, err := openStores(domain.DatabaseSettings{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "mirror.db"),
	})
	require.NoError(t, err)
	defer st.close()

	require.NoError(t, st.links.Link(context.Background(), domain.PrincipalLink{
		PrincipalID:     "alice",
		ContactRemoteID: "https://api.test/v2/contacts/1",
	}))
}

func TestOpenCache_DefaultsToMemory(t *testing.T) {
	c, closeCache, err := openCache(context.Background(), domain.CacheSettings{Driver: "memory"})
	require.NoError(t, err)
	defer closeCache()

	assert.IsType(t, &cache.Memory{}, c)
}

func TestBootstrap_MemoryRuntime(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LEDGERBRIDGE_DATABASE_DRIVER", "memory")

	rt, err := bootstrap(context.Background(), dir)
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, domain.EnvironmentProduction, rt.Config.Environment)
	assert.NotNil(t, rt.Mirror)
	assert.NotNil(t, rt.OAuth)
}

func TestBootstrap_InvalidSetting(t *testing.T) {
	t.Setenv("LEDGERBRIDGE_CACHE_DRIVER", "memcached")

	_, err := bootstrap(context.Background(), t.TempDir())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
