package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drivers(t *testing.T) map[string]Storage {
	t.Helper()

	fs, err := NewFileStorage(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)

	out := map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   fs,
	}

	if dsn := os.Getenv("PMS_TEST_DATABASE_URL"); dsn != "" {
		pg, err := NewPostgresStorage(context.Background(), dsn)
		require.NoError(t, err)
		out["postgres"] = pg
	}

	return out
}

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, st := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			defer st.Close()

			_, ok, err := st.Get(ctx, "access_token")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, st.Set(ctx, "access_token", "abc"))
			v, ok, err := st.Get(ctx, "access_token")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc", v)

			require.NoError(t, st.Set(ctx, "access_token", "def"))
			v, _, _ = st.Get(ctx, "access_token")
			assert.Equal(t, "def", v)

			require.NoError(t, st.Remove(ctx, "access_token"))
			_, ok, err = st.Get(ctx, "access_token")
			require.NoError(t, err)
			assert.False(t, ok)

			// removing twice is fine
			assert.NoError(t, st.Remove(ctx, "access_token"))
		})
	}
}

func TestStorage_RejectsBadKeys(t *testing.T) {
	ctx := context.Background()

	for name, st := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			defer st.Close()

			for _, key := range []string{"", "..", "a/b", "../escape"} {
				assert.Error(t, st.Set(ctx, key, "x"), "set %q", key)

				_, ok, err := st.Get(ctx, key)
				assert.Error(t, err, "get %q", key)
				assert.False(t, ok)

				assert.Error(t, st.Remove(ctx, key), "remove %q", key)
			}
		})
	}
}

func TestPostgresStorage_ChecksKeysBeforeQuerying(t *testing.T) {
	ctx := context.Background()
	// no pool: any query would panic
	pg := &PostgresStorage{}

	_, _, err := pg.Get(ctx, "../escape")
	assert.Error(t, err)
	assert.Error(t, pg.Remove(ctx, "a/b"))
	assert.Error(t, pg.Set(ctx, "", "x"))
}

func TestFileStorage_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "session", `{"isAuthenticated":true}`))
	require.NoError(t, first.Close())

	second, err := NewFileStorage(dir)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "session")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"isAuthenticated":true}`, v)

	info, err := os.Stat(filepath.Join(dir, "session"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestClosedStorage(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	require.NoError(t, st.Close())

	_, _, err := st.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, st.Set(ctx, "k", "v"), ErrClosed)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "redis"})
	assert.Error(t, err)
}
