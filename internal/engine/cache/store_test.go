package cache_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/econreport/internal/engine/cache"
)

// fakeClock is a settable time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 14, 22, 5, 0, time.Local)}
}

func newStore(t *testing.T, dir string, clock *fakeClock, opts ...cache.Option) *cache.Store {
	t.Helper()
	opts = append(opts, cache.WithClock(clock.Now))
	store, err := cache.New(dir, 24*time.Hour, opts...)
	require.NoError(t, err)
	return store
}

// TestNew verifies directory setup and constructor validation.
func TestNew(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(tempDir, "a", "b", "cache")
		store, err := cache.New(dir, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, dir, store.Directory())
		assert.Equal(t, time.Hour, store.Freshness())

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("existing file at path", func(t *testing.T) {
		path := filepath.Join(tempDir, "occupied")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		store, err := cache.New(path, time.Hour)
		require.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := cache.New("", time.Hour)
		assert.Error(t, err)
	})

	t.Run("non-positive freshness", func(t *testing.T) {
		_, err := cache.New(tempDir, 0)
		require.ErrorIs(t, err, cache.ErrInvalidFreshness)
		_, err = cache.New(tempDir, -time.Minute)
		require.ErrorIs(t, err, cache.ErrInvalidFreshness)
	})
}

// TestStore_SetAndGet verifies the round-trip law and the on-disk format.
func TestStore_SetAndGet(t *testing.T) {
	dir := t.TempDir()
	clock := newClock()
	store := newStore(t, dir, clock)

	t.Run("miss before set", func(t *testing.T) {
		var got map[string]float64
		assert.False(t, store.Get("economic_indicators", &got))
		assert.Equal(t, cache.StatusMissing, store.Lookup("economic_indicators").Status)
	})

	t.Run("round trip", func(t *testing.T) {
		store.Set("economic_indicators", map[string]float64{"UNRATE": 3.9})

		var got map[string]float64
		require.True(t, store.Get("economic_indicators", &got))
		assert.Equal(t, map[string]float64{"UNRATE": 3.9}, got)
	})

	t.Run("nested payload", func(t *testing.T) {
		payload := map[string]any{
			"Unemployment Rate": map[string]any{
				"current": 3.9,
				"change":  -0.1,
				"date":    "2024-02-01",
				"section": "Labor Market",
			},
			"list": []any{"a", 1.5, true, nil},
		}
		store.Set("nested", payload)

		var got map[string]any
		require.True(t, store.Get("nested", &got))
		assert.Equal(t, payload, got)
	})

	t.Run("file format", func(t *testing.T) {
		raw, err := os.ReadFile(filepath.Join(dir, "economic_indicators.json"))
		require.NoError(t, err)

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.JSONEq(t, `"2024-03-01T14:22:05.000000"`, string(doc["cached_at"]))
		assert.JSONEq(t, `{"UNRATE":3.9}`, string(doc["data"]))
		assert.Len(t, doc, 2)
	})

	t.Run("overwrite replaces payload", func(t *testing.T) {
		store.Set("economic_indicators", map[string]float64{"ICSA": 220000})

		var got map[string]float64
		require.True(t, store.Get("economic_indicators", &got))
		assert.Equal(t, map[string]float64{"ICSA": 220000}, got)
	})

	t.Run("no temp files left", func(t *testing.T) {
		matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, matches)
		matches, err = filepath.Glob(filepath.Join(dir, ".*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

// TestStore_FreshnessBoundary verifies the strict "<" comparison.
func TestStore_FreshnessBoundary(t *testing.T) {
	clock := newClock()
	store := newStore(t, t.TempDir(), clock)
	store.Set("k", "v")

	clock.Advance(24*time.Hour - time.Second)
	var got string
	require.True(t, store.Get("k", &got))
	assert.Equal(t, "v", got)

	clock.Advance(time.Second)
	assert.False(t, store.Get("k", &got), "exactly at the boundary is stale")

	clock.Advance(time.Second)
	res := store.Lookup("k")
	assert.Equal(t, cache.StatusExpired, res.Status)
	assert.False(t, res.Hit())
	assert.Nil(t, res.Data)

	_, err := os.Stat(store.Path("k"))
	require.NoError(t, err, "stale entry stays on disk")

	store.Set("k", "v2")
	require.True(t, store.Get("k", &got))
	assert.Equal(t, "v2", got)
}

// TestStore_SubMicrosecondWriteTime verifies freshness is measured from the
// persisted cached_at.
func TestStore_SubMicrosecondWriteTime(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 14, 22, 5, 500, time.Local)}
	store := newStore(t, t.TempDir(), clock)
	store.Set("k", "v")

	res := store.Lookup("k")
	require.True(t, res.Hit())
	stamped := time.Date(2024, 3, 1, 14, 22, 5, 0, time.Local)
	assert.True(t, stamped.Equal(res.CachedAt))

	clock.now = stamped.Add(24*time.Hour - time.Nanosecond)
	var got string
	assert.True(t, store.Get("k", &got), "fresh until the recorded instant plus freshness")

	clock.now = stamped.Add(24 * time.Hour)
	assert.False(t, store.Get("k", &got))
}

// TestStore_Clear verifies single-key and clear-all removal.
func TestStore_Clear(t *testing.T) {
	dir := t.TempDir()
	store := newStore(t, dir, newClock())

	t.Run("single key", func(t *testing.T) {
		store.Set("a", 1)
		store.Clear("a")
		var got int
		assert.False(t, store.Get("a", &got))

		// absent key is a no-op
		store.Clear("a")
		store.Clear("")
	})

	t.Run("all keys", func(t *testing.T) {
		for _, key := range []string{"economic_indicators", "all_charts", "odd/key"} {
			store.Set(key, key)
		}
		unrelated := []string{"notes.txt", "report.backup.json", "README"}
		for _, name := range unrelated {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("keep"), 0o600))
		}
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o750))

		assert.Equal(t, 3, store.ClearAll())

		var got string
		for _, key := range []string{"economic_indicators", "all_charts", "odd/key"} {
			assert.False(t, store.Get(key, &got), key)
		}
		for _, name := range unrelated {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.NoError(t, err, "%s must survive clear-all", name)
		}
		_, err := os.Stat(filepath.Join(dir, "sub.json"))
		assert.NoError(t, err)

		assert.Equal(t, 0, store.ClearAll())
	})
}

// TestStore_Corrupt verifies corrupt entries are misses that stay on disk.
func TestStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	store := newStore(t, dir, newClock(), cache.WithLogger(zerolog.New(&logs)))

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{not json"},
		{name: "wrong shape", content: `[1,2,3]`},
		{name: "missing data", content: `{"cached_at":"2024-03-01T14:22:05"}`},
		{name: "bad timestamp", content: `{"cached_at":"last tuesday","data":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.Reset()
			path := store.Path("broken")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			res := store.Lookup("broken")
			assert.Equal(t, cache.StatusCorrupt, res.Status)
			assert.Error(t, res.Err)

			var got any
			assert.False(t, store.Get("broken", &got))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(raw))

			assert.Contains(t, logs.String(), `"key":"broken"`)
			assert.Contains(t, logs.String(), `"operation":"get"`)
			assert.Contains(t, logs.String(), `"component":"cache"`)
		})
	}

	t.Run("payload shape mismatch", func(t *testing.T) {
		store.Set("shape", "a string")
		var got map[string]float64
		assert.False(t, store.Get("shape", &got))
		assert.Equal(t, cache.StatusFresh, store.Lookup("shape").Status)
	})
}

// TestStore_SetFailureIsSwallowed verifies write failures do not panic or surface.
func TestStore_SetFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	store := newStore(t, dir, newClock(), cache.WithLogger(zerolog.New(&logs)))

	store.Set("bad", func() {})
	assert.Contains(t, logs.String(), "error writing cache")
	_, err := os.Stat(store.Path("bad"))
	assert.True(t, os.IsNotExist(err))

	logs.Reset()
	require.NoError(t, os.RemoveAll(dir))
	store.Set("gone", 1)
	assert.Contains(t, logs.String(), `"operation":"set"`)

	logs.Reset()
	store.Set("", 1)
	assert.Contains(t, logs.String(), "error writing cache")
}

// TestStore_SharedDirectory verifies there is no in-memory shadow state.
func TestStore_SharedDirectory(t *testing.T) {
	dir := t.TempDir()
	clock := newClock()
	first := newStore(t, dir, clock)
	second := newStore(t, dir, clock)

	first.Set("shared", []int{1, 2})
	var got []int
	require.True(t, second.Get("shared", &got))
	assert.Equal(t, []int{1, 2}, got)

	second.Set("shared", []int{3})
	require.True(t, first.Get("shared", &got))
	assert.Equal(t, []int{3}, got)

	second.Clear("shared")
	assert.False(t, first.Get("shared", &got))
}

// TestStore_UnsafeKeys verifies keys never escape the cache directory.
func TestStore_UnsafeKeys(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "cache")
	store := newStore(t, dir, newClock())

	store.Set("../escape", "x")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cache", entries[0].Name())

	var got string
	require.True(t, store.Get("../escape", &got))
	assert.Equal(t, "x", got)
	assert.Equal(t, dir, filepath.Dir(store.Path("../escape")))
}

// TestStore_List verifies entry inspection.
func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	clock := newClock()
	store := newStore(t, dir, clock)

	store.Set("old", 1)
	clock.Advance(25 * time.Hour)
	store.Set("new", 2)
	require.NoError(t, os.WriteFile(store.Path("junk"), []byte("nope"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("nope"), 0o600))

	infos, err := store.List()
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.Equal(t, "junk.json", infos[0].File)
	assert.Equal(t, cache.StatusCorrupt, infos[0].Status)
	assert.Equal(t, "new.json", infos[1].File)
	assert.Equal(t, cache.StatusFresh, infos[1].Status)
	assert.Equal(t, "old.json", infos[2].File)
	assert.Equal(t, cache.StatusExpired, infos[2].Status)
	assert.Greater(t, infos[2].Size, int64(0))
	assert.Equal(t, "expired", infos[2].Status.String())
}
