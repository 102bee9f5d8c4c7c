package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prizewheel/pkg/config"
	"prizewheel/pkg/db"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "nested", "state.json"))
	require.NoError(t, err)

	conn, err := db.NewTest()
	require.NoError(t, err)
	sqlite, err := NewSQLite(conn)
	require.NoError(t, err)

	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.Get(ctx, "nova_last_spin_at")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, store.Set(ctx, "nova_last_spin_at", "2025-01-01T10:00:00.000Z"))
			v, ok, err := store.Get(ctx, "nova_last_spin_at")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "2025-01-01T10:00:00.000Z", v)

			require.NoError(t, store.Set(ctx, "nova_last_spin_at", "2025-01-02T10:00:00.000Z"))
			v, _, err = store.Get(ctx, "nova_last_spin_at")
			require.NoError(t, err)
			require.Equal(t, "2025-01-02T10:00:00.000Z", v)

			_, ok, err = store.Get(ctx, "other")
			require.NoError(t, err)
			require.False(t, ok)

			pinger, ok := store.(Pinger)
			require.True(t, ok)
			require.NoError(t, pinger.Ping(ctx))
		})
	}
}

func TestCompareAndSwapContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			swapped, err := store.CompareAndSwap(ctx, "k", "", "a")
			require.NoError(t, err)
			require.True(t, swapped)

			swapped, err = store.CompareAndSwap(ctx, "k", "", "b")
			require.NoError(t, err)
			require.False(t, swapped)

			swapped, err = store.CompareAndSwap(ctx, "k", "stale", "b")
			require.NoError(t, err)
			require.False(t, swapped)

			v, _, err := store.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, "a", v)

			swapped, err = store.CompareAndSwap(ctx, "k", "a", "")
			require.NoError(t, err)
			require.True(t, swapped)

			// an emptied key can be claimed again
			swapped, err = store.CompareAndSwap(ctx, "k", "", "c")
			require.NoError(t, err)
			require.True(t, swapped)
		})
	}
}

func TestFileCompareAndSwapAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		// each handle stands in for a separate process on the device
		store, err := NewFile(path)
		require.NoError(t, err)

		wg.Add(1)
		go func() {
			defer wg.Done()
			swapped, err := store.CompareAndSwap(ctx, "k", "", "claimed")
			if err == nil && swapped {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
	_, err := os.Stat(path + ".lock")
	require.True(t, os.IsNotExist(err))
}

func TestFileLockWaitsForContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path+".lock", nil, 0o600))

	store, err := NewFile(path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, store.Set(ctx, "k", "v"), context.DeadlineExceeded)
}

func TestFileBreaksStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	lock := path + ".lock"
	require.NoError(t, os.WriteFile(lock, nil, 0o600))
	old := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(lock, old, old))

	store, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "k", "v"))
}

func TestFileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	first, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", "v"))

	second, err := NewFile(path)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestFileCorruptContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	ctx := context.Background()

	store, err := NewFile(path)
	require.NoError(t, err)

	_, _, err = store.Get(ctx, "k")
	require.Error(t, err)

	require.NoError(t, store.Set(ctx, "k", "v"))
	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	require.ErrorIs(t, m.Set(ctx, "k", "v"), context.Canceled)
	_, _, err := m.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
}

func TestProvide(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "memory"
	s, err := Provide(Params{Config: cfg, Logger: zap.NewNop()})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, s)

	cfg.Storage.Driver = "file"
	cfg.Storage.Path = filepath.Join(t.TempDir(), "state.json")
	s, err = Provide(Params{Config: cfg, Logger: zap.NewNop()})
	require.NoError(t, err)
	require.IsType(t, &File{}, s)

	cfg.Storage.Driver = "sqlite"
	_, err = Provide(Params{Config: cfg, Logger: zap.NewNop()})
	require.Error(t, err)

	conn, err := db.NewTest()
	require.NoError(t, err)
	s, err = Provide(Params{Config: cfg, Logger: zap.NewNop(), DB: conn})
	require.NoError(t, err)
	require.IsType(t, &SQLite{}, s)

	cfg.Storage.Driver = "etcd"
	_, err = Provide(Params{Config: cfg, Logger: zap.NewNop()})
	require.Error(t, err)
}
