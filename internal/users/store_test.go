package users

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/brizzai/moodlist/internal/config"
	"github.com/brizzai/moodlist/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories lists the backends that run without external services.
// Redis runs against an in-process miniredis.
func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"filesystem": func() Store {
			s, err := NewFilesystemStore(t.TempDir())
			require.NoError(t, err)
			return s
		},
		"sqlite": func() Store {
			s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "users.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"redis": func() Store {
			mr := miniredis.RunT(t)
			s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()
	updated := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory()

			_, err := store.Get(ctx, "u1")
			assert.ErrorIs(t, err, ErrNotFound)

			first := &models.User{
				UID:          "u1",
				DisplayName:  "A",
				AvatarURL:    "https://img/1",
				AccessToken:  "T1",
				RefreshToken: "R1",
				ProfileURL:   "https://open.spotify.com/user/u1",
				APIURL:       "https://api.spotify.com/v1/users/u1",
				UpdatedAt:    updated,
			}
			require.NoError(t, store.Save(ctx, first))

			got, err := store.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, *first, *got)

			// last login wins and nothing is merged
			second := &models.User{UID: "u1", AccessToken: "T2", UpdatedAt: updated.Add(time.Hour)}
			require.NoError(t, store.Save(ctx, second))

			got, err = store.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, *second, *got)
			assert.Empty(t, got.DisplayName)
			assert.Empty(t, got.RefreshToken)
		})
	}
}

func TestStore_RejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory()
			assert.Error(t, store.Save(ctx, nil))
			assert.Error(t, store.Save(ctx, &models.User{AccessToken: "T"}))
			assert.Error(t, store.Save(ctx, &models.User{UID: "u1"}))
		})
	}
}

func TestMemoryStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Save(ctx, &models.User{UID: "u1", AccessToken: "T", DisplayName: string(rune('a' + i%26))})
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "T", got.AccessToken)
}

func TestFilesystemStore_PathSafeKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, &models.User{UID: "../escape", AccessToken: "T"}))

	entries, err := os.ReadDir(filepath.Join(dir, "users"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, err := store.Get(ctx, "../escape")
	require.NoError(t, err)
	assert.Equal(t, "../escape", got.UID)
}

func TestFilesystemStore_DistinctKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, &models.User{UID: "a.._b", AccessToken: "TOKEN-A"}))
	require.NoError(t, store.Save(ctx, &models.User{UID: "a/_b", AccessToken: "TOKEN-B"}))
	require.NoError(t, store.Save(ctx, &models.User{UID: "a__b", AccessToken: "TOKEN-C"}))

	for uid, token := range map[string]string{"a.._b": "TOKEN-A", "a/_b": "TOKEN-B", "a__b": "TOKEN-C"} {
		got, err := store.Get(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, uid, got.UID)
		assert.Equal(t, token, got.AccessToken)
	}
}

func TestObjectKey(t *testing.T) {
	uids := []string{"a.._b", "a/_b", "a__b", "..", "a\\b", "u1"}
	seen := map[string]string{}
	for _, uid := range uids {
		key := objectKey(uid)
		assert.NotContains(t, key, "/")
		assert.NotContains(t, key, "\\")
		assert.NotContains(t, strings.TrimSuffix(key, ".json"), ".")
		if prev, ok := seen[key]; ok {
			t.Errorf("uids %q and %q share key %q", prev, uid, key)
		}
		seen[key] = uid
	}
}

func TestOpenSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "users.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, &models.User{UID: "u1", AccessToken: "T"}))
	require.NoError(t, store.Close())

	// migrations are idempotent
	store, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	var version int64
	require.NoError(t, store.db.QueryRowContext(ctx,
		"SELECT MAX(version_id) FROM goose_db_version").Scan(&version))
	assert.Equal(t, int64(1), version)

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "T", got.AccessToken)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, &config.StorageConfig{Driver: config.StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = Open(ctx, &config.StorageConfig{Driver: config.StorageFilesystem, DataPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FilesystemStore{}, store)

	store, err = Open(ctx, &config.StorageConfig{Driver: config.StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "u.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.(Closer).Close())

	_, err = Open(ctx, &config.StorageConfig{Driver: "mongo"})
	assert.Error(t, err)
}
