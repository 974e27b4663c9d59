package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fmontilla/users-system/internal/models"
)

func newTestDatabaseStore(t *testing.T) *DatabaseStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CacheEntry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return NewDatabaseStore(db)
}

func TestDatabaseStoreSetGet(t *testing.T) {
	store := newTestDatabaseStore(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "users:1")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, "users:1", `{"id":1}`, 300*time.Second))

	value, found, err := store.Get(ctx, "users:1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `{"id":1}`, value)
}

func TestDatabaseStoreSetOverwrites(t *testing.T) {
	store := newTestDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users:1", "old", 0))
	require.NoError(t, store.Set(ctx, "users:1", "new", 0))

	value, found, err := store.Get(ctx, "users:1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "new", value)
}

func TestDatabaseStoreExpiredEntryIsAMiss(t *testing.T) {
	store := newTestDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users:all", "[]", time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, found, err := store.Get(ctx, "users:all")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDatabaseStoreDeleteByPattern(t *testing.T) {
	store := newTestDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users:all", "[]", 0))
	require.NoError(t, store.Set(ctx, "users:7", "a", 0))
	require.NoError(t, store.Set(ctx, "sessions:7", "s", 0))

	require.NoError(t, store.DeleteByPattern(ctx, "users:*"))

	_, found, err := store.Get(ctx, "users:all")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = store.Get(ctx, "users:7")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = store.Get(ctx, "sessions:7")
	require.NoError(t, err)
	require.True(t, found)
}

func TestGlobToLike(t *testing.T) {
	cases := map[string]string{
		"users:*":   "users:%",
		"users:?":   "users:_",
		"100%":      "100\\%",
		"a_b":       "a\\_b",
		"plain":     "plain",
		"users:*:v": "users:%:v",
	}

	for glob, want := range cases {
		require.Equal(t, want, globToLike(glob), "glob %q", glob)
	}
}
