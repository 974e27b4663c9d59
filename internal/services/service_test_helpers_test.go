package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fmontilla/users-system/internal/database/testutil"
	"github.com/fmontilla/users-system/internal/models"
	"github.com/fmontilla/users-system/internal/store"
)

type setCall struct {
	key string
	ttl time.Duration
}

// fakeCache is an in-process cache.Store that records every interaction
// so tests can assert on the policy layer's behaviour.
type fakeCache struct {
	mu             sync.Mutex
	entries        map[string]string
	setCalls       []setCall
	patternDeletes []string
	getErr         error
	setErr         error
	deleteErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	value, ok := f.entries[key]
	return value, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = value
	f.setCalls = append(f.setCalls, setCall{key: key, ttl: ttl})
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func (f *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.patternDeletes = append(f.patternDeletes, pattern)
	if pattern == "users:*" {
		for key := range f.entries {
			if len(key) >= 6 && key[:6] == "users:" {
				delete(f.entries, key)
			}
		}
	}
	return nil
}

func (f *fakeCache) lastSet(t *testing.T) setCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.setCalls, "expected at least one cache set")
	return f.setCalls[len(f.setCalls)-1]
}

// countingStore decorates a real UserStore and counts method invocations.
type countingStore struct {
	inner store.UserStore

	mu    sync.Mutex
	calls map[string]int
}

func newCountingStore(inner store.UserStore) *countingStore {
	return &countingStore{inner: inner, calls: map[string]int{}}
}

func (c *countingStore) count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *countingStore) record(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++
}

func (c *countingStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	c.record("FindByID")
	return c.inner.FindByID(ctx, id)
}

func (c *countingStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	c.record("FindByEmail")
	return c.inner.FindByEmail(ctx, email)
}

func (c *countingStore) Insert(ctx context.Context, user *models.User) error {
	c.record("Insert")
	return c.inner.Insert(ctx, user)
}

func (c *countingStore) Update(ctx context.Context, user *models.User) error {
	c.record("Update")
	return c.inner.Update(ctx, user)
}

func (c *countingStore) Delete(ctx context.Context, id uint) error {
	c.record("Delete")
	return c.inner.Delete(ctx, id)
}

func (c *countingStore) ListAll(ctx context.Context) ([]models.User, error) {
	c.record("ListAll")
	return c.inner.ListAll(ctx)
}

func newTestService(t *testing.T) (*UserService, *countingStore, *fakeCache) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	gormStore, err := store.NewGormUserStore(db)
	require.NoError(t, err)

	counting := newCountingStore(gormStore)
	fc := newFakeCache()

	svc, err := NewUserService(counting, fc)
	require.NoError(t, err)
	return svc, counting, fc
}

func mustCreate(t *testing.T, svc *UserService, name, email string) *models.UserView {
	t.Helper()

	view, err := svc.Create(context.Background(), CreateUserInput{
		Name:     name,
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)
	return view
}
