package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryLockStore struct {
	mu      sync.Mutex
	data    map[string]string
	delErr  error
	deletes int
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{data: map[string]string{}}
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.data[key]; held {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryLockStore) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return false, m.delErr
	}
	if m.data[key] != expected {
		return false, nil
	}
	delete(m.data, key)
	m.deletes++
	return true, nil
}

func TestRedisLockIsExclusive(t *testing.T) {
	ctx := context.Background()
	store := newMemoryLockStore()
	first, err := NewRedisLock(store, "roi:lock:cron", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "roi:lock:cron", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, second.Release(ctx))
	require.Contains(t, store.data, "roi:lock:cron")

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedisLockReleaseAfterTakeover(t *testing.T) {
	ctx := context.Background()
	store := newMemoryLockStore()
	stale, _ := NewRedisLock(store, "k", time.Minute)

	ok, err := stale.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// TTL expiry followed by another worker taking the key.
	store.data["k"] = "other-owner"

	require.NoError(t, stale.Release(ctx))
	require.Equal(t, "other-owner", store.data["k"])
	require.Zero(t, store.deletes)
}

func TestRedisLockReleaseError(t *testing.T) {
	ctx := context.Background()
	store := newMemoryLockStore()
	lock, _ := NewRedisLock(store, "k", 0)
	require.Equal(t, defaultLockTTL, lock.ttl)

	_, err := lock.Acquire(ctx)
	require.NoError(t, err)
	store.delErr = errors.New("connection reset")
	require.ErrorContains(t, lock.Release(ctx), "connection reset")
}

func TestNewRedisLockValidates(t *testing.T) {
	_, err := NewRedisLock(nil, "k", time.Minute)
	require.Error(t, err)
	_, err = NewRedisLock(newMemoryLockStore(), "", time.Minute)
	require.Error(t, err)
}
