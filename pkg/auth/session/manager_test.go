package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *memoryStore) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; !ok || v != expected {
		return false, nil
	}
	delete(m.data, key)
	return true, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func TestGenerateStoresDigestWithTTL(t *testing.T) {
	store := newMemoryStore()
	manager := &Manager{store: store, ttl: time.Hour}

	token, err := manager.Generate(context.Background(), "access-123")
	require.NoError(t, err)

	stored := store.data["sess:access-123"]
	require.Equal(t, digest(token), stored)
	require.NotEqual(t, token, stored)
	require.Equal(t, time.Hour, store.ttls["sess:access-123"])

	_, err = manager.Generate(context.Background(), " ")
	require.ErrorIs(t, err, errAccessIDRequired)
}

func TestRotateReplacesSession(t *testing.T) {
	store := newMemoryStore()
	manager := &Manager{store: store, ttl: time.Hour}
	ctx := context.Background()

	token, err := manager.Generate(ctx, "old")
	require.NoError(t, err)

	_, _, err = manager.Rotate(ctx, "old", "wrong")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
	require.Contains(t, store.data, "sess:old", "a wrong token must not burn the session")

	newID, newToken, err := manager.Rotate(ctx, "old", token)
	require.NoError(t, err)
	require.NotContains(t, store.data, "sess:old")
	require.Equal(t, digest(newToken), store.data["sess:"+newID])

	_, _, err = manager.Rotate(ctx, "old", token)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRotateIsSingleUseUnderConcurrency(t *testing.T) {
	store := newMemoryStore()
	manager := &Manager{store: store, ttl: time.Hour}
	ctx := context.Background()
	token, err := manager.Generate(ctx, "old")
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := manager.Rotate(ctx, "old", token); err == nil {
				wins.Add(1)
			} else if !errors.Is(err, ErrInvalidRefreshToken) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
}

func TestRevokeAndHasSession(t *testing.T) {
	manager := &Manager{store: newMemoryStore(), ttl: time.Hour}
	ctx := context.Background()

	_, err := manager.Generate(ctx, "a1")
	require.NoError(t, err)

	live, err := manager.HasSession(ctx, "a1")
	require.NoError(t, err)
	require.True(t, live)

	require.NoError(t, manager.Revoke(ctx, "a1"))
	live, err = manager.HasSession(ctx, "a1")
	require.NoError(t, err)
	require.False(t, live)

	_, err = manager.HasSession(ctx, "")
	require.ErrorIs(t, err, errAccessIDRequired)
}

func TestRotateRejectsBlankInput(t *testing.T) {
	manager := &Manager{store: newMemoryStore(), ttl: time.Hour}
	_, _, err := manager.Rotate(context.Background(), "", "token")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}
