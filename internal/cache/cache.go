package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is a key/value store with optional per-store expiry, safe for
// concurrent get/set on different keys. Last-writer-wins on a key.
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V) error
}

// Memory is an in-process Store. A zero TTL means entries never expire.
type Memory[V any] struct {
	cache *gocache.Cache
	mu    sync.RWMutex
}

func NewMemory[V any](ttl time.Duration) *Memory[V] {
	expiry := ttl
	cleanup := ttl / 2
	if ttl == 0 {
		expiry = gocache.NoExpiration
		cleanup = 0
	}

	slog.Debug("memory cache initialized", "ttl", ttl)
	return &Memory[V]{
		cache: gocache.New(expiry, cleanup),
	}
}

func (m *Memory[V]) Get(ctx context.Context, key string) (V, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, found := m.cache.Get(key)
	if !found {
		var zero V
		return zero, false, nil
	}

	typed, ok := value.(V)
	if !ok {
		var zero V
		return zero, false, nil
	}
	return typed, true, nil
}

func (m *Memory[V]) Set(ctx context.Context, key string, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Set(key, value, gocache.DefaultExpiration)
	return nil
}

func (m *Memory[V]) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Delete(key)
}

func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache.ItemCount()
}
