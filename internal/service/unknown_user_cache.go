package service

import (
	"context"
	"sync"
	"time"
)

// UnknownUserCache remembers usernames that recently failed a login lookup so
// repeated attempts skip the database. The database stays authoritative:
// callers ignore cache errors and registration clears the cache.
type UnknownUserCache interface {
	IsUnknown(ctx context.Context, username string) (bool, error)
	MarkUnknown(ctx context.Context, username string) error
	Forget(ctx context.Context, username string) error
}

type NoopUnknownUserCache struct{}

func (NoopUnknownUserCache) IsUnknown(context.Context, string) (bool, error) { return false, nil }

func (NoopUnknownUserCache) MarkUnknown(context.Context, string) error { return nil }

func (NoopUnknownUserCache) Forget(context.Context, string) error { return nil }

type InMemoryUnknownUserCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time
	now     func() time.Time
}

func NewInMemoryUnknownUserCache(ttl time.Duration) *InMemoryUnknownUserCache {
	return &InMemoryUnknownUserCache{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (c *InMemoryUnknownUserCache) IsUnknown(_ context.Context, username string) (bool, error) {
	key := normalizeUsername(username)
	c.mu.Lock()
	defer c.mu.Unlock()
	expiresAt, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if !c.now().Before(expiresAt) {
		delete(c.entries, key)
		return false, nil
	}
	return true, nil
}

func (c *InMemoryUnknownUserCache) MarkUnknown(_ context.Context, username string) error {
	if c.ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[normalizeUsername(username)] = c.now().Add(c.ttl)
	return nil
}

func (c *InMemoryUnknownUserCache) Forget(_ context.Context, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, normalizeUsername(username))
	return nil
}
