package memory

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"quizmaster/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Backend is the store a CachedStore reads through to (redis, postgres, ...).
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CachedStore caches records with TTL to avoid repeated round trips to a remote backend.
// Writes go through to the backend first and refresh the cache on success.
type CachedStore struct {
	backend Backend
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedRecord
}

type cachedRecord struct {
	value     []byte
	missing   bool
	expiresAt time.Time
}

func NewCachedStore(backend Backend, ttl time.Duration) *CachedStore {
	return newCachedStoreWithClock(backend, ttl, time.Now)
}

func newCachedStoreWithClock(backend Backend, ttl time.Duration, clock func() time.Time) *CachedStore {
	return &CachedStore{
		backend: backend,
		ttl:     ttl,
		clock:   clock,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedRecord),
	}
}

func (c *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if value, ok, err := c.lookup(key); ok {
		return value, err
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if value, ok, err := c.lookup(key); ok {
			return value, err
		}

		value, err := c.backend.Get(ctx, key)
		switch {
		case errors.Is(err, domain.ErrKeyNotFound):
			c.store(key, nil, true)
			return nil, err
		case err != nil:
			return nil, err
		}
		c.store(key, value, false)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(result.([]byte)), nil
}

func (c *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := c.backend.Set(ctx, key, value); err != nil {
		c.forget(key)
		return err
	}
	c.store(key, value, false)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, key string) error {
	if err := c.backend.Delete(ctx, key); err != nil {
		c.forget(key)
		return err
	}
	c.store(key, nil, true)
	return nil
}

// lookup returns ok=false on a cache miss or an expired entry.
func (c *CachedStore) lookup(key string) ([]byte, bool, error) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false, nil
	}
	if entry.missing {
		return nil, true, domain.ErrKeyNotFound
	}
	return clone(entry.value), true, nil
}

func (c *CachedStore) store(key string, value []byte, missing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cachedRecord{
		value:     clone(value),
		missing:   missing,
		expiresAt: c.clock().Add(c.ttlWithJitterLocked()),
	}
}

func (c *CachedStore) forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, key)
}

func (c *CachedStore) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
