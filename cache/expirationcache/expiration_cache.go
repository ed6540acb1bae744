package expirationcache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const (
	defaultCleanUpInterval = 10 * time.Second
	defaultSize            = 100
)

type element[T any] struct {
	val       *T
	expiresAt time.Time
}

func (e *element[T]) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Options configures an ExpiringLRUCache
type Options struct {
	// CleanupInterval is the pause between two runs removing expired entries
	CleanupInterval time.Duration
	// MaxSize is the maximum count of entries, the least recently used entry is evicted first
	MaxSize uint
}

// ExpiringLRUCache is a size bound LRU cache with expiring entries, safe for concurrent use
type ExpiringLRUCache[T any] struct {
	cleanUpInterval time.Duration
	lru             *lru.Cache
	now             func() time.Time
}

// NewCache creates a new cache. Expired entries are removed in background until ctx is done.
func NewCache[T any](ctx context.Context, options Options) *ExpiringLRUCache[T] {
	size := defaultSize
	if options.MaxSize > 0 {
		size = int(options.MaxSize)
	}

	l, _ := lru.New(size)

	c := &ExpiringLRUCache[T]{
		cleanUpInterval: defaultCleanUpInterval,
		lru:             l,
		now:             time.Now,
	}

	if options.CleanupInterval > 0 {
		c.cleanUpInterval = options.CleanupInterval
	}

	go c.periodicCleanup(ctx)

	return c
}

func (e *ExpiringLRUCache[T]) periodicCleanup(ctx context.Context) {
	ticker := time.NewTicker(e.cleanUpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.cleanUp()
		case <-ctx.Done():
			return
		}
	}
}

func (e *ExpiringLRUCache[T]) cleanUp() {
	now := e.now()

	for _, k := range e.lru.Keys() {
		if v, ok := e.lru.Peek(k); ok && v.(*element[T]).expired(now) {
			e.lru.Remove(k)
		}
	}
}

// Put implements `ExpiringCache`
func (e *ExpiringLRUCache[T]) Put(key string, val *T, ttl time.Duration) {
	if ttl <= 0 {
		// entry should be considered as already expired
		return
	}

	e.lru.Add(key, &element[T]{
		val:       val,
		expiresAt: e.now().Add(ttl),
	})
}

// Get implements `ExpiringCache`
func (e *ExpiringLRUCache[T]) Get(key string) (val *T, ttl time.Duration) {
	v, found := e.lru.Get(key)
	if !found {
		return nil, 0
	}

	el := v.(*element[T])
	now := e.now()

	if el.expired(now) {
		e.lru.Remove(key)

		return nil, 0
	}

	return el.val, el.expiresAt.Sub(now)
}

// Delete implements `ExpiringCache`
func (e *ExpiringLRUCache[T]) Delete(key string) {
	e.lru.Remove(key)
}

// TotalCount implements `ExpiringCache`
func (e *ExpiringLRUCache[T]) TotalCount() int {
	return e.lru.Len()
}

// Clear implements `ExpiringCache`
func (e *ExpiringLRUCache[T]) Clear() {
	e.lru.Purge()
}
