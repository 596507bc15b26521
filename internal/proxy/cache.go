package proxy

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cached struct {
	body    []byte
	expires time.Time
}

// responseCache is a size-bounded LRU whose entries also expire after ttl.
type responseCache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, cached]
	ttl time.Duration
	now func() time.Time
}

func newResponseCache(size int, ttl time.Duration) (*responseCache, error) {
	l, err := lru.New[string, cached](size)
	if err != nil {
		return nil, err
	}
	return &responseCache{lru: l, ttl: ttl, now: time.Now}, nil
}

func (c *responseCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.body, true
}

func (c *responseCache) add(key string, body []byte) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, cached{body: body, expires: c.now().Add(c.ttl)})
}
