package facet

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_facet_cache_hits_total",
		Help: "The total number of availability probes answered from the facet cache",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_facet_cache_misses_total",
		Help: "The total number of availability probes sent to the backend",
	})
)

// Cache memoizes whether a canonical probe query yields any result. It is
// only valid for one filter selection.
type Cache struct {
	mu          sync.RWMutex
	entries     map[string]bool
	fingerprint string
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]bool)}
}

func (c *Cache) Get(key string) (available bool, found bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	available, found = c.entries[key]
	if found {
		cacheHits.Inc()
	} else {
		cacheMisses.Inc()
	}
	return
}

func (c *Cache) Set(key string, available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = available
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]bool)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Track clears the cache when the selection fingerprint differs from the
// one it was filled for. It reports whether the cache was cleared.
func (c *Cache) Track(fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fingerprint == fingerprint {
		return false
	}
	c.fingerprint = fingerprint
	c.entries = make(map[string]bool)
	return true
}
