package picker

import (
	"github.com/patrickmn/go-cache"
)

// QueryCache remembers the accumulated result of each query seen during one
// picker session. Entries never expire. A nil *QueryCache is a disabled
// cache: Get always misses and Put does nothing.
type QueryCache struct {
	c *cache.Cache
}

// NewQueryCache returns a cache, or nil when caching is disabled.
func NewQueryCache(enabled bool) *QueryCache {
	if !enabled {
		return nil
	}
	// No janitor: nothing ever expires.
	return &QueryCache{c: cache.New(cache.NoExpiration, 0)}
}

// Get returns a copy of the result stored for key.
func (qc *QueryCache) Get(key string) (ResultSet, bool) {
	if qc == nil {
		return ResultSet{}, false
	}
	v, ok := qc.c.Get(key)
	if !ok {
		return ResultSet{}, false
	}
	rs, ok := v.(ResultSet)
	if !ok {
		return ResultSet{}, false
	}
	return rs.clone(), true
}

// Put stores a copy of rs under key, replacing any previous entry.
func (qc *QueryCache) Put(key string, rs ResultSet) {
	if qc == nil {
		return
	}
	qc.c.Set(key, rs.clone(), cache.NoExpiration)
}

// Len returns the number of cached queries.
func (qc *QueryCache) Len() int {
	if qc == nil {
		return 0
	}
	return qc.c.ItemCount()
}
