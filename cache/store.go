package cache

import (
	"sync"
	"time"

	"github.com/agrosud-co/site-service/types"
)

// store is the map under the read-through cache. Entries are kept past their
// deadline; freshness is decided against the clock passed in by the caller,
// so expired entries stay reachable for the stale-fallback path.
type store struct {
	mu      sync.RWMutex
	entries map[string]*types.CacheEntry
}

func newStore() *store {
	return &store{
		entries: make(map[string]*types.CacheEntry),
	}
}

func (s *store) Get(key string, now time.Time) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[key]
	if !exists || entry.Expired(now) {
		return nil, false
	}
	return entry.Value, true
}

// GetStale returns the entry value regardless of freshness.
func (s *store) GetStale(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[key]
	if !exists {
		return nil, false
	}
	return entry.Value, true
}

func (s *store) Set(key string, value interface{}, now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &types.CacheEntry{
		Value:     value,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *store) Delete(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*types.CacheEntry)
}

func (s *store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
