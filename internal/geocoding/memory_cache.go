package geocoding

import (
	"sync"
	"time"
)

// memoryCache is the process-wide cache tier. Last writer wins; entries for the
// same key are interchangeable once resolved.
type memoryCache struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	negativeTTL time.Duration
}

func newMemoryCache(negativeTTL time.Duration) *memoryCache {
	return &memoryCache{
		entries:     make(map[string]Entry),
		negativeTTL: negativeTTL,
	}
}

// get returns a live entry. Negative entries expire only when negativeTTL > 0.
func (m *memoryCache) get(key string, now time.Time) (Entry, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if !entry.Found() && m.negativeTTL > 0 && now.Sub(entry.ResolvedAt) >= m.negativeTTL {
		return Entry{}, false
	}
	return entry, true
}

func (m *memoryCache) set(key string, entry Entry) {
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
}

func (m *memoryCache) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
