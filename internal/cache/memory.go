package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryStore is the L1 tier: an in-memory LRU bounded by total bytes.
type MemoryStore struct {
	capacity int64
	size     int64

	items map[string]*list.Element
	lru   *list.List // Front is most recently used

	mu    sync.Mutex
	stats Stats
}

var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	key     string
	value   []byte
	created time.Time
}

// NewMemoryStore creates an LRU holding at most capacity bytes.
func NewMemoryStore(capacity int64) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the value for key and marks it recently used.
func (m *MemoryStore) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		m.stats.Misses++
		return nil, false
	}

	m.lru.MoveToFront(elem)
	m.stats.Hits++
	return elem.Value.(*memoryEntry).value, true
}

// Put stores value, evicting least recently used entries to make room.
func (m *MemoryStore) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := int64(len(value))
	if size > m.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}

	for m.size+size > m.capacity && m.lru.Len() > 0 {
		m.remove(m.lru.Back())
		m.stats.Evictions++
	}

	m.items[key] = m.lru.PushFront(&memoryEntry{key: key, value: value, created: time.Now()})
	m.size += size
	return nil
}

// Delete removes key if present.
func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
}

// Contains reports whether key is cached without touching the LRU order.
func (m *MemoryStore) Contains(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.items[key]
	return ok
}

// Prune removes entries older than maxAge.
func (m *MemoryStore) Prune(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for elem := m.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).created.Before(cutoff) {
			m.remove(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

// Stats returns cache statistics.
func (m *MemoryStore) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.stats
	stats.Capacity = m.capacity
	stats.Size = m.size
	stats.Items = len(m.items)
	return stats
}

// remove drops elem. Must be called with the lock held.
func (m *MemoryStore) remove(elem *list.Element) {
	entry := m.lru.Remove(elem).(*memoryEntry)
	delete(m.items, entry.key)
	m.size -= int64(len(entry.value))
}
