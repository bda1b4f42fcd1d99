package cache

import (
	"sync"
	"time"
)

// MaxTTL caps how long any entry may live, bounding staleness even when a
// caller asks for more.
const MaxTTL = time.Hour

// Memory is an in-process Cache. Safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	byTag      map[string]map[string]struct{} // tag -> keys
	defaultTTL time.Duration
	now        func() time.Time
}

type entry struct {
	value     []byte
	tags      []string
	expiresAt time.Time
}

// NewMemory builds a Memory cache. A defaultTTL of 0 or above MaxTTL is
// clamped to MaxTTL.
func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 || defaultTTL > MaxTTL {
		defaultTTL = MaxTTL
	}
	return &Memory{
		entries:    make(map[string]entry),
		byTag:      make(map[string]map[string]struct{}),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		// Lazily drop the expired entry.
		m.Delete(key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(key string, value []byte, ttl time.Duration, tags ...string) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	if ttl > MaxTTL {
		ttl = MaxTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(key)
	m.entries[key] = entry{
		value:     value,
		tags:      tags,
		expiresAt: m.now().Add(ttl),
	}
	for _, tag := range tags {
		keys, ok := m.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			m.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

func (m *Memory) InvalidateTags(tags ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tag := range tags {
		for key := range m.byTag[tag] {
			m.removeLocked(key)
		}
	}
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(key)
}

// removeLocked unlinks key from the entry map and every tag index it appears
// in. Callers hold the write lock.
func (m *Memory) removeLocked(key string) {
	e, ok := m.entries[key]
	if !ok {
		return
	}
	delete(m.entries, key)
	for _, tag := range e.tags {
		if keys, ok := m.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(m.byTag, tag)
			}
		}
	}
}
