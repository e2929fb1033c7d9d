package jscache

import (
	"sync"
	"time"
)

// MemoryStore keeps player scripts in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Entry
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Entry), now: time.Now}
}

// Get returns the entry stored under key.
func (c *MemoryStore) Get(key string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if e.Expired(c.now()) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return Entry{}, false
	}
	return e, true
}

// Set stores e under key.
func (c *MemoryStore) Set(key string, e Entry) {
	c.mu.Lock()
	c.data[key] = e
	c.mu.Unlock()
}
