package cache

import (
	"encoding/json"
	"sync"
	"time"
)

// memoryDriver is an in-process cache used in tests and when Redis is down.
// Entries are stored as marshalled JSON so Get/Set behave identically to the
// Redis driver. Counters live in their own map and never expire.
type memoryDriver struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	counters map[string]int64
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemory returns a fresh in-process driver. Used with Use in tests.
func NewMemory() Driver { return newMemoryDriver() }

func newMemoryDriver() *memoryDriver {
	return &memoryDriver{
		entries:  map[string]memoryEntry{},
		counters: map[string]int64{},
	}
}

func (d *memoryDriver) Name() string { return "memory" }

func (d *memoryDriver) Get(key string, dest interface{}) bool {
	d.mu.RLock()
	if v, ok := d.counters[key]; ok {
		d.mu.RUnlock()
		data, _ := json.Marshal(v)
		return json.Unmarshal(data, dest) == nil
	}
	e, ok := d.entries[key]
	d.mu.RUnlock()

	if !ok {
		return false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		d.mu.Lock()
		delete(d.entries, key)
		d.mu.Unlock()
		return false
	}
	return json.Unmarshal(e.data, dest) == nil
}

func (d *memoryDriver) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	d.mu.Lock()
	d.entries[key] = memoryEntry{data: data, expiresAt: expiresAt}
	d.mu.Unlock()
	return nil
}

func (d *memoryDriver) Del(keys ...string) error {
	d.mu.Lock()
	for _, k := range keys {
		delete(d.entries, k)
		delete(d.counters, k)
	}
	d.mu.Unlock()
	return nil
}

func (d *memoryDriver) Increment(key string) (int64, error) {
	d.mu.Lock()
	d.counters[key]++
	v := d.counters[key]
	d.mu.Unlock()
	return v, nil
}
