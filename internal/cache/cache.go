// Package cache memoizes computed metric tables. The analyzer invalidates
// wholesale on any config change; backends only need get/set/invalidate/
// clear with an optional TTL.
package cache

import (
	"time"

	"github.com/pable/go-smite-metrics/internal/table"
)

// Cache stores metric tables by name.
type Cache interface {
	Get(key string) (*table.Table, bool)
	Set(key string, t *table.Table)
	Invalidate(key string)
	Clear()
}

type entry struct {
	t  *table.Table
	at time.Time
}

// Memory is the default in-process cache. It is not safe for concurrent use;
// the analyzer is single-threaded by contract.
type Memory struct {
	ttl     time.Duration // 0 means entries never expire
	entries map[string]entry
	now     func() time.Time
}

// NewMemory returns an in-process cache. ttl of 0 disables expiry.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, entries: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(key string) (*table.Table, bool) {
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && m.now().Sub(e.at) > m.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return e.t, true
}

func (m *Memory) Set(key string, t *table.Table) {
	m.entries[key] = entry{t: t, at: m.now()}
}

func (m *Memory) Invalidate(key string) {
	delete(m.entries, key)
}

func (m *Memory) Clear() {
	m.entries = make(map[string]entry)
}
