package cache

import (
	"context"
	"sync"
	"time"

	"github.com/railzwaylabs/billinghub/internal/domain"
)

type memoryEntry struct {
	items     []domain.EntityItem
	gen       uint64
	expiresAt time.Time
}

// Memory is the in-process Store.
type Memory struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[Key]memoryEntry
	gens      map[Key]uint64
	connEpoch map[string]uint64
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:       ttl,
		now:       time.Now,
		entries:   make(map[Key]memoryEntry),
		gens:      make(map[Key]uint64),
		connEpoch: make(map[string]uint64),
	}
}

// generation must be called with mu held.
func (m *Memory) generation(key Key) uint64 {
	return m.gens[key] + m.connEpoch[key.ConnectionID]
}

func (m *Memory) Get(_ context.Context, key Key) ([]domain.EntityItem, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.gen != m.generation(key) {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]domain.EntityItem{}, e.items...), true, nil
}

func (m *Memory) Generation(_ context.Context, key Key) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation(key), nil
}

func (m *Memory) Put(_ context.Context, key Key, items []domain.EntityItem, gen uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{items: append([]domain.EntityItem{}, items...), gen: gen}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) Invalidate(_ context.Context, keys ...Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		m.gens[k]++
		delete(m.entries, k)
	}
	return nil
}

func (m *Memory) InvalidateConnection(_ context.Context, connectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connEpoch[connectionID]++
	for k := range m.entries {
		if k.ConnectionID == connectionID {
			delete(m.entries, k)
		}
	}
	return nil
}

var _ Store = (*Memory)(nil)
