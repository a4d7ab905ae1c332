// Package memory provides an in-memory catalog.Store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/charge-engine/catalog"
)

// =============================================================================
// MEMORY CATALOG - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[string]catalog.Record
	now     func() time.Time
}

func New() *Memory {
	return &Memory{
		records: make(map[string]catalog.Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Save upserts r and bumps the version of an existing record.
func (m *Memory) Save(_ context.Context, r catalog.Record) (catalog.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if existing, ok := m.records[r.ID]; ok {
		r.Version = existing.Version + 1
		r.CreatedAt = existing.CreatedAt
	} else {
		r.Version = 1
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	m.records[r.ID] = r
	return r, nil
}

func (m *Memory) Get(_ context.Context, id string) (catalog.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[id]
	if !ok {
		return catalog.Record{}, catalog.ErrNotFound
	}
	return r, nil
}

func (m *Memory) List(_ context.Context) ([]catalog.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]catalog.Record, 0, len(m.records))
	for _, r := range m.records {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

var _ catalog.Store = (*Memory)(nil)
