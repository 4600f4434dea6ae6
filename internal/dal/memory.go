package dal

import (
	"context"
	"sort"
	"sync"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

type memoryRecord struct {
	summary models.DraftSummary
	data    []byte
}

// MemoryStore implements SnapshotStore using in-memory storage
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

// Save stores an encoded copy so later engine mutations never leak in
func (m *MemoryStore) Save(_ context.Context, id string, snap *models.DraftSnapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = memoryRecord{summary: summarize(id, snap), data: data}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*models.DraftSnapshot, error) {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(rec.data)
}

// List returns summaries, most recently saved first
func (m *MemoryStore) List(_ context.Context) ([]models.DraftSummary, error) {
	m.mu.RLock()
	out := make([]models.DraftSummary, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.summary)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
