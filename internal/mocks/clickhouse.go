// Package mocks holds in-process stand-ins for infrastructure that local
// development runs without.
package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

type pickStats struct {
	name     string
	times    int
	overalls int
}

// MockClickHouseClient aggregates picks in memory with the same answers the
// draft_picks queries give
type MockClickHouseClient struct {
	mu    sync.Mutex
	stats map[int]*pickStats
	total int
}

// NewMockClickHouseClient creates a mock ClickHouse client
func NewMockClickHouseClient() *MockClickHouseClient {
	logger.Info("Using MOCK ClickHouse client for local development")
	return &MockClickHouseClient{stats: make(map[int]*pickStats)}
}

// RecordPicks counts each pick against its player
func (m *MockClickHouseClient) RecordPicks(_ context.Context, draftID string, picks []models.PickRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range picks {
		st, ok := m.stats[p.PlayerID]
		if !ok {
			st = &pickStats{name: p.PlayerName}
			m.stats[p.PlayerID] = st
		}
		st.times++
		st.overalls += p.Overall
		m.total++
	}
	logger.Debug("Mock ClickHouse: recorded picks", "draft_id", draftID, "picks", len(picks))
	return nil
}

// MostDrafted ranks by pick count, then earliest average pick, then player id
func (m *MockClickHouseClient) MostDrafted(_ context.Context, limit int) ([]models.PlayerPopularity, error) {
	m.mu.Lock()
	out := make([]models.PlayerPopularity, 0, len(m.stats))
	for id, st := range m.stats {
		out = append(out, models.PlayerPopularity{
			PlayerID:    id,
			PlayerName:  st.name,
			TimesPicked: st.times,
			AveragePick: float64(st.overalls) / float64(st.times),
		})
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TimesPicked != b.TimesPicked {
			return a.TimesPicked > b.TimesPicked
		}
		if a.AveragePick != b.AveragePick {
			return a.AveragePick < b.AveragePick
		}
		return a.PlayerID < b.PlayerID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TotalPicks is the number of picks recorded so far
func (m *MockClickHouseClient) TotalPicks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// Ping always succeeds
func (m *MockClickHouseClient) Ping(context.Context) error {
	return nil
}

// Close is a no-op for mock client
func (m *MockClickHouseClient) Close() error {
	return nil
}
