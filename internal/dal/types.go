package dal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

// ErrNotFound is returned when no snapshot is stored under the id
var ErrNotFound = errors.New("draft not found")

// SnapshotStore defines the interface for draft persistence
type SnapshotStore interface {
	Save(ctx context.Context, id string, snap *models.DraftSnapshot) error
	Load(ctx context.Context, id string) (*models.DraftSnapshot, error)
	List(ctx context.Context) ([]models.DraftSummary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open picks a store for the configured driver
func Open(driver, sqliteFile, databaseURL string) (SnapshotStore, error) {
	switch strings.ToLower(driver) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqliteFile)
	case "postgres":
		return NewPostgresStore(databaseURL)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}

// summarize derives the listing row stored alongside the snapshot body
func summarize(id string, snap *models.DraftSnapshot) models.DraftSummary {
	names := make([]string, 0, len(snap.Managers))
	for _, m := range snap.Managers {
		names = append(names, m.Name)
	}
	return models.DraftSummary{
		ID:        id,
		Status:    snap.Status,
		Round:     snap.Turn.Round,
		MaxRounds: snap.Turn.MaxRounds,
		Managers:  names,
		Picks:     len(snap.Picks),
		UpdatedAt: snap.SavedAt,
	}
}

func encode(snap *models.DraftSnapshot) ([]byte, error) {
	if snap == nil {
		return nil, errors.New("nil snapshot")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*models.DraftSnapshot, error) {
	var snap models.DraftSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}
