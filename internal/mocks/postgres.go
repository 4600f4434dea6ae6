package mocks

import (
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/dal"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
)

// MockPostgresStore stands in for Postgres in local development by keeping
// snapshots in a SQLite file
type MockPostgresStore struct {
	*dal.SQLiteStore
}

// NewMockPostgresStore opens the SQLite stand-in
func NewMockPostgresStore(sqliteFile string) (*MockPostgresStore, error) {
	logger.Info("Using MOCK Postgres (SQLite) for local development", "file", sqliteFile)

	store, err := dal.NewSQLiteStore(sqliteFile)
	if err != nil {
		return nil, err
	}
	return &MockPostgresStore{SQLiteStore: store}, nil
}
