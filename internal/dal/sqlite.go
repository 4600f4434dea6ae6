package dal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

// SQLiteStore implements SnapshotStore using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and ensures the schema
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; serialise through a single connection
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drafts (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		round INTEGER NOT NULL,
		max_rounds INTEGER NOT NULL,
		managers TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_drafts_updated_at ON drafts(updated_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// pick_count was added after the first release
	var pickCountExists int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('drafts')
		WHERE name='pick_count'
	`).Scan(&pickCountExists)
	if err != nil {
		return fmt.Errorf("failed to check pick_count column existence: %w", err)
	}

	if pickCountExists == 0 {
		_, err = s.db.Exec(`ALTER TABLE drafts ADD COLUMN pick_count INTEGER NOT NULL DEFAULT 0`)
		if err != nil {
			return fmt.Errorf("failed to add pick_count column: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, id string, snap *models.DraftSnapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	summary := summarize(id, snap)
	managers, err := json.Marshal(summary.Managers)
	if err != nil {
		return err
	}
	now := snap.SavedAt
	if now.IsZero() {
		now = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts (id, status, round, max_rounds, managers, pick_count, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			round = excluded.round,
			max_rounds = excluded.max_rounds,
			managers = excluded.managers,
			pick_count = excluded.pick_count,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, id, summary.Status, summary.Round, summary.MaxRounds, string(managers), summary.Picks,
		string(data), now.UnixNano(), now.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save draft %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*models.DraftSnapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM drafts WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft %s: %w", id, err)
	}
	return decode([]byte(data))
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.DraftSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, round, max_rounds, managers, pick_count, updated_at
		FROM drafts
		ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DraftSummary{}
	for rows.Next() {
		var d models.DraftSummary
		var managers string
		var updated int64
		if err := rows.Scan(&d.ID, &d.Status, &d.Round, &d.MaxRounds, &managers, &d.Picks, &updated); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(managers), &d.Managers); err != nil {
			return nil, fmt.Errorf("failed to decode managers for draft %s: %w", d.ID, err)
		}
		d.UpdatedAt = time.Unix(0, updated).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
