package dal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

// PostgresStore implements SnapshotStore using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL store tuned for CloudNativePG clusters
func NewPostgresStore(connString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute) // recycle across failovers
	db.SetConnMaxIdleTime(1 * time.Minute)

	// retry while cluster DNS settles
	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		lastErr = db.PingContext(ctx)
		cancel()

		if lastErr == nil {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	if lastErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (p *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drafts (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		round INTEGER NOT NULL,
		max_rounds INTEGER NOT NULL,
		managers JSONB NOT NULL,
		pick_count INTEGER NOT NULL DEFAULT 0,
		data JSONB NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_drafts_updated_at ON drafts(updated_at DESC);
	CREATE INDEX IF NOT EXISTS idx_drafts_status ON drafts(status);
	`

	_, err := p.db.Exec(schema)
	return err
}

func (p *PostgresStore) Save(ctx context.Context, id string, snap *models.DraftSnapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	summary := summarize(id, snap)
	managers, err := json.Marshal(summary.Managers)
	if err != nil {
		return err
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO drafts (id, status, round, max_rounds, managers, pick_count, data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			round = EXCLUDED.round,
			max_rounds = EXCLUDED.max_rounds,
			managers = EXCLUDED.managers,
			pick_count = EXCLUDED.pick_count,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`, id, summary.Status, summary.Round, summary.MaxRounds, string(managers), summary.Picks, string(data), savedAt)
	if err != nil {
		return fmt.Errorf("failed to save draft %s: %w", id, err)
	}
	return nil
}

func (p *PostgresStore) Load(ctx context.Context, id string) (*models.DraftSnapshot, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx, `SELECT data FROM drafts WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft %s: %w", id, err)
	}
	return decode(data)
}

func (p *PostgresStore) List(ctx context.Context) ([]models.DraftSummary, error) {
	rows, err := p.db.QueryContext(ctx, `
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
		var managers []byte
		if err := rows.Scan(&d.ID, &d.Status, &d.Round, &d.MaxRounds, &managers, &d.Picks, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(managers, &d.Managers); err != nil {
			return nil, fmt.Errorf("failed to decode managers for draft %s: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = $1`, id)
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

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
