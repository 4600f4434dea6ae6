// Package clickhouse records committed picks for cross-draft analytics.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
)

const createPicksTable = `
	CREATE TABLE IF NOT EXISTS draft_picks (
		draft_id      String,
		overall       Int32,
		round         Int32,
		manager_index Int32,
		manager_name  String,
		player_id     Int32,
		player_name   String,
		slot_id       String,
		bench         Bool,
		recorded_at   DateTime64(3)
	) ENGINE = MergeTree
	ORDER BY (player_id, recorded_at)
`

// Client provides ClickHouse integration for pick analytics
type Client struct {
	conn driver.Conn
}

// NewClient connects, pings and ensures the draft_picks table exists
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if err := conn.Exec(ctx, createPicksTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create draft_picks table: %w", err)
	}

	return &Client{conn: conn}, nil
}

// RecordPicks inserts one turn's picks as a single batch
func (c *Client) RecordPicks(ctx context.Context, draftID string, picks []models.PickRecord) error {
	if len(picks) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO draft_picks")
	if err != nil {
		return fmt.Errorf("failed to prepare pick batch: %w", err)
	}

	now := time.Now().UTC()
	for _, p := range picks {
		err := batch.Append(
			draftID,
			int32(p.Overall),
			int32(p.Round),
			int32(p.ManagerIndex),
			p.ManagerName,
			int32(p.PlayerID),
			p.PlayerName,
			p.SlotID,
			p.Bench,
			now,
		)
		if err != nil {
			_ = batch.Abort()
			return fmt.Errorf("failed to append pick %d: %w", p.Overall, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send pick batch: %w", err)
	}
	logger.Debug("Recorded picks in ClickHouse", "draft_id", draftID, "picks", len(picks))
	return nil
}

// MostDrafted ranks players by how many drafts took them, earliest average pick first on ties
func (c *Client) MostDrafted(ctx context.Context, limit int) ([]models.PlayerPopularity, error) {
	query := `
		SELECT
			player_id,
			any(player_name) AS name,
			count() AS times,
			avg(overall) AS avg_pick
		FROM draft_picks
		GROUP BY player_id
		ORDER BY times DESC, avg_pick ASC
		LIMIT $1
	`

	rows, err := c.conn.Query(ctx, query, uint64(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PlayerPopularity{}
	for rows.Next() {
		var (
			id    int32
			name  string
			times uint64
			avg   float64
		)
		if err := rows.Scan(&id, &name, &times, &avg); err != nil {
			return nil, err
		}
		out = append(out, models.PlayerPopularity{
			PlayerID:    int(id),
			PlayerName:  name,
			TimesPicked: int(times),
			AveragePick: avg,
		})
	}
	return out, rows.Err()
}

// Ping checks the connection for health probes
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
