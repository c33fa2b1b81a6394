package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hvac_assistant/internal/models"
)

type HistoricalSQLite struct {
	db *sql.DB
}

func NewHistoricalSQLite(db *sql.DB) *HistoricalSQLite {
	return &HistoricalSQLite{db: db}
}

var _ HistoricalRepo = (*HistoricalSQLite)(nil)

const (
	upsertPointSQL = `
		INSERT INTO historical_data (system_id, register_name, value, timestamp)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(system_id, register_name, timestamp) DO UPDATE SET
			value=excluded.value
	`

	selectPointsSQL = `
		SELECT system_id, register_name, value, timestamp
		FROM historical_data
		WHERE system_id = ? AND register_name = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`
)

// Append upserts points keyed by (system_id, register_name, timestamp);
// a duplicate key overwrites the value rather than accumulating rows.
func (r *HistoricalSQLite) Append(ctx context.Context, points []models.HistoricalPoint) error {
	var errs []error
	for _, p := range points {
		_, err := r.db.ExecContext(ctx, upsertPointSQL,
			p.SystemID, p.RegisterName, p.Value, p.Timestamp.UTC(),
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("append point %s/%s@%s: %w",
				p.SystemID, p.RegisterName, p.Timestamp.UTC().Format(time.RFC3339), err))
		}
	}
	return errors.Join(errs...)
}

// Query returns points in [from, to] inclusive, ordered by timestamp ascending.
func (r *HistoricalSQLite) Query(ctx context.Context, systemID, registerName string, from, to time.Time) ([]models.HistoricalPoint, error) {
	rows, err := r.db.QueryContext(ctx, selectPointsSQL,
		systemID, registerName, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.HistoricalPoint, 0, 64)
	for rows.Next() {
		var p models.HistoricalPoint
		if err := rows.Scan(&p.SystemID, &p.RegisterName, &p.Value, &p.Timestamp); err != nil {
			return nil, err
		}
		p.Timestamp = p.Timestamp.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
