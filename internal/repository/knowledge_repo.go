package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hvac_assistant/internal/models"

	"github.com/google/uuid"
)

type KnowledgeSQLite struct {
	db *sql.DB
}

func NewKnowledgeSQLite(db *sql.DB) *KnowledgeSQLite {
	return &KnowledgeSQLite{db: db}
}

var _ KnowledgeRepo = (*KnowledgeSQLite)(nil)

const (
	upsertKnowledgeSQL = `
		INSERT INTO knowledge_cache (id, query, response, context, timestamp)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET
			response=excluded.response,
			context=excluded.context,
			timestamp=excluded.timestamp
	`

	selectKnowledgeSQL = `
		SELECT id, query, response, context, timestamp
		FROM knowledge_cache WHERE query = ?
	`
)

// Put upserts a cache entry keyed by the query text. Missing id/timestamp
// are filled in, matching the append discipline of the event store it
// descended from.
func (r *KnowledgeSQLite) Put(ctx context.Context, e models.KnowledgeEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	} else {
		e.Timestamp = e.Timestamp.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertKnowledgeSQL,
		e.ID, e.Query, e.Response, e.Context, e.Timestamp,
	)
	return err
}

// Get fetches the entry for a query. Returns (nil, nil) on a cache miss.
func (r *KnowledgeSQLite) Get(ctx context.Context, query string) (*models.KnowledgeEntry, error) {
	row := r.db.QueryRowContext(ctx, selectKnowledgeSQL, query)

	var (
		e       models.KnowledgeEntry
		context sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Query, &e.Response, &context, &e.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e.Context = context.String
	e.Timestamp = e.Timestamp.UTC()
	return &e, nil
}
