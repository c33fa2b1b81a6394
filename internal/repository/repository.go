package repository

import (
	"context"
	"database/sql"
	"time"

	"hvac_assistant/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// SnapshotRepo stores the latest known state per device, keyed by device id.
type SnapshotRepo interface {
	Upsert(ctx context.Context, snapshots []models.DeviceSnapshot) error
	List(ctx context.Context, systemID string) ([]models.DeviceSnapshot, error)
}

// HistoricalRepo is the append-only register sample store. Writes at an
// existing (system, register, timestamp) key overwrite the value.
type HistoricalRepo interface {
	Append(ctx context.Context, points []models.HistoricalPoint) error
	Query(ctx context.Context, systemID, registerName string, from, to time.Time) ([]models.HistoricalPoint, error)
}

// KnowledgeRepo caches chat query/response pairs keyed by the query text.
type KnowledgeRepo interface {
	Put(ctx context.Context, e models.KnowledgeEntry) error
	Get(ctx context.Context, query string) (*models.KnowledgeEntry, error)
}

type Repository struct {
	Snapshots  SnapshotRepo
	Historical HistoricalRepo
	Knowledge  KnowledgeRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Snapshots:  NewSnapshotSQLite(db),
		Historical: NewHistoricalSQLite(db),
		Knowledge:  NewKnowledgeSQLite(db),
		Auth:       NewUserRepository(db),
	}
}
