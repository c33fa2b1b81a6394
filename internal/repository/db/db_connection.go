package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates the SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is not great with many writers
	db.SetMaxIdleConns(1)

	// Pragmas to improve reliability
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA journal_mode=WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA foreign_keys=ON: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA busy_timeout=5000: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

// hvac_systems keeps the most recent snapshot per device, never a history.
const schemaHVACSystems = `
CREATE TABLE IF NOT EXISTS hvac_systems (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    model TEXT NOT NULL,
    is_online BOOLEAN NOT NULL,
    indoor_temperature REAL,
    outdoor_temperature REAL,
    hot_water_temperature REAL,
    heat_temperature REAL,
    supply_line_temperature REAL,
    return_line_temperature REAL,
    operation_mode TEXT NOT NULL,
    active_alarms TEXT,
    compressor_operational_time REAL,
    last_online TEXT,
    heat_min_temperature_value REAL,
    heat_max_temperature_value REAL,
    heat_temperature_step REAL,
    available_operation_modes TEXT,
    running_operational_statuses TEXT,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaHistoricalData = `
CREATE TABLE IF NOT EXISTS historical_data (
    system_id TEXT NOT NULL,
    register_name TEXT NOT NULL,
    value REAL NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    PRIMARY KEY (system_id, register_name, timestamp)
);
`

const schemaKnowledgeCache = `
CREATE TABLE IF NOT EXISTS knowledge_cache (
    id TEXT PRIMARY KEY,
    query TEXT UNIQUE NOT NULL,
    response TEXT NOT NULL,
    context TEXT,
    timestamp TIMESTAMP NOT NULL
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaHVACSystems,
		schemaHistoricalData,
		schemaKnowledgeCache,
		schemaUsers,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
