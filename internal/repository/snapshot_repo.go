package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hvac_assistant/internal/models"
)

type SnapshotSQLite struct {
	db *sql.DB
}

func NewSnapshotSQLite(db *sql.DB) *SnapshotSQLite {
	return &SnapshotSQLite{db: db}
}

var _ SnapshotRepo = (*SnapshotSQLite)(nil)

const (
	upsertSnapshotSQL = `
		INSERT INTO hvac_systems (
			id, name, model, is_online,
			indoor_temperature, outdoor_temperature, hot_water_temperature,
			heat_temperature, supply_line_temperature, return_line_temperature,
			operation_mode, active_alarms, compressor_operational_time, last_online,
			heat_min_temperature_value, heat_max_temperature_value, heat_temperature_step,
			available_operation_modes, running_operational_statuses, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			model=excluded.model,
			is_online=excluded.is_online,
			indoor_temperature=excluded.indoor_temperature,
			outdoor_temperature=excluded.outdoor_temperature,
			hot_water_temperature=excluded.hot_water_temperature,
			heat_temperature=excluded.heat_temperature,
			supply_line_temperature=excluded.supply_line_temperature,
			return_line_temperature=excluded.return_line_temperature,
			operation_mode=excluded.operation_mode,
			active_alarms=excluded.active_alarms,
			compressor_operational_time=excluded.compressor_operational_time,
			last_online=excluded.last_online,
			heat_min_temperature_value=excluded.heat_min_temperature_value,
			heat_max_temperature_value=excluded.heat_max_temperature_value,
			heat_temperature_step=excluded.heat_temperature_step,
			available_operation_modes=excluded.available_operation_modes,
			running_operational_statuses=excluded.running_operational_statuses,
			updated_at=excluded.updated_at
	`

	selectSnapshotColumns = `
		SELECT id, name, model, is_online,
			indoor_temperature, outdoor_temperature, hot_water_temperature,
			heat_temperature, supply_line_temperature, return_line_temperature,
			operation_mode, active_alarms, compressor_operational_time, last_online,
			heat_min_temperature_value, heat_max_temperature_value, heat_temperature_step,
			available_operation_modes, running_operational_statuses, updated_at
		FROM hvac_systems
	`
)

// marshalStrings converts a slice to its JSON string form, "[]" for empty.
func marshalStrings(ss []string) (string, error) {
	if ss == nil {
		ss = []string{}
	}
	b, err := json.Marshal(ss)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalStrings parses a JSON string into a slice.
func unmarshalStrings(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var ss []string
	if err := json.Unmarshal([]byte(s), &ss); err != nil {
		return nil, err
	}
	return ss, nil
}

// Upsert replaces any existing rows with the same device id and refreshes
// updated_at. Persistence is best-effort per record: a bad record is skipped
// and reported via the joined error, the rest of the batch still lands.
func (r *SnapshotSQLite) Upsert(ctx context.Context, snapshots []models.DeviceSnapshot) error {
	now := time.Now().UTC()

	var errs []error
	for _, s := range snapshots {
		if err := r.upsertOne(ctx, s, now); err != nil {
			errs = append(errs, fmt.Errorf("upsert snapshot %q: %w", s.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (r *SnapshotSQLite) upsertOne(ctx context.Context, s models.DeviceSnapshot, now time.Time) error {
	alarms, err := marshalStrings(s.ActiveAlarms)
	if err != nil {
		return err
	}
	modes, err := marshalStrings(s.AvailableOperationModes)
	if err != nil {
		return err
	}
	statuses, err := marshalStrings(s.RunningOperationalStatuses)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, upsertSnapshotSQL,
		s.ID, s.Name, s.Model, s.IsOnline,
		s.IndoorTemperature, s.OutdoorTemperature, s.HotWaterTemperature,
		s.HeatTemperature, s.SupplyLineTemperature, s.ReturnLineTemperature,
		s.OperationMode, alarms, s.CompressorOperationalTime, s.LastOnline,
		s.HeatMinTemperatureValue, s.HeatMaxTemperatureValue, s.HeatTemperatureStep,
		modes, statuses, now,
	)
	return err
}

// List returns all snapshots ordered most-recently-updated first, or the one
// matching systemID. A missing id yields an empty slice, not an error.
func (r *SnapshotSQLite) List(ctx context.Context, systemID string) ([]models.DeviceSnapshot, error) {
	q := selectSnapshotColumns
	var args []any
	if systemID != "" {
		q += " WHERE id = ?"
		args = append(args, systemID)
	} else {
		q += " ORDER BY updated_at DESC"
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.DeviceSnapshot, 0, 8)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanSnapshot(rows *sql.Rows) (models.DeviceSnapshot, error) {
	var (
		s                       models.DeviceSnapshot
		alarms, modes, statuses sql.NullString
		lastOnline              sql.NullString
	)
	if err := rows.Scan(
		&s.ID, &s.Name, &s.Model, &s.IsOnline,
		&s.IndoorTemperature, &s.OutdoorTemperature, &s.HotWaterTemperature,
		&s.HeatTemperature, &s.SupplyLineTemperature, &s.ReturnLineTemperature,
		&s.OperationMode, &alarms, &s.CompressorOperationalTime, &lastOnline,
		&s.HeatMinTemperatureValue, &s.HeatMaxTemperatureValue, &s.HeatTemperatureStep,
		&modes, &statuses, &s.UpdatedAt,
	); err != nil {
		return models.DeviceSnapshot{}, err
	}

	var err error
	if s.ActiveAlarms, err = unmarshalStrings(alarms.String); err != nil {
		return models.DeviceSnapshot{}, fmt.Errorf("decode active_alarms for %q: %w", s.ID, err)
	}
	if s.AvailableOperationModes, err = unmarshalStrings(modes.String); err != nil {
		return models.DeviceSnapshot{}, fmt.Errorf("decode available_operation_modes for %q: %w", s.ID, err)
	}
	if s.RunningOperationalStatuses, err = unmarshalStrings(statuses.String); err != nil {
		return models.DeviceSnapshot{}, fmt.Errorf("decode running_operational_statuses for %q: %w", s.ID, err)
	}
	s.LastOnline = lastOnline.String
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
