package service

import (
	"context"

	"hvac_assistant/internal/gateway"
	"hvac_assistant/internal/logger"
	"hvac_assistant/internal/models"
	"hvac_assistant/internal/repository"
)

// IntegrationService is the data integration manager. It owns the choice
// between the live and synthetic gateways and the persist-on-read side
// effect; the repositories know nothing about gateways and vice versa.
type IntegrationService struct {
	snapshots  repository.SnapshotRepo
	historical repository.HistoricalRepo
	live       gateway.Gateway // nil when synthetic mode is forced
	synth      gateway.Gateway
	log        *logger.Logger
}

// NewIntegrationService builds the manager. live == nil forces synthetic
// data for every read; otherwise synthetic is only a per-call fallback.
func NewIntegrationService(snapshots repository.SnapshotRepo, historical repository.HistoricalRepo, live, synth gateway.Gateway, log *logger.Logger) *IntegrationService {
	return &IntegrationService{
		snapshots:  snapshots,
		historical: historical,
		live:       live,
		synth:      synth,
		log:        log,
	}
}

var _ Integration = (*IntegrationService)(nil)

// GetSnapshot fetches current device state and unconditionally upserts the
// returned records into the store before handing them back. Only the records
// actually served are persisted, so a by-id lookup does not refresh other
// devices' freshness markers. A store write failure never loses the read.
func (s *IntegrationService) GetSnapshot(ctx context.Context, systemID string) ([]models.DeviceSnapshot, error) {
	snaps := s.fetchSnapshots(ctx, systemID)

	if err := s.snapshots.Upsert(ctx, snaps); err != nil {
		s.logError("snapshot_cache_write_failed", "err", err, "system_id", systemID)
	}
	return snaps, nil
}

// GetCachedSnapshot reads straight from the store. No gateway call, no side
// effects; freshness is whatever the last GetSnapshot left behind.
func (s *IntegrationService) GetCachedSnapshot(ctx context.Context, systemID string) ([]models.DeviceSnapshot, error) {
	return s.snapshots.List(ctx, systemID)
}

// GetHistorical fetches register samples with the same live→fallback→persist
// pattern. An unknown system yields an empty slice, not an error.
func (s *IntegrationService) GetHistorical(ctx context.Context, q HistoricalQuery) ([]models.HistoricalPoint, error) {
	if known := s.fetchSnapshots(ctx, q.SystemID); len(known) == 0 {
		s.logError("historical_unknown_system", "system_id", q.SystemID)
		return []models.HistoricalPoint{}, nil
	}

	points, err := s.activeGateway().FetchHistorical(ctx, q.SystemID, q.RegisterName, q.From, q.To)
	if err != nil {
		s.logError("live_historical_failed_falling_back", "err", err, "system_id", q.SystemID, "register", q.RegisterName)
		if points, err = s.synth.FetchHistorical(ctx, q.SystemID, q.RegisterName, q.From, q.To); err != nil {
			return nil, err
		}
	}

	if err := s.historical.Append(ctx, points); err != nil {
		s.logError("historical_cache_write_failed", "err", err, "system_id", q.SystemID)
	}
	return points, nil
}

// SetTemperature forwards a setpoint command. The value is checked against
// the device's known bounds when the cache has them; with no cached bounds
// the command is forwarded as-is and the device stays the authority. The
// store is not touched; it refreshes on the next GetSnapshot.
func (s *IntegrationService) SetTemperature(ctx context.Context, systemID string, value float64) bool {
	if !s.temperatureWithinBounds(ctx, systemID, value) {
		s.logError("set_temperature_out_of_bounds", "system_id", systemID, "value", value)
		return false
	}

	ok, err := s.activeGateway().SetTemperature(ctx, systemID, value)
	if err != nil {
		s.logError("set_temperature_failed", "err", err, "system_id", systemID, "value", value)
		return false
	}
	return ok
}

// SetOperationMode forwards a mode command, rejecting modes the cached
// snapshot says the device does not offer.
func (s *IntegrationService) SetOperationMode(ctx context.Context, systemID, mode string) bool {
	if !s.modeAvailable(ctx, systemID, mode) {
		s.logError("set_mode_unavailable", "system_id", systemID, "mode", mode)
		return false
	}

	ok, err := s.activeGateway().SetOperationMode(ctx, systemID, mode)
	if err != nil {
		s.logError("set_mode_failed", "err", err, "system_id", systemID, "mode", mode)
		return false
	}
	return ok
}

// ----------- gateway selection -----------

func (s *IntegrationService) activeGateway() gateway.Gateway {
	if s.live != nil {
		return s.live
	}
	return s.synth
}

// fetchSnapshots performs one read through the configured gateway; a live
// failure degrades to synthetic data for this call only, never an error.
func (s *IntegrationService) fetchSnapshots(ctx context.Context, systemID string) []models.DeviceSnapshot {
	snaps, err := s.activeGateway().FetchSnapshots(ctx, systemID)
	if err != nil {
		s.logError("live_fetch_failed_falling_back", "err", err, "system_id", systemID)
		snaps, err = s.synth.FetchSnapshots(ctx, systemID)
		if err != nil {
			// the synthetic gateway does not fail in practice
			s.logError("synthetic_fetch_failed", "err", err, "system_id", systemID)
			return []models.DeviceSnapshot{}
		}
	}
	return snaps
}

// ----------- setpoint validation -----------

func (s *IntegrationService) temperatureWithinBounds(ctx context.Context, systemID string, value float64) bool {
	snap := s.cachedSnapshot(ctx, systemID)
	if snap == nil {
		return true // no cached bounds to check against
	}
	if snap.HeatMinTemperatureValue != nil && value < *snap.HeatMinTemperatureValue {
		return false
	}
	if snap.HeatMaxTemperatureValue != nil && value > *snap.HeatMaxTemperatureValue {
		return false
	}
	return true
}

func (s *IntegrationService) modeAvailable(ctx context.Context, systemID, mode string) bool {
	snap := s.cachedSnapshot(ctx, systemID)
	if snap == nil || len(snap.AvailableOperationModes) == 0 {
		return true
	}
	for _, m := range snap.AvailableOperationModes {
		if m == mode {
			return true
		}
	}
	return false
}

func (s *IntegrationService) cachedSnapshot(ctx context.Context, systemID string) *models.DeviceSnapshot {
	snaps, err := s.snapshots.List(ctx, systemID)
	if err != nil || len(snaps) == 0 {
		return nil
	}
	return &snaps[0]
}

func (s *IntegrationService) logError(msg string, kv ...interface{}) {
	if s.log != nil {
		s.log.Errorw(msg, kv...)
	}
}
