package service

import (
	"context"
	"math"
	"time"

	"hvac_assistant/internal/models"
)

// ----------- Diagnosis scoring constants -----------
//
// Alarm penalty is applied once when any alarms are active. Legacy variants
// of this logic disagreed between 20 and 25; 20 is the authoritative value.
const (
	alarmPenalty      = 20.0
	offlinePenalty    = 30.0
	deviationPenalty  = 10.0
	compressorPenalty = 15.0

	setpointDeviationC = 3.0 // |indoor - setpoint| beyond this is an issue

	excellentThreshold = 90.0
	goodThreshold      = 70.0
	fairThreshold      = 50.0
)

// ----------- Optimization rule constants -----------
const (
	lowerSetpointDeltaC  = 2.0    // indoor above setpoint by more than this → lower it
	raiseSetpointDeltaC  = -1.0   // indoor below setpoint by more than this → raise it
	mildOutdoorC         = 10.0   // heating above this outdoor temp is wasteful
	maintenanceHours     = 1000.0 // compressor hours before preventive maintenance
	insulationDeltaC     = 25.0   // indoor/outdoor differential hinting at heat loss
	compressorRunningTag = "Compressor Running"
	modeHeating          = "Heating"
)

// DiagnosticsService computes health assessments and tuning advice from the
// integration layer's snapshots. Results are ephemeral, never persisted.
type DiagnosticsService struct {
	integration Integration
}

func NewDiagnosticsService(integration Integration) *DiagnosticsService {
	return &DiagnosticsService{integration: integration}
}

var _ Diagnostics = (*DiagnosticsService)(nil)

// Diagnose scores one system's health from its latest snapshot. Checks run
// in a fixed order and issues/recommendations keep that order. ERROR is
// reserved for an unknown system; every other status derives from the score.
func (s *DiagnosticsService) Diagnose(ctx context.Context, systemID string) models.DiagnosisResult {
	result := models.DiagnosisResult{
		SystemID:        systemID,
		Timestamp:       time.Now().UTC(),
		Issues:          []string{},
		Recommendations: []string{},
	}

	snaps, err := s.integration.GetSnapshot(ctx, systemID)
	if err != nil || len(snaps) == 0 {
		result.Status = models.StatusError
		result.Issues = append(result.Issues, "System not found")
		return result
	}
	snap := snaps[0]

	score := 100.0

	if len(snap.ActiveAlarms) > 0 {
		result.Issues = append(result.Issues, snap.ActiveAlarms...)
		result.Recommendations = append(result.Recommendations, "Check alarm details and contact service if needed")
		score -= alarmPenalty
	}

	if !snap.IsOnline {
		result.Issues = append(result.Issues, "System is offline")
		result.Recommendations = append(result.Recommendations, "Check network connection and power supply")
		score -= offlinePenalty
	}

	if snap.IndoorTemperature != nil && snap.HeatTemperature != nil {
		if math.Abs(*snap.IndoorTemperature-*snap.HeatTemperature) > setpointDeviationC {
			result.Issues = append(result.Issues, "Temperature setpoint deviation")
			result.Recommendations = append(result.Recommendations, "Adjust temperature setpoint for better efficiency")
			score -= deviationPenalty
		}
	}

	if len(snap.RunningOperationalStatuses) > 0 {
		if hasString(snap.RunningOperationalStatuses, compressorRunningTag) {
			result.Recommendations = append(result.Recommendations, "System operating normally")
		} else {
			result.Issues = append(result.Issues, "Compressor not running")
			score -= compressorPenalty
		}
	}

	result.EfficiencyScore = clampScore(score)
	result.Status = statusForScore(result.EfficiencyScore)
	return result
}

// OptimizationSuggestions applies an independent rule set over the same
// snapshot fields. It always returns at least one entry.
func (s *DiagnosticsService) OptimizationSuggestions(ctx context.Context, systemID string) []string {
	snaps, err := s.integration.GetSnapshot(ctx, systemID)
	if err != nil || len(snaps) == 0 {
		return []string{"System not found"}
	}
	snap := snaps[0]

	var suggestions []string

	if snap.IndoorTemperature != nil && snap.HeatTemperature != nil {
		delta := *snap.IndoorTemperature - *snap.HeatTemperature
		switch {
		case delta > lowerSetpointDeltaC:
			suggestions = append(suggestions, "Consider lowering the heat temperature setpoint for better efficiency")
		case delta < raiseSetpointDeltaC:
			suggestions = append(suggestions, "Consider raising the heat temperature setpoint for comfort")
		}
	}

	if snap.OperationMode == modeHeating && snap.OutdoorTemperature != nil && *snap.OutdoorTemperature > mildOutdoorC {
		suggestions = append(suggestions, "Consider switching to Auto mode for better efficiency in mild weather")
	}

	if snap.CompressorOperationalTime != nil && *snap.CompressorOperationalTime > maintenanceHours {
		suggestions = append(suggestions, "Schedule preventive maintenance - compressor has high operational hours")
	}

	if snap.IndoorTemperature != nil && snap.OutdoorTemperature != nil {
		if *snap.IndoorTemperature-*snap.OutdoorTemperature > insulationDeltaC {
			suggestions = append(suggestions, "Large temperature difference detected - consider insulation improvements")
		}
	}

	if len(suggestions) == 0 {
		return []string{"System is operating optimally"}
	}
	return suggestions
}

// StatusSummary aggregates every known system into one fleet report.
func (s *DiagnosticsService) StatusSummary(ctx context.Context) (FleetSummary, error) {
	snaps, err := s.integration.GetSnapshot(ctx, "")
	if err != nil {
		return FleetSummary{}, err
	}

	summary := FleetSummary{Systems: make([]SystemStatus, 0, len(snaps))}
	for _, snap := range snaps {
		summary.TotalSystems++
		if snap.IsOnline {
			summary.OnlineSystems++
		}
		summary.AlarmCount += len(snap.ActiveAlarms)
		summary.Systems = append(summary.Systems, SystemStatus{
			ID:            snap.ID,
			Name:          snap.Name,
			Model:         snap.Model,
			IsOnline:      snap.IsOnline,
			OperationMode: snap.OperationMode,
			ActiveAlarms:  snap.ActiveAlarms,
		})
	}
	return summary, nil
}

// helpers

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func statusForScore(score float64) string {
	switch {
	case score >= excellentThreshold:
		return models.StatusExcellent
	case score >= goodThreshold:
		return models.StatusGood
	case score >= fairThreshold:
		return models.StatusFair
	default:
		return models.StatusPoor
	}
}

func hasString(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
