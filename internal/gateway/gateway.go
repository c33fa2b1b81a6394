// Package gateway is the boundary to heat-pump telemetry and control.
// Exactly two implementations exist: Live (vendor API) and Synthetic
// (deterministic generated data). The integration service picks one at
// construction time and falls back to Synthetic per call on live failures.
package gateway

import (
	"context"
	"time"

	"hvac_assistant/internal/models"
)

type Gateway interface {
	// FetchSnapshots returns all devices, or the single device matching
	// systemID when non-empty. An unknown id yields an empty slice.
	FetchSnapshots(ctx context.Context, systemID string) ([]models.DeviceSnapshot, error)

	// FetchHistorical returns register samples in [start, end] inclusive.
	FetchHistorical(ctx context.Context, systemID, registerName string, start, end time.Time) ([]models.HistoricalPoint, error)

	// SetTemperature issues a setpoint command. False means the device is
	// unknown or the command was not accepted; the value is not validated
	// against device bounds here.
	SetTemperature(ctx context.Context, systemID string, value float64) (bool, error)

	// SetOperationMode issues a mode command with the same semantics.
	SetOperationMode(ctx context.Context, systemID, mode string) (bool, error)
}
