package gateway

import (
	"context"
	"math"
	"strings"
	"time"

	"hvac_assistant/internal/models"
)

// ----------- Synthetic generation constants -----------
const (
	tempBase      = 20.0   // °C baseline for temperature-like registers
	tempAmplitude = 5.0    // °C swing across a day
	powerBase     = 2000.0 // W baseline for power-like registers
	powerSwing    = 500.0  // W swing across a day
	genericBase   = 100.0
	genericStep   = 10.0 // per hour-of-day

	snapshotSwingC = 1.5 // diurnal wobble applied to generated snapshot temps
)

// SyntheticGateway generates deterministic, time-varying device data.
// Values depend only on the clock hour, so repeated calls within the same
// hour reproduce the same data.
type SyntheticGateway struct {
	now func() time.Time
}

func NewSyntheticGateway() *SyntheticGateway {
	return &SyntheticGateway{now: time.Now}
}

var _ Gateway = (*SyntheticGateway)(nil)

func (g *SyntheticGateway) FetchSnapshots(_ context.Context, systemID string) ([]models.DeviceSnapshot, error) {
	hour := g.now().UTC().Hour()
	all := syntheticFleet(hour)
	if systemID == "" {
		return all, nil
	}
	for _, s := range all {
		if s.ID == systemID {
			return []models.DeviceSnapshot{s}, nil
		}
	}
	return []models.DeviceSnapshot{}, nil
}

// FetchHistorical samples hourly from start to end inclusive. The value
// formula is keyed by register-name category and hour-of-day only.
func (g *SyntheticGateway) FetchHistorical(_ context.Context, systemID, registerName string, start, end time.Time) ([]models.HistoricalPoint, error) {
	points := make([]models.HistoricalPoint, 0, 24)
	for t := start; !t.After(end); t = t.Add(time.Hour) {
		points = append(points, models.HistoricalPoint{
			SystemID:     systemID,
			RegisterName: registerName,
			Value:        syntheticValue(registerName, t.Hour()),
			Timestamp:    t,
		})
	}
	return points, nil
}

// SetTemperature accepts every command without applying it anywhere.
func (g *SyntheticGateway) SetTemperature(_ context.Context, _ string, _ float64) (bool, error) {
	return true, nil
}

// SetOperationMode accepts every command without applying it anywhere.
func (g *SyntheticGateway) SetOperationMode(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

// syntheticValue follows the diurnal-cycle approximation: temperature-like
// registers ramp over the day on a 20°C base, power-like on a 2kW base,
// anything else grows linearly with the hour.
func syntheticValue(registerName string, hour int) float64 {
	name := strings.ToLower(registerName)
	switch {
	case strings.Contains(name, "temperature"):
		return tempBase + tempAmplitude*(float64(hour)/24)
	case strings.Contains(name, "power"):
		return powerBase + powerSwing*(float64(hour)/24)
	default:
		return genericBase + float64(hour)*genericStep
	}
}

// diurnal returns a smooth [-1, 1] factor for the given hour.
func diurnal(hour int) float64 {
	return math.Sin(2 * math.Pi * float64(hour) / 24)
}

func ptr(v float64) *float64 { return &v }

// syntheticFleet is the two-device reference fleet. Indoor/outdoor readings
// wobble with the hour so consecutive fetches across hours differ.
func syntheticFleet(hour int) []models.DeviceSnapshot {
	w := snapshotSwingC * diurnal(hour)
	return []models.DeviceSnapshot{
		{
			ID:                         "mock-system-1",
			Name:                       "Thermia Diplomat Duo",
			Model:                      "Diplomat Duo",
			IsOnline:                   true,
			IndoorTemperature:          ptr(22.5 + w),
			OutdoorTemperature:         ptr(-5.2 + 2*w),
			HotWaterTemperature:        ptr(45.0),
			HeatTemperature:            ptr(21.0),
			SupplyLineTemperature:      ptr(35.0),
			ReturnLineTemperature:      ptr(30.0),
			OperationMode:              "Heating",
			ActiveAlarms:               []string{},
			CompressorOperationalTime:  ptr(1250.5),
			LastOnline:                 "2024-01-15T10:30:00Z",
			HeatMinTemperatureValue:    ptr(15.0),
			HeatMaxTemperatureValue:    ptr(30.0),
			HeatTemperatureStep:        ptr(0.5),
			AvailableOperationModes:    []string{"Heating", "Cooling", "Auto"},
			RunningOperationalStatuses: []string{"Compressor Running", "Circulation Pump Active"},
		},
		{
			ID:                         "mock-system-2",
			Name:                       "Thermia Calibra",
			Model:                      "Calibra",
			IsOnline:                   true,
			IndoorTemperature:          ptr(23.0 + w),
			OutdoorTemperature:         ptr(-3.8 + 2*w),
			HotWaterTemperature:        ptr(48.0),
			HeatTemperature:            ptr(22.0),
			SupplyLineTemperature:      ptr(38.0),
			ReturnLineTemperature:      ptr(32.0),
			OperationMode:              "Auto",
			ActiveAlarms:               []string{"Low refrigerant pressure"},
			CompressorOperationalTime:  ptr(890.2),
			LastOnline:                 "2024-01-15T10:25:00Z",
			HeatMinTemperatureValue:    ptr(16.0),
			HeatMaxTemperatureValue:    ptr(28.0),
			HeatTemperatureStep:        ptr(0.5),
			AvailableOperationModes:    []string{"Heating", "Cooling", "Auto", "DHW"},
			RunningOperationalStatuses: []string{"Compressor Running", "DHW Pump Active"},
		},
	}
}
