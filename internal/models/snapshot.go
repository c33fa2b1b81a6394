package models

import "time"

// DeviceSnapshot is the latest known full state of one heat-pump device.
// Optional sensor readings are pointers; nil means the sensor reported nothing.
type DeviceSnapshot struct {
	ID                         string    `json:"id"`
	Name                       string    `json:"name"`
	Model                      string    `json:"model"`
	IsOnline                   bool      `json:"is_online"`
	IndoorTemperature          *float64  `json:"indoor_temperature,omitempty"`
	OutdoorTemperature         *float64  `json:"outdoor_temperature,omitempty"`
	HotWaterTemperature        *float64  `json:"hot_water_temperature,omitempty"`
	HeatTemperature            *float64  `json:"heat_temperature,omitempty"`
	SupplyLineTemperature      *float64  `json:"supply_line_temperature,omitempty"`
	ReturnLineTemperature      *float64  `json:"return_line_temperature,omitempty"`
	OperationMode              string    `json:"operation_mode"`
	ActiveAlarms               []string  `json:"active_alarms"`
	CompressorOperationalTime  *float64  `json:"compressor_operational_time,omitempty"` // cumulative hours
	LastOnline                 string    `json:"last_online,omitempty"`
	HeatMinTemperatureValue    *float64  `json:"heat_min_temperature_value,omitempty"`
	HeatMaxTemperatureValue    *float64  `json:"heat_max_temperature_value,omitempty"`
	HeatTemperatureStep        *float64  `json:"heat_temperature_step,omitempty"`
	AvailableOperationModes    []string  `json:"available_operation_modes"`
	RunningOperationalStatuses []string  `json:"running_operational_statuses"`
	UpdatedAt                  time.Time `json:"updated_at,omitzero"`
}

// HistoricalPoint is one sampled value of a named register for one device.
type HistoricalPoint struct {
	SystemID     string    `json:"system_id"`
	RegisterName string    `json:"register_name"`
	Value        float64   `json:"value"`
	Timestamp    time.Time `json:"timestamp"`
}
