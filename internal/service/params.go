package service

import "time"

// HistoricalQuery scopes a historical read to one device register over an
// inclusive time range.
type HistoricalQuery struct {
	SystemID     string
	RegisterName string
	From         time.Time
	To           time.Time
}

// SystemStatus is one device's line in the fleet summary.
type SystemStatus struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Model         string   `json:"model"`
	IsOnline      bool     `json:"is_online"`
	OperationMode string   `json:"operation_mode"`
	ActiveAlarms  []string `json:"active_alarms"`
}

// FleetSummary is the aggregate status of every known system.
type FleetSummary struct {
	TotalSystems  int            `json:"total_systems"`
	OnlineSystems int            `json:"online_systems"`
	AlarmCount    int            `json:"alarm_count"`
	Systems       []SystemStatus `json:"systems"`
}
