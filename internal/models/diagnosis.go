package models

import "time"

// Diagnosis status ordering: EXCELLENT > GOOD > FAIR > POOR.
// ERROR is reserved for "system not found" and is never demoted into.
const (
	StatusExcellent = "EXCELLENT"
	StatusGood      = "GOOD"
	StatusFair      = "FAIR"
	StatusPoor      = "POOR"
	StatusError     = "ERROR"
)

// DiagnosisResult is a derived health assessment computed from the latest
// snapshot. It is ephemeral and never persisted.
type DiagnosisResult struct {
	SystemID        string    `json:"system_id"`
	Timestamp       time.Time `json:"timestamp"`
	Status          string    `json:"status"`
	Issues          []string  `json:"issues"`
	Recommendations []string  `json:"recommendations"`
	EfficiencyScore float64   `json:"efficiency_score"` // 0..100
}
