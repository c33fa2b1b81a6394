package service

import (
	"context"

	"hvac_assistant/internal/gateway"
	"hvac_assistant/internal/logger"
	"hvac_assistant/internal/models"
	"hvac_assistant/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Integration reconciles gateway data with the persistent cache. Reads are
// served from the live gateway when possible, falling back to synthetic
// data, and every successful read is persisted before being returned.
type Integration interface {
	GetSnapshot(ctx context.Context, systemID string) ([]models.DeviceSnapshot, error)
	GetCachedSnapshot(ctx context.Context, systemID string) ([]models.DeviceSnapshot, error)
	GetHistorical(ctx context.Context, q HistoricalQuery) ([]models.HistoricalPoint, error)
	SetTemperature(ctx context.Context, systemID string, value float64) bool
	SetOperationMode(ctx context.Context, systemID, mode string) bool
}

// Diagnostics derives health assessments and tuning advice from snapshots.
type Diagnostics interface {
	Diagnose(ctx context.Context, systemID string) models.DiagnosisResult
	OptimizationSuggestions(ctx context.Context, systemID string) []string
	StatusSummary(ctx context.Context) (FleetSummary, error)
}

// KnowledgeCache is the query/response cache surface used by the chat
// engine. The integration layer itself never writes entries.
type KnowledgeCache interface {
	Lookup(ctx context.Context, query string) (*models.KnowledgeEntry, error)
	Save(ctx context.Context, query, response, contextText string) error
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Integration
	Diagnostics
	KnowledgeCache
	Authorization
}

// NewService wires the repository layer and gateways into concrete services.
// live may be nil, which forces synthetic data for every read.
func NewService(repos *repository.Repository, live gateway.Gateway, synth gateway.Gateway, signingKey string, log *logger.Logger) *Service {
	integration := NewIntegrationService(repos.Snapshots, repos.Historical, live, synth, log)
	return &Service{
		Integration:    integration,
		Diagnostics:    NewDiagnosticsService(integration),
		KnowledgeCache: NewKnowledgeService(repos.Knowledge),
		Authorization:  NewAuthService(repos.Auth, signingKey),
	}
}
