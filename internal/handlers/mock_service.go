package handlers

import (
	"context"
	"net/http"

	"hvac_assistant/internal/models"
	"hvac_assistant/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockIntegration struct {
	snapshots    []models.DeviceSnapshot
	snapshotsErr error
	cached       []models.DeviceSnapshot
	cachedErr    error
	points       []models.HistoricalPoint
	pointsErr    error
	setTempOK    bool
	setModeOK    bool

	lastSnapshotID string
	lastCachedID   string
	lastHistQuery  service.HistoricalQuery
	lastSetTempID  string
	lastSetTemp    float64
	lastSetModeID  string
	lastSetMode    string
}

func (m *mockIntegration) GetSnapshot(ctx context.Context, systemID string) ([]models.DeviceSnapshot, error) {
	m.lastSnapshotID = systemID
	return m.snapshots, m.snapshotsErr
}
func (m *mockIntegration) GetCachedSnapshot(ctx context.Context, systemID string) ([]models.DeviceSnapshot, error) {
	m.lastCachedID = systemID
	return m.cached, m.cachedErr
}
func (m *mockIntegration) GetHistorical(ctx context.Context, q service.HistoricalQuery) ([]models.HistoricalPoint, error) {
	m.lastHistQuery = q
	return m.points, m.pointsErr
}
func (m *mockIntegration) SetTemperature(ctx context.Context, systemID string, value float64) bool {
	m.lastSetTempID = systemID
	m.lastSetTemp = value
	return m.setTempOK
}
func (m *mockIntegration) SetOperationMode(ctx context.Context, systemID, mode string) bool {
	m.lastSetModeID = systemID
	m.lastSetMode = mode
	return m.setModeOK
}

type mockDiagnostics struct {
	diagnosis   models.DiagnosisResult
	suggestions []string
	summary     service.FleetSummary
	summaryErr  error

	lastDiagnoseID string
	lastOptimizeID string
}

func (m *mockDiagnostics) Diagnose(ctx context.Context, systemID string) models.DiagnosisResult {
	m.lastDiagnoseID = systemID
	return m.diagnosis
}
func (m *mockDiagnostics) OptimizationSuggestions(ctx context.Context, systemID string) []string {
	m.lastOptimizeID = systemID
	return m.suggestions
}
func (m *mockDiagnostics) StatusSummary(ctx context.Context) (service.FleetSummary, error) {
	return m.summary, m.summaryErr
}

type mockKnowledge struct {
	entry     *models.KnowledgeEntry
	lookupErr error
	saveErr   error

	lastLookupQuery string
	lastSaveQuery   string
	lastSaveResp    string
}

func (m *mockKnowledge) Lookup(ctx context.Context, query string) (*models.KnowledgeEntry, error) {
	m.lastLookupQuery = query
	return m.entry, m.lookupErr
}
func (m *mockKnowledge) Save(ctx context.Context, query, response, contextText string) error {
	m.lastSaveQuery = query
	m.lastSaveResp = response
	return m.saveErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
