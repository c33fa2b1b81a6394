package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hvac_assistant/internal/models"
	"hvac_assistant/internal/service"
)

func newHVACService(integration *mockIntegration, diag *mockDiagnostics) *service.Service {
	return &service.Service{
		Authorization: &mockAuth{parseID: 1},
		Integration:   integration,
		Diagnostics:   diag,
	}
}

func doRequest(t *testing.T, s *service.Service, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range authHeader(token) {
		req.Header[k] = v
	}

	w := httptest.NewRecorder()
	newTestRouter(s).ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
	}
}

func TestGetSystems_RequiresAuth(t *testing.T) {
	s := newHVACService(&mockIntegration{}, &mockDiagnostics{})

	w := doRequest(t, s, http.MethodGet, "/api/v1/hvac/systems", "", nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestGetSystems_ReturnsCountAndSystems(t *testing.T) {
	integ := &mockIntegration{snapshots: []models.DeviceSnapshot{
		{ID: "sys-1", Name: "A"},
		{ID: "sys-2", Name: "B"},
	}}
	s := newHVACService(integ, &mockDiagnostics{})

	w := doRequest(t, s, http.MethodGet, "/api/v1/hvac/systems?system_id=sys-1", "tok", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Count   int                     `json:"count"`
		Systems []models.DeviceSnapshot `json:"systems"`
	}
	decodeBody(t, w, &resp)
	if resp.Count != 2 || len(resp.Systems) != 2 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if integ.lastSnapshotID != "sys-1" {
		t.Fatalf("system_id filter not forwarded, got %q", integ.lastSnapshotID)
	}
}

func TestGetSystems_ServiceErrorIs500(t *testing.T) {
	integ := &mockIntegration{snapshotsErr: errors.New("store down")}
	s := newHVACService(integ, &mockDiagnostics{})

	w := doRequest(t, s, http.MethodGet, "/api/v1/hvac/systems", "tok", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestGetCachedSystems_UsesCacheOnly(t *testing.T) {
	integ := &mockIntegration{cached: []models.DeviceSnapshot{{ID: "sys-1"}}}
	s := newHVACService(integ, &mockDiagnostics{})

	w := doRequest(t, s, http.MethodGet, "/api/v1/hvac/systems/cached?system_id=sys-1", "tok", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if integ.lastCachedID != "sys-1" {
		t.Fatalf("system_id not forwarded to cache lookup, got %q", integ.lastCachedID)
	}
	if integ.lastSnapshotID != "" {
		t.Fatalf("cached endpoint must not trigger a live fetch")
	}
}

func TestDiagnoseSystem_OK(t *testing.T) {
	diag := &mockDiagnostics{diagnosis: models.DiagnosisResult{
		SystemID:        "sys-1",
		Status:          models.StatusGood,
		EfficiencyScore: 80,
	}}
	s := newHVACService(&mockIntegration{}, diag)

	w := doRequest(t, s, http.MethodGet, "/api/v1/hvac/systems/sys-1/diagnose", "tok", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp models.DiagnosisResult
	decodeBody(t, w, &resp)
	if resp.SystemID != "sys-1" || resp.Status != models.StatusGood {
		t.Fatalf("unexpected result: %+v", resp)
	}
	if diag.lastDiagnoseID != "sys-1" {
		t.Fatalf("path id not forwarded, got %q", diag.lastDiagnoseID)
	}
}

func TestDiagnoseSystem_UnknownIs404(t *testing.T) {
	diag := &mockDiagnostics{diagnosis: models.DiagnosisResult{
		SystemID: "ghost",
		Status:   models.StatusError,
		Issues:   []string{"System not found"},
	}}
	s := newHVACService(&mockIntegration{}, diag)

	w := doRequest(t, s, http.MethodGet, "/api/v1/hvac/systems/ghost/diagnose", "tok", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetOptimizationSuggestions(t *testing.T) {
	diag := &mockDiagnostics{suggestions: []string{"System is operating optimally"}}
	s := newHVACService(&mockIntegration{}, diag)

	w := doRequest(t, s, http.MethodGet, "/api/v1/hvac/systems/sys-1/optimize", "tok", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Count       int      `json:"count"`
		Suggestions []string `json:"suggestions"`
	}
	decodeBody(t, w, &resp)
	if resp.Count != 1 || len(resp.Suggestions) != 1 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestGetHistory_RegisterRequired(t *testing.T) {
	s := newHVACService(&mockIntegration{}, &mockDiagnostics{})

	w := doRequest(t, s, http.MethodGet, "/api/v1/hvac/systems/sys-1/history", "tok", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetHistory_DefaultWindowIsLast24Hours(t *testing.T) {
	integ := &mockIntegration{points: []models.HistoricalPoint{}}
	s := newHVACService(integ, &mockDiagnostics{})

	before := time.Now().UTC()
	w := doRequest(t, s, http.MethodGet, "/api/v1/hvac/systems/sys-1/history?register=power", "tok", nil)
	after := time.Now().UTC()

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	q := integ.lastHistQuery
	if q.SystemID != "sys-1" || q.RegisterName != "power" {
		t.Fatalf("query keys not forwarded: %+v", q)
	}
	if q.To.Before(before) || q.To.After(after) {
		t.Fatalf("'to' not defaulted to now: %v", q.To)
	}
	if got := q.To.Sub(q.From); got != 24*time.Hour {
		t.Fatalf("window = %v, want 24h", got)
	}
}

func TestGetHistory_ExplicitRangeAndDateOnlyTo(t *testing.T) {
	integ := &mockIntegration{points: []models.HistoricalPoint{}}
	s := newHVACService(integ, &mockDiagnostics{})

	w := doRequest(t, s, http.MethodGet,
		"/api/v1/hvac/systems/sys-1/history?register=power&from=2024-01-14&to=2024-01-15", "tok", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	q := integ.lastHistQuery
	wantFrom := time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)
	if !q.From.Equal(wantFrom) {
		t.Fatalf("from = %v, want %v", q.From, wantFrom)
	}
	// date-only 'to' covers the whole day
	if q.To.Day() != 15 || q.To.Hour() != 23 || q.To.Minute() != 59 {
		t.Fatalf("to = %v, want end of 2024-01-15", q.To)
	}
}

func TestGetHistory_BadTimesAndInvertedRange(t *testing.T) {
	s := newHVACService(&mockIntegration{}, &mockDiagnostics{})

	cases := []string{
		"/api/v1/hvac/systems/sys-1/history?register=power&from=notatime",
		"/api/v1/hvac/systems/sys-1/history?register=power&to=15/01/2024",
		"/api/v1/hvac/systems/sys-1/history?register=power&from=2024-01-16&to=2024-01-15",
	}
	for _, path := range cases {
		if w := doRequest(t, s, http.MethodGet, path, "tok", nil); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want %d", path, w.Code, http.StatusBadRequest)
		}
	}
}

func TestSetTemperature_Accepted(t *testing.T) {
	integ := &mockIntegration{setTempOK: true}
	s := newHVACService(integ, &mockDiagnostics{})

	w := doRequest(t, s, http.MethodPost, "/api/v1/hvac/systems/sys-1/temperature", "tok",
		map[string]float64{"temperature": 21.5})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Status      string  `json:"status"`
		SystemID    string  `json:"system_id"`
		Temperature float64 `json:"temperature"`
	}
	decodeBody(t, w, &resp)
	if resp.Status != statusAccepted || resp.SystemID != "sys-1" || resp.Temperature != 21.5 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if integ.lastSetTempID != "sys-1" || integ.lastSetTemp != 21.5 {
		t.Fatalf("command not forwarded: %+v", integ)
	}
}

func TestSetTemperature_RejectedIs422(t *testing.T) {
	integ := &mockIntegration{setTempOK: false}
	s := newHVACService(integ, &mockDiagnostics{})

	w := doRequest(t, s, http.MethodPost, "/api/v1/hvac/systems/sys-1/temperature", "tok",
		map[string]float64{"temperature": 99})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	var resp struct {
		Status string `json:"status"`
	}
	decodeBody(t, w, &resp)
	if resp.Status != statusRejected {
		t.Fatalf("status field = %q, want %q", resp.Status, statusRejected)
	}
}

func TestSetTemperature_MissingBodyIs400(t *testing.T) {
	s := newHVACService(&mockIntegration{}, &mockDiagnostics{})

	w := doRequest(t, s, http.MethodPost, "/api/v1/hvac/systems/sys-1/temperature", "tok",
		map[string]string{"unexpected": "field"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSetOperationMode_AcceptedAndRejected(t *testing.T) {
	integ := &mockIntegration{setModeOK: true}
	s := newHVACService(integ, &mockDiagnostics{})

	w := doRequest(t, s, http.MethodPost, "/api/v1/hvac/systems/sys-1/mode", "tok",
		map[string]string{"mode": "Auto"})
	if w.Code != http.StatusOK {
		t.Fatalf("accepted: status = %d, body = %s", w.Code, w.Body.String())
	}
	if integ.lastSetModeID != "sys-1" || integ.lastSetMode != "Auto" {
		t.Fatalf("command not forwarded: %+v", integ)
	}

	integ.setModeOK = false
	w = doRequest(t, s, http.MethodPost, "/api/v1/hvac/systems/sys-1/mode", "tok",
		map[string]string{"mode": "Cooling"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("rejected: status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestGetStatusSummary(t *testing.T) {
	diag := &mockDiagnostics{summary: service.FleetSummary{
		TotalSystems:  2,
		OnlineSystems: 1,
		AlarmCount:    1,
		Systems: []service.SystemStatus{
			{ID: "sys-1", IsOnline: true},
			{ID: "sys-2", IsOnline: false, ActiveAlarms: []string{"Low refrigerant pressure"}},
		},
	}}
	s := newHVACService(&mockIntegration{}, diag)

	w := doRequest(t, s, http.MethodGet, "/api/v1/hvac/status", "tok", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp service.FleetSummary
	decodeBody(t, w, &resp)
	if resp.TotalSystems != 2 || resp.OnlineSystems != 1 || resp.AlarmCount != 1 {
		t.Fatalf("unexpected summary: %+v", resp)
	}
}

func TestGetStatusSummary_ErrorIs500(t *testing.T) {
	diag := &mockDiagnostics{summaryErr: errors.New("gateway down")}
	s := newHVACService(&mockIntegration{}, diag)

	w := doRequest(t, s, http.MethodGet, "/api/v1/hvac/status", "tok", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestHealthEndpointIsPublic(t *testing.T) {
	s := newHVACService(&mockIntegration{}, &mockDiagnostics{})

	w := doRequest(t, s, http.MethodGet, "/health", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
