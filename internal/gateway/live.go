package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"hvac_assistant/internal/models"
)

const defaultVendorTimeout = 10 * time.Second

// VendorConfig holds the credentials and endpoint of the vendor cloud API.
type VendorConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// LiveGateway adapts the vendor's REST API to the Gateway contract.
// Every call maps to one or more vendor requests; network and auth errors
// surface to the caller so it can fall back to synthetic data.
type LiveGateway struct {
	cfg    VendorConfig
	client *http.Client

	mu    sync.Mutex
	token string
}

func NewLiveGateway(cfg VendorConfig) *LiveGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultVendorTimeout
	}
	return &LiveGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

var _ Gateway = (*LiveGateway)(nil)

// vendorDevice is the subset of the vendor device payload this layer consumes.
type vendorDevice struct {
	ID                         string   `json:"id"`
	Name                       string   `json:"name"`
	Model                      string   `json:"model"`
	IsOnline                   bool     `json:"isOnline"`
	IndoorTemperature          *float64 `json:"indoorTemperature"`
	OutdoorTemperature         *float64 `json:"outdoorTemperature"`
	HotWaterTemperature        *float64 `json:"hotWaterTemperature"`
	HeatTemperature            *float64 `json:"heatTemperature"`
	SupplyLineTemperature      *float64 `json:"supplyLineTemperature"`
	ReturnLineTemperature      *float64 `json:"returnLineTemperature"`
	OperationMode              string   `json:"operationMode"`
	ActiveAlarms               []string `json:"activeAlarms"`
	CompressorOperationalTime  *float64 `json:"compressorOperationalTime"`
	LastOnline                 string   `json:"lastOnline"`
	HeatMinTemperatureValue    *float64 `json:"heatMinTemperatureValue"`
	HeatMaxTemperatureValue    *float64 `json:"heatMaxTemperatureValue"`
	HeatTemperatureStep        *float64 `json:"heatTemperatureStep"`
	AvailableOperationModes    []string `json:"availableOperationModes"`
	RunningOperationalStatuses []string `json:"runningOperationalStatuses"`
}

type vendorHistoryPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

func (g *LiveGateway) FetchSnapshots(ctx context.Context, systemID string) ([]models.DeviceSnapshot, error) {
	var devices []vendorDevice
	if err := g.getJSON(ctx, "/api/v1/devices", nil, &devices); err != nil {
		return nil, fmt.Errorf("fetch devices: %w", err)
	}

	out := make([]models.DeviceSnapshot, 0, len(devices))
	for _, d := range devices {
		if systemID != "" && d.ID != systemID {
			continue
		}
		out = append(out, mapVendorDevice(d))
	}
	return out, nil
}

func (g *LiveGateway) FetchHistorical(ctx context.Context, systemID, registerName string, start, end time.Time) ([]models.HistoricalPoint, error) {
	q := url.Values{}
	q.Set("register", registerName)
	q.Set("from", start.UTC().Format(time.RFC3339))
	q.Set("to", end.UTC().Format(time.RFC3339))

	var history []vendorHistoryPoint
	path := "/api/v1/devices/" + url.PathEscape(systemID) + "/history"
	if err := g.getJSON(ctx, path, q, &history); err != nil {
		return nil, fmt.Errorf("fetch history %s/%s: %w", systemID, registerName, err)
	}

	points := make([]models.HistoricalPoint, 0, len(history))
	for _, h := range history {
		points = append(points, models.HistoricalPoint{
			SystemID:     systemID,
			RegisterName: registerName,
			Value:        h.Value,
			Timestamp:    h.Time,
		})
	}
	return points, nil
}

// SetTemperature writes the heat setpoint. Unknown devices and rejected
// commands come back as false rather than an error.
func (g *LiveGateway) SetTemperature(ctx context.Context, systemID string, value float64) (bool, error) {
	path := "/api/v1/devices/" + url.PathEscape(systemID) + "/temperature"
	return g.putCommand(ctx, path, map[string]any{"temperature": value})
}

func (g *LiveGateway) SetOperationMode(ctx context.Context, systemID, mode string) (bool, error) {
	path := "/api/v1/devices/" + url.PathEscape(systemID) + "/mode"
	return g.putCommand(ctx, path, map[string]any{"mode": mode})
}

// ----------- HTTP plumbing -----------

// ensureToken logs in lazily and caches the bearer token for reuse.
func (g *LiveGateway) ensureToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token != "" {
		return g.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"username": g.cfg.Username,
		"password": g.cfg.Password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.BaseURL+"/api/v1/auth/token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vendor login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vendor login: unexpected status %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode vendor token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("vendor login: empty access token")
	}

	g.token = tok.AccessToken
	return g.token, nil
}

// invalidateToken drops the cached token so the next call re-authenticates.
func (g *LiveGateway) invalidateToken() {
	g.mu.Lock()
	g.token = ""
	g.mu.Unlock()
}

func (g *LiveGateway) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := g.doAuthed(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// putCommand issues a write and maps 404 to (false, nil): an unknown device
// is a result, not a failure.
func (g *LiveGateway) putCommand(ctx context.Context, path string, payload map[string]any) (bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}

	resp, err := g.doAuthed(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, fmt.Errorf("PUT %s: unexpected status %d", path, resp.StatusCode)
	}
}

// doAuthed performs one authenticated request, retrying once on 401 with a
// fresh token.
func (g *LiveGateway) doAuthed(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		token, err := g.ensureToken(ctx)
		if err != nil {
			return nil, err
		}

		u := g.cfg.BaseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			g.invalidateToken()
			continue
		}
		return resp, nil
	}
}

func mapVendorDevice(d vendorDevice) models.DeviceSnapshot {
	return models.DeviceSnapshot{
		ID:                         d.ID,
		Name:                       d.Name,
		Model:                      d.Model,
		IsOnline:                   d.IsOnline,
		IndoorTemperature:          d.IndoorTemperature,
		OutdoorTemperature:         d.OutdoorTemperature,
		HotWaterTemperature:        d.HotWaterTemperature,
		HeatTemperature:            d.HeatTemperature,
		SupplyLineTemperature:      d.SupplyLineTemperature,
		ReturnLineTemperature:      d.ReturnLineTemperature,
		OperationMode:              d.OperationMode,
		ActiveAlarms:               d.ActiveAlarms,
		CompressorOperationalTime:  d.CompressorOperationalTime,
		LastOnline:                 d.LastOnline,
		HeatMinTemperatureValue:    d.HeatMinTemperatureValue,
		HeatMaxTemperatureValue:    d.HeatMaxTemperatureValue,
		HeatTemperatureStep:        d.HeatTemperatureStep,
		AvailableOperationModes:    d.AvailableOperationModes,
		RunningOperationalStatuses: d.RunningOperationalStatuses,
	}
}
