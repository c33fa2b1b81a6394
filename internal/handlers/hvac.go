package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"hvac_assistant/internal/models"
	"hvac_assistant/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusAccepted = "accepted"
	statusRejected = "rejected"

	errGetSystems      = "failed to load systems"
	errGetHistory      = "failed to load historical data"
	errGetSummary      = "failed to load status summary"
	errInvalidBodyPref = "invalid body: "

	errRegisterRequired = "query parameter 'register' is required"
	errFromInvalid      = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid        = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for the temperature setpoint.
type temperatureRequest struct {
	Temperature float64 `json:"temperature" binding:"required"`
}

// Request DTO for the operation mode.
type operationModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SetTemperatureRequest is an exported model for Swagger docs of the setpoint payload.
type SetTemperatureRequest struct {
	// Target heat temperature in Celsius
	Temperature float64 `json:"temperature" example:"21.5"`
}

// SetOperationModeRequest is an exported model for Swagger docs of the mode payload.
type SetOperationModeRequest struct {
	// Operation mode; must be one the device offers
	Mode string `json:"mode" example:"Auto"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List systems
// @Description  Live device snapshots; degrades to synthetic data when the vendor API is unreachable
// @Tags         hvac
// @Produce      json
// @Param        system_id  query  string  false  "Filter to a single system"
// @Success      200  {object}  map[string]interface{}  "count, systems"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/hvac/systems [get]
// @Security     BearerAuth
func (h *Handler) getSystems(c *gin.Context) {
	ctx := c.Request.Context()
	systems, err := h.services.Integration.GetSnapshot(ctx, c.Query("system_id"))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSystems, "hvac_get_systems_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(systems),
		"systems": systems,
	})
}

// @Summary      List cached systems
// @Description  Snapshots from the local store only; no vendor API call
// @Tags         hvac
// @Produce      json
// @Param        system_id  query  string  false  "Filter to a single system"
// @Success      200  {object}  map[string]interface{}  "count, systems"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/hvac/systems/cached [get]
// @Security     BearerAuth
func (h *Handler) getCachedSystems(c *gin.Context) {
	ctx := c.Request.Context()
	systems, err := h.services.Integration.GetCachedSnapshot(ctx, c.Query("system_id"))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSystems, "hvac_get_cached_systems_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(systems),
		"systems": systems,
	})
}

// @Summary      Diagnose system
// @Tags         hvac
// @Produce      json
// @Param        id  path  string  true  "System id"
// @Success      200  {object}  models.DiagnosisResult
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  models.DiagnosisResult  "status=ERROR when the system is unknown"
// @Router       /api/v1/hvac/systems/{id}/diagnose [get]
// @Security     BearerAuth
func (h *Handler) diagnoseSystem(c *gin.Context) {
	ctx := c.Request.Context()
	result := h.services.Diagnostics.Diagnose(ctx, c.Param("id"))
	code := http.StatusOK
	if result.Status == models.StatusError {
		code = http.StatusNotFound
	}
	c.JSON(code, result)
}

// @Summary      Optimization suggestions
// @Tags         hvac
// @Produce      json
// @Param        id  path  string  true  "System id"
// @Success      200  {object}  map[string]interface{}  "count, suggestions"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/hvac/systems/{id}/optimize [get]
// @Security     BearerAuth
func (h *Handler) getOptimizationSuggestions(c *gin.Context) {
	ctx := c.Request.Context()
	suggestions := h.services.Diagnostics.OptimizationSuggestions(ctx, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"count":       len(suggestions),
		"suggestions": suggestions,
	})
}

// @Summary      Historical register data
// @Description  Samples of one register over [from, to]. Date-only 'to' is treated as end-of-day inclusive.
// @Tags         hvac
// @Produce      json
// @Param        id        path   string  true   "System id"
// @Param        register  query  string  true   "Register name"  example(indoor_temperature)
// @Param        from      query  string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"
// @Param        to        query  string  false  "End of range; date-only treated as end of day"
// @Success      200  {object}  map[string]interface{}  "count, points"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/hvac/systems/{id}/history [get]
// @Security     BearerAuth
func (h *Handler) getHistory(c *gin.Context) {
	ctx := c.Request.Context()

	register := strings.TrimSpace(c.Query("register"))
	if register == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errRegisterRequired})
		return
	}

	// Default window: the last 24 hours.
	now := time.Now().UTC()
	from := now.Add(-24 * time.Hour)
	to := now
	var err error

	if qs := c.Query("from"); qs != "" {
		if from, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		if to, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		// If the user didn't include a time component, treat "to" as the end of that day.
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	points, err := h.services.Integration.GetHistorical(ctx, service.HistoricalQuery{
		SystemID:     c.Param("id"),
		RegisterName: register,
		From:         from,
		To:           to,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHistory, "hvac_get_history_failed", err,
			"system_id", c.Param("id"), "register", register)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(points),
		"points": points,
	})
}

// @Summary      Set temperature setpoint
// @Description  Forwards the setpoint to the device; rejected when outside the device's known bounds
// @Tags         hvac
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "System id"
// @Param        body  body  SetTemperatureRequest  true  "Setpoint payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}  "status=rejected"
// @Router       /api/v1/hvac/systems/{id}/temperature [post]
// @Security     BearerAuth
func (h *Handler) setTemperature(c *gin.Context) {
	var req temperatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	systemID := c.Param("id")

	if !h.services.Integration.SetTemperature(ctx, systemID, req.Temperature) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":    statusRejected,
			"system_id": systemID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      statusAccepted,
		"system_id":   systemID,
		"temperature": req.Temperature,
	})
}

// @Summary      Set operation mode
// @Description  Forwards the mode to the device; rejected when the device does not offer it
// @Tags         hvac
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "System id"
// @Param        body  body  SetOperationModeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}  "status=rejected"
// @Router       /api/v1/hvac/systems/{id}/mode [post]
// @Security     BearerAuth
func (h *Handler) setOperationMode(c *gin.Context) {
	var req operationModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	systemID := c.Param("id")

	if !h.services.Integration.SetOperationMode(ctx, systemID, req.Mode) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":    statusRejected,
			"system_id": systemID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    statusAccepted,
		"system_id": systemID,
		"mode":      req.Mode,
	})
}

// @Summary      Fleet status summary
// @Tags         hvac
// @Produce      json
// @Success      200  {object}  service.FleetSummary
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/hvac/status [get]
// @Security     BearerAuth
func (h *Handler) getStatusSummary(c *gin.Context) {
	ctx := c.Request.Context()
	summary, err := h.services.Diagnostics.StatusSummary(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSummary, "hvac_status_summary_failed", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}
