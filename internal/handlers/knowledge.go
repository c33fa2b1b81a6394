package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	errSaveKnowledge  = "failed to save knowledge entry"
	errQueryKnowledge = "failed to look up knowledge entry"
	errQueryRequired  = "query parameter 'query' is required"
)

// Request DTO for storing a query/response pair.
type knowledgeRequest struct {
	Query    string `json:"query" binding:"required"`
	Response string `json:"response" binding:"required"`
	Context  string `json:"context,omitempty"`
}

// SaveKnowledgeRequest is an exported model for Swagger docs of the knowledge payload.
type SaveKnowledgeRequest struct {
	Query    string `json:"query" example:"How do I raise the hot water temperature?"`
	Response string `json:"response" example:"Use the hot water setpoint in the Thermia app."`
	Context  string `json:"context,omitempty"`
}

// @Summary      Look up a cached answer
// @Tags         knowledge
// @Produce      json
// @Param        query  query  string  true  "Query text"
// @Success      200  {object}  models.KnowledgeEntry
// @Success      204  "cache miss"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/knowledge [get]
// @Security     BearerAuth
func (h *Handler) lookupKnowledge(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errQueryRequired})
		return
	}

	entry, err := h.services.KnowledgeCache.Lookup(c.Request.Context(), query)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errQueryKnowledge, "knowledge_lookup_failed", err, "query", query)
		return
	}
	if entry == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// @Summary      Store a query/response pair
// @Tags         knowledge
// @Accept       json
// @Produce      json
// @Param        body  body  SaveKnowledgeRequest  true  "Knowledge payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/knowledge [post]
// @Security     BearerAuth
func (h *Handler) saveKnowledge(c *gin.Context) {
	var req knowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	if err := h.services.KnowledgeCache.Save(c.Request.Context(), req.Query, req.Response, req.Context); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errSaveKnowledge, "knowledge_save_failed", err, "query", req.Query)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}
