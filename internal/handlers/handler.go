package handlers

import (
	_ "hvac_assistant/docs"
	"hvac_assistant/internal/logger"
	"hvac_assistant/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Snapshot stream over WebSocket, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerHVACRoutes(api)
		h.registerKnowledgeRoutes(api)
	}
}

func (h *Handler) registerHVACRoutes(api *gin.RouterGroup) {
	hvac := api.Group("/hvac")
	{
		hvac.GET("/systems", h.getSystems)
		hvac.GET("/systems/cached", h.getCachedSystems)
		hvac.GET("/systems/:id/diagnose", h.diagnoseSystem)
		hvac.GET("/systems/:id/optimize", h.getOptimizationSuggestions)
		hvac.GET("/systems/:id/history", h.getHistory)
		// Body example: {"temperature":21.5}
		hvac.POST("/systems/:id/temperature", h.setTemperature)
		// Body example: {"mode":"Auto"}
		hvac.POST("/systems/:id/mode", h.setOperationMode)
		hvac.GET("/status", h.getStatusSummary)
	}
}

func (h *Handler) registerKnowledgeRoutes(api *gin.RouterGroup) {
	knowledge := api.Group("/knowledge")
	{
		knowledge.GET("/", h.lookupKnowledge)
		knowledge.POST("/", h.saveKnowledge)
	}
}
