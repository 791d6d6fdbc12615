package http

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/deps"
)

// ServiceStatus represents the overall health status
type ServiceStatus string

const (
	ServiceStatusHealthy   ServiceStatus = "healthy"
	ServiceStatusDegraded  ServiceStatus = "degraded"
	ServiceStatusUnhealthy ServiceStatus = "unhealthy"
)

// ComponentHealth represents health status of a single component
type ComponentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status     ServiceStatus     `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// HealthHandler handles HTTP health check requests
type HealthHandler struct {
	db     *gorm.DB
	source deps.SourceClient
	logger zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(db *gorm.DB, source deps.SourceClient, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		source: source,
		logger: logger,
	}
}

// Handle handles the health check request
func (h *HealthHandler) Handle(ctx *fasthttp.RequestCtx) {
	components := h.checkComponents(ctx)
	status := overallStatus(components)

	response := HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Components: components,
	}

	statusCode := fasthttp.StatusOK
	if status == ServiceStatusUnhealthy {
		statusCode = fasthttp.StatusServiceUnavailable
	}

	logEvent := h.logger.Debug()
	if status != ServiceStatusHealthy {
		logEvent = h.logger.Warn()
	}
	logEvent.
		Str("status", string(status)).
		Int("status_code", statusCode).
		Msg("Health check completed")

	body, err := json.Marshal(response)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode health check response")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(statusCode)
	ctx.SetBody(body)
}

func (h *HealthHandler) checkComponents(ctx *fasthttp.RequestCtx) []ComponentHealth {
	components := make([]ComponentHealth, 0, 2)

	dbHealthy := false
	dbMsg := ""
	if sqlDB, err := h.db.DB(); err != nil {
		dbMsg = err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbMsg = err.Error()
	} else {
		dbHealthy = true
	}
	components = append(components, ComponentHealth{
		Name:    "database",
		Healthy: dbHealthy,
		Message: dbMsg,
	})

	sourceHealthy := h.source.IsConnected()
	sourceMsg := ""
	if !sourceHealthy {
		sourceMsg = "Telegram session is not connected"
	}
	components = append(components, ComponentHealth{
		Name:    "telegram",
		Healthy: sourceHealthy,
		Message: sourceMsg,
	})

	return components
}

// overallStatus reduces component states to one service status. The
// database is load-bearing; a disconnected source only degrades.
func overallStatus(components []ComponentHealth) ServiceStatus {
	for _, c := range components {
		if c.Name == "database" && !c.Healthy {
			return ServiceStatusUnhealthy
		}
	}
	for _, c := range components {
		if !c.Healthy {
			return ServiceStatusDegraded
		}
	}
	return ServiceStatusHealthy
}
