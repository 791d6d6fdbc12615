package http

import (
	"github.com/fasthttp/router"
)

// Router wires collection and health routes
type Router struct {
	handlers *Handlers
	health   *HealthHandler
}

// NewRouter creates a collection router
func NewRouter(handlers *Handlers, health *HealthHandler) *Router {
	return &Router{handlers: handlers, health: health}
}

// RegisterRoutes registers collection routes on the server router
func (r *Router) RegisterRoutes(root *router.Router) {
	root.GET("/health", r.health.Handle)

	api := root.Group("/api/v1")
	api.POST("/channels/{id}/collect", r.handlers.CollectChannel)
	api.GET("/channels/{id}/health", r.handlers.ChannelHealth)
}
