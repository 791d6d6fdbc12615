package http

import (
	"github.com/fasthttp/router"
)

// Router wires channel management routes
type Router struct {
	handlers *Handlers
}

// NewRouter creates a channel management router
func NewRouter(handlers *Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes registers channel management routes on the server router
func (r *Router) RegisterRoutes(root *router.Router) {
	api := root.Group("/api/v1")
	api.POST("/channels", r.handlers.AddChannel)
	api.GET("/channels", r.handlers.ListChannels)
	api.POST("/channels/{id}/refresh", r.handlers.RefreshChannel)
	api.POST("/channels/{id}/deactivate", r.handlers.DeactivateChannel)
	api.POST("/channels/{id}/reset-cursor", r.handlers.ResetCursor)
	api.DELETE("/channels/{id}", r.handlers.RemoveChannel)
}
