package http

import (
	"net/http"

	"github.com/go-chi/render"
)

// HealthHandler reports process liveness.
type HealthHandler struct {
	version string
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// ServeHTTP handles GET /healthz.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status":  "healthy",
		"version": h.version,
	})
}
