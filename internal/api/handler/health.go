package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/blackjack-go/internal/api/response"
)

// Pinger is implemented by storage backends that hold a connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the server can reach its storage
type HealthHandler struct {
	storage any
}

// NewHealthHandler creates a health handler for the given storage
func NewHealthHandler(storage any) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	p, ok := h.storage.(Pinger)
	if !ok {
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: "memory"})
		return
	}
	if err := p.Ping(r.Context()); err != nil {
		response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "degraded", Storage: "unreachable"})
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: "redis"})
}
