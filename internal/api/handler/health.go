package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mcoot/eventgames/internal/api/response"
)

const healthTimeout = 2 * time.Second

// Pinger checks that a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{
		store: store,
	}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		response.JSON(w, http.StatusServiceUnavailable, response.HealthResponse{Status: "degraded", Storage: "unreachable"})
		return
	}
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Storage: "ok"})
}
