package handlers

import (
	"net/http"

	"github.com/hpratama/ingatan/internal/relay"
)

// HealthHandler reports relay liveness and queue counts.
type HealthHandler struct {
	queue *relay.Queue
}

func NewHealthHandler(queue *relay.Queue) *HealthHandler {
	return &HealthHandler{queue: queue}
}

func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	pending, approved := h.queue.Counts()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"pending_count":  pending,
		"approved_count": approved,
	})
}
