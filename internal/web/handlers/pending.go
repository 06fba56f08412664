package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hpratama/ingatan/internal/relay"
)

// PendingHandler serves the patient-device endpoints: submitting a face for
// approval, polling a submission's status, and listing approved people.
type PendingHandler struct {
	queue *relay.Queue
}

func NewPendingHandler(queue *relay.Queue) *PendingHandler {
	return &PendingHandler{queue: queue}
}

// Submit handles POST /api/pending.
func (h *PendingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req relay.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	id, err := h.queue.Submit(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      id,
		"message": "Submitted for caregiver approval",
	})
}

// Status handles GET /api/pending/{id}/status.
func (h *PendingHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	status, person, err := h.queue.RequestStatus(id)
	if err != nil {
		if errors.Is(err, relay.ErrNotFound) {
			respondError(w, http.StatusNotFound, "request not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to check status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  status,
		"person":  person,
	})
}

// Approved handles GET /api/approved/{subjectID}.
func (h *PendingHandler) Approved(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	if subjectID == "" {
		respondError(w, http.StatusBadRequest, "subject id is required")
		return
	}

	people := h.queue.ListApproved(subjectID)
	if people == nil {
		people = []relay.ApprovedPerson{}
	}
	log.Printf("serving %d approved people for %s", len(people), sanitizeForLog(subjectID))

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"people":  people,
	})
}
