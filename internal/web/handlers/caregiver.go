package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hpratama/ingatan/internal/relay"
)

// CaregiverHandler serves the caregiver-facing endpoints: reviewing the
// pending queue, approving or rejecting requests, browsing and pruning the
// approved set, and uploading portraits directly.
type CaregiverHandler struct {
	queue *relay.Queue
}

func NewCaregiverHandler(queue *relay.Queue) *CaregiverHandler {
	return &CaregiverHandler{queue: queue}
}

// ListPending handles GET /api/caregiver/pending.
func (h *CaregiverHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"pending": h.queue.ListPending(),
	})
}

// Approve handles POST /api/caregiver/approve/{id}. The body may carry
// name/relation overrides.
func (h *CaregiverHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var overrides relay.Overrides
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}

	person, err := h.queue.Approve(id, overrides)
	if err != nil {
		respondQueueError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Person approved",
		"person":  person,
	})
}

// Reject handles POST /api/caregiver/reject/{id}.
func (h *CaregiverHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}

	if err := h.queue.Reject(id, body.Reason); err != nil {
		respondQueueError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Person rejected",
	})
}

// ListApproved handles GET /api/caregiver/approved.
func (h *CaregiverHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"approved": h.queue.ListAllApproved(),
	})
}

// DeleteApproved handles DELETE /api/caregiver/approved/{id}.
func (h *CaregiverHandler) DeleteApproved(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.queue.DeleteApproved(id); err != nil {
		respondQueueError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Person deleted",
	})
}

// UploadFace handles POST /api/caregiver/upload-face: a direct portrait
// upload that bypasses the approval queue. No descriptor is stored; the
// patient device derives one from the portrait on first sight.
func (h *CaregiverHandler) UploadFace(w http.ResponseWriter, r *http.Request) {
	var req relay.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	// Uploaded portraits never carry a descriptor, whatever the client sent.
	req.Descriptor = nil

	person, err := h.queue.UploadFace(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Face uploaded successfully",
		"person":  person,
	})
}

// respondQueueError maps queue state-machine errors onto HTTP statuses.
func respondQueueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, relay.ErrNotFound):
		respondError(w, http.StatusNotFound, "request not found")
	case errors.Is(err, relay.ErrAlreadyResolved):
		respondError(w, http.StatusBadRequest, "request already processed")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
