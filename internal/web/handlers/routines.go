package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hpratama/ingatan/internal/relay"
)

// RoutinesHandler serves routine/reminder CRUD for caregivers and the
// due-soon polling endpoint for patient devices.
type RoutinesHandler struct {
	store *relay.RoutineStore
}

func NewRoutinesHandler(store *relay.RoutineStore) *RoutinesHandler {
	return &RoutinesHandler{store: store}
}

type createRoutineRequest struct {
	SubjectID    string `json:"subject_id"`
	ActivityName string `json:"activity_name"`
	DateTime     string `json:"date_time"` // RFC 3339
	IsRecurring  bool   `json:"is_recurring"`
	Frequency    string `json:"frequency"`
}

// Create handles POST /api/caregiver/routines.
func (h *RoutinesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	at, err := time.Parse(time.RFC3339, req.DateTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date_time must be RFC 3339")
		return
	}

	routine, err := h.store.Create(req.SubjectID, req.ActivityName, at, req.IsRecurring, req.Frequency)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"routine": routine,
	})
}

// ListAll handles GET /api/caregiver/routines.
func (h *RoutinesHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"routines": h.store.ListAll(),
	})
}

// Delete handles DELETE /api/caregiver/routines/{id}.
func (h *RoutinesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, relay.ErrNotFound) {
			respondError(w, http.StatusNotFound, "routine not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Routine deleted",
	})
}

// ListBySubject handles GET /api/routines/{subjectID}.
func (h *RoutinesHandler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")

	routines := h.store.ListBySubject(subjectID)
	if routines == nil {
		routines = []relay.Routine{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"routines": routines,
	})
}

// ListDue handles GET /api/routines/{subjectID}/due. Returned routines
// are latched as notified so they fire once.
func (h *RoutinesHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")

	routines := h.store.ListDue(subjectID)
	if routines == nil {
		routines = []relay.Routine{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"routines": routines,
	})
}
