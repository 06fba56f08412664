package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hpratama/ingatan/internal/relay"
)

func newTestServer() *Server {
	return NewServer(relay.NewQueue(), relay.NewRoutineStore(), "127.0.0.1", 0)
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestSubmitApproveSyncFlow(t *testing.T) {
	s := newTestServer()

	// Device submits an unknown face.
	rec := doRequest(t, s, http.MethodPost, "/api/pending", relay.SubmitRequest{
		Name:      "Budi",
		Relation:  "anak",
		SubjectID: "subject_1",
		ImageData: []byte{0xFF, 0xD8},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	id, _ := decodeBody(t, rec)["id"].(string)
	if id == "" {
		t.Fatal("expected a request id")
	}

	// The device polls: still pending.
	rec = doRequest(t, s, http.MethodGet, "/api/pending/"+id+"/status", nil)
	if body := decodeBody(t, rec); body["status"] != "pending" {
		t.Errorf("expected pending status, got %v", body)
	}

	// Caregiver sees it and approves with an override.
	rec = doRequest(t, s, http.MethodGet, "/api/caregiver/pending", nil)
	if body := decodeBody(t, rec); len(body["pending"].([]any)) != 1 {
		t.Fatalf("expected one pending request, got %v", body)
	}
	rec = doRequest(t, s, http.MethodPost, "/api/caregiver/approve/"+id, relay.Overrides{Name: "Budi Santoso"})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The device's sync pull now includes the approved person.
	rec = doRequest(t, s, http.MethodGet, "/api/approved/subject_1", nil)
	body := decodeBody(t, rec)
	people := body["people"].([]any)
	if len(people) != 1 {
		t.Fatalf("expected one approved person, got %v", body)
	}
	if people[0].(map[string]any)["name"] != "Budi Santoso" {
		t.Errorf("expected override applied, got %v", people[0])
	}

	// Approving again is a 404: the request already left the queue.
	rec = doRequest(t, s, http.MethodPost, "/api/caregiver/approve/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on double approve, got %d", rec.Code)
	}
}

func TestRejectFlow(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/pending", relay.SubmitRequest{
		Name:      "Siti",
		Relation:  "istri",
		SubjectID: "subject_1",
	})
	id, _ := decodeBody(t, rec)["id"].(string)

	rec = doRequest(t, s, http.MethodPost, "/api/caregiver/reject/"+id, map[string]string{"reason": "unknown person"})
	if rec.Code != http.StatusOK {
		t.Fatalf("reject: expected 200, got %d", rec.Code)
	}

	// Rejection is visible to the device but nothing reaches the approved set.
	rec = doRequest(t, s, http.MethodGet, "/api/pending/"+id+"/status", nil)
	if body := decodeBody(t, rec); body["status"] != "rejected" {
		t.Errorf("expected rejected status, got %v", body)
	}
	rec = doRequest(t, s, http.MethodGet, "/api/approved/subject_1", nil)
	if body := decodeBody(t, rec); len(body["people"].([]any)) != 0 {
		t.Errorf("rejected person must not be approved: %v", body)
	}
}

func TestSubmitValidation(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/pending", relay.SubmitRequest{Name: "Budi"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for incomplete submission, got %d", rec.Code)
	}
}

func TestStatusUnknownRequest(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodGet, "/api/pending/ghost/status", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUploadFaceEndpoint(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/caregiver/upload-face", relay.SubmitRequest{
		Name:       "Ayu",
		Relation:   "cucu",
		SubjectID:  "subject_1",
		ImageData:  []byte{0xFF, 0xD8},
		Descriptor: []float32{1, 2, 3}, // must be dropped server-side
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	person := decodeBody(t, rec)["person"].(map[string]any)
	if _, hasDescriptor := person["descriptor"]; hasDescriptor {
		t.Error("uploaded face must not keep a client-sent descriptor")
	}
	if person["uploaded_by_caregiver"] != true {
		t.Errorf("expected caregiver upload flag, got %v", person)
	}

	// The upload shows up in the device sync immediately.
	rec = doRequest(t, s, http.MethodGet, "/api/approved/subject_1", nil)
	if body := decodeBody(t, rec); len(body["people"].([]any)) != 1 {
		t.Errorf("expected uploaded face in approved list, got %v", body)
	}
}

func TestDeleteApprovedEndpoint(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/caregiver/upload-face", relay.SubmitRequest{
		Name: "Ayu", Relation: "cucu", SubjectID: "subject_1", ImageData: []byte{1},
	})
	id := decodeBody(t, rec)["person"].(map[string]any)["id"].(string)

	rec = doRequest(t, s, http.MethodDelete, "/api/caregiver/approved/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	rec = doRequest(t, s, http.MethodDelete, "/api/caregiver/approved/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on double delete, got %d", rec.Code)
	}
}

func TestRoutineEndpoints(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/caregiver/routines", map[string]any{
		"subject_id":    "subject_1",
		"activity_name": "minum obat",
		"date_time":     time.Now().Add(2 * time.Minute).Format(time.RFC3339),
		"is_recurring":  true,
		"frequency":     "daily",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	id := decodeBody(t, rec)["routine"].(map[string]any)["id"].(string)

	rec = doRequest(t, s, http.MethodGet, "/api/routines/subject_1", nil)
	if body := decodeBody(t, rec); len(body["routines"].([]any)) != 1 {
		t.Fatalf("expected one routine, got %v", body)
	}

	// Due polling latches: the second poll is empty.
	rec = doRequest(t, s, http.MethodGet, "/api/routines/subject_1/due", nil)
	if body := decodeBody(t, rec); len(body["routines"].([]any)) != 1 {
		t.Fatalf("expected the routine due, got %v", body)
	}
	rec = doRequest(t, s, http.MethodGet, "/api/routines/subject_1/due", nil)
	if body := decodeBody(t, rec); len(body["routines"].([]any)) != 0 {
		t.Errorf("expected no routines on repeat poll, got %v", body)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/caregiver/routines/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", rec.Code)
	}
}

func TestRoutineCreateRejectsBadTimestamp(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/caregiver/routines", map[string]any{
		"subject_id":    "subject_1",
		"activity_name": "minum obat",
		"date_time":     "tomorrow at noon",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a non-RFC3339 timestamp, got %d", rec.Code)
	}
}
