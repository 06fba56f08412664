package relay

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hpratama/ingatan/internal/constants"
)

// ErrNotFound is returned for operations on an unknown request id.
var ErrNotFound = errors.New("request not found")

// ErrAlreadyResolved is returned when approving or rejecting a request that
// has already left the pending state.
var ErrAlreadyResolved = errors.New("request already processed")

// Queue is the approval queue state machine. Submissions enter as pending and
// leave exactly once: approval moves them to the durable approved store,
// rejection keeps them visible for a grace period so the device can still
// poll their status, then purges them.
//
// Storage is in-memory, like the rest of the relay: the relay is a lightweight
// rendezvous point, not a system of record.
type Queue struct {
	mu       sync.Mutex
	pending  map[string]*PendingRequest
	approved map[string]*ApprovedPerson
	now      func() time.Time
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		pending:  make(map[string]*PendingRequest),
		approved: make(map[string]*ApprovedPerson),
		now:      time.Now,
	}
}

// Submit creates a new pending request and returns its id. Every submission
// is a fresh request; there is no deduplication against earlier ones.
func (q *Queue) Submit(req SubmitRequest) (string, error) {
	if req.Name == "" || req.Relation == "" || req.SubjectID == "" {
		return "", errors.New("missing required fields")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	id := uuid.NewString()
	q.pending[id] = &PendingRequest{
		ID:          id,
		Name:        req.Name,
		Relation:    req.Relation,
		Descriptor:  req.Descriptor,
		ImageData:   req.ImageData,
		SubjectID:   req.SubjectID,
		SubmittedAt: q.now(),
		Status:      StatusPending,
	}
	log.Printf("[pending] new request from %s: %s (%s)", req.SubjectID, req.Name, req.Relation)
	return id, nil
}

// Approve resolves a pending request. Caregiver overrides replace the
// submitted name/relation when non-empty. The request moves to the approved
// store; approving anything but a live pending request fails without mutating
// state.
func (q *Queue) Approve(id string, overrides Overrides) (*ApprovedPerson, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.purgeExpiredLocked()

	req, ok := q.pending[id]
	if !ok {
		return nil, fmt.Errorf("approving %s: %w", id, ErrNotFound)
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("approving %s: %w", id, ErrAlreadyResolved)
	}

	person := &ApprovedPerson{
		ID:          req.ID,
		Name:        req.Name,
		Relation:    req.Relation,
		Descriptor:  req.Descriptor,
		ImageData:   req.ImageData,
		SubjectID:   req.SubjectID,
		SubmittedAt: req.SubmittedAt,
		ApprovedAt:  q.now(),
	}
	if overrides.Name != "" {
		person.Name = overrides.Name
	}
	if overrides.Relation != "" {
		person.Relation = overrides.Relation
	}

	q.approved[id] = person
	delete(q.pending, id)
	log.Printf("[approved] %s (%s) for %s", person.Name, person.Relation, person.SubjectID)
	return person, nil
}

// Reject resolves a pending request negatively. The record stays in the
// pending map, flagged rejected, until the grace period passes; it never
// reaches the approved store.
func (q *Queue) Reject(id, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.purgeExpiredLocked()

	req, ok := q.pending[id]
	if !ok {
		return fmt.Errorf("rejecting %s: %w", id, ErrNotFound)
	}
	if req.Status != StatusPending {
		return fmt.Errorf("rejecting %s: %w", id, ErrAlreadyResolved)
	}

	req.Status = StatusRejected
	req.RejectedAt = q.now()
	req.RejectionReason = reason
	log.Printf("[rejected] %s (%s): %s", req.Name, req.Relation, reason)
	return nil
}

// ListPending returns all requests still awaiting a decision, newest first.
func (q *Queue) ListPending() []PendingRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.purgeExpiredLocked()

	out := make([]PendingRequest, 0, len(q.pending))
	for _, req := range q.pending {
		if req.Status == StatusPending {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// ListApproved returns the approved people for one subject device.
func (q *Queue) ListApproved(subjectID string) []ApprovedPerson {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []ApprovedPerson
	for _, p := range q.approved {
		if p.SubjectID == subjectID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ApprovedAt.After(out[j].ApprovedAt)
	})
	return out
}

// ListAllApproved returns every approved person, newest first. Caregiver view.
func (q *Queue) ListAllApproved() []ApprovedPerson {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]ApprovedPerson, 0, len(q.approved))
	for _, p := range q.approved {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ApprovedAt.After(out[j].ApprovedAt)
	})
	return out
}

// DeleteApproved removes an approved person. Caregiver operation.
func (q *Queue) DeleteApproved(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.approved[id]; !ok {
		return fmt.Errorf("deleting %s: %w", id, ErrNotFound)
	}
	delete(q.approved, id)
	log.Printf("[deleted] approved person %s", id)
	return nil
}

// UploadFace stores a caregiver-provided portrait directly in the approved
// set, bypassing the queue. The descriptor is left nil; the patient device
// derives one from the portrait the first time the person is seen.
func (q *Queue) UploadFace(req SubmitRequest) (*ApprovedPerson, error) {
	if req.Name == "" || req.Relation == "" || req.SubjectID == "" || len(req.ImageData) == 0 {
		return nil, errors.New("missing required fields")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	person := &ApprovedPerson{
		ID:                  uuid.NewString(),
		Name:                req.Name,
		Relation:            req.Relation,
		ImageData:           req.ImageData,
		SubjectID:           req.SubjectID,
		ApprovedAt:          q.now(),
		UploadedByCaregiver: true,
	}
	q.approved[person.ID] = person
	log.Printf("[upload] caregiver uploaded face %s (%s) for %s", person.Name, person.Relation, person.SubjectID)
	return person, nil
}

// RequestStatus reports the state of a submission: the pending/rejected record
// if it still exists, the approved person if it was promoted.
func (q *Queue) RequestStatus(id string) (Status, *ApprovedPerson, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.purgeExpiredLocked()

	if req, ok := q.pending[id]; ok {
		return req.Status, nil, nil
	}
	if p, ok := q.approved[id]; ok {
		person := *p
		return StatusApproved, &person, nil
	}
	return "", nil, fmt.Errorf("status of %s: %w", id, ErrNotFound)
}

// Counts returns the pending and approved totals for the health endpoint.
func (q *Queue) Counts() (pending, approved int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.purgeExpiredLocked()
	for _, req := range q.pending {
		if req.Status == StatusPending {
			pending++
		}
	}
	return pending, len(q.approved)
}

// purgeExpiredLocked drops rejected records past the grace period.
// Callers must hold the mutex.
func (q *Queue) purgeExpiredLocked() {
	cutoff := q.now().Add(-constants.RejectionGracePeriod)
	for id, req := range q.pending {
		if req.Status == StatusRejected && req.RejectedAt.Before(cutoff) {
			delete(q.pending, id)
		}
	}
}
