package relay

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hpratama/ingatan/internal/constants"
)

// RoutineStore keeps activity reminders per subject. Plain time-window CRUD;
// the due listing latches each routine's notified flag so a reminder fires at
// most once.
type RoutineStore struct {
	mu       sync.Mutex
	routines map[string]*Routine
	now      func() time.Time
}

func NewRoutineStore() *RoutineStore {
	return &RoutineStore{routines: make(map[string]*Routine), now: time.Now}
}

// Create stores a new routine.
func (s *RoutineStore) Create(subjectID, activityName string, at time.Time, recurring bool, frequency string) (*Routine, error) {
	if subjectID == "" || activityName == "" || at.IsZero() {
		return nil, errors.New("missing required fields")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := &Routine{
		ID:           uuid.NewString(),
		SubjectID:    subjectID,
		ActivityName: activityName,
		DateTime:     at,
		IsRecurring:  recurring,
		Frequency:    frequency,
		CreatedAt:    s.now(),
	}
	s.routines[r.ID] = r
	routine := *r
	return &routine, nil
}

// ListBySubject returns a subject's routines ordered by scheduled time.
func (s *RoutineStore) ListBySubject(subjectID string) []Routine {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Routine
	for _, r := range s.routines {
		if r.SubjectID == subjectID {
			out = append(out, *r)
		}
	}
	sortByTime(out)
	return out
}

// ListDue returns a subject's routines due within the lookahead window that
// have not been announced yet, and marks them notified.
func (s *RoutineStore) ListDue(subjectID string) []Routine {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	horizon := now.Add(constants.RoutineDueWindow)

	var out []Routine
	for _, r := range s.routines {
		if r.SubjectID != subjectID || r.Notified {
			continue
		}
		if r.DateTime.Before(now) || r.DateTime.After(horizon) {
			continue
		}
		r.Notified = true
		out = append(out, *r)
	}
	sortByTime(out)
	return out
}

// ListAll returns every routine ordered by scheduled time. Caregiver view.
func (s *RoutineStore) ListAll() []Routine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Routine, 0, len(s.routines))
	for _, r := range s.routines {
		out = append(out, *r)
	}
	sortByTime(out)
	return out
}

// Delete removes a routine.
func (s *RoutineStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.routines[id]; !ok {
		return fmt.Errorf("deleting routine %s: %w", id, ErrNotFound)
	}
	delete(s.routines, id)
	return nil
}

func sortByTime(routines []Routine) {
	sort.Slice(routines, func(i, j int) bool {
		return routines[i].DateTime.Before(routines[j].DateTime)
	})
}
