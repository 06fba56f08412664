package registry

import (
	"fmt"
	"sync"
	"time"
)

// Registry is the in-memory view of the known-people document. All reads and
// writes go through the mutex: the session loop reads while the sync service
// and the lazy resolver write from other goroutines.
type Registry struct {
	mu     sync.RWMutex
	people []Person
	store  Store
}

// New creates a registry backed by the given store and loads the current
// document. A missing document is treated as an empty registry.
func New(store Store) (*Registry, error) {
	people, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading people document: %w", err)
	}
	return &Registry{people: people, store: store}, nil
}

// People returns a snapshot of all known people.
func (r *Registry) People() []Person {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Person, len(r.people))
	copy(out, r.people)
	return out
}

// Get returns the person with the given id, or nil.
func (r *Registry) Get(id string) *Person {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.people {
		if r.people[i].ID == id {
			p := r.people[i]
			return &p
		}
	}
	return nil
}

// Len returns the number of known people.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.people)
}

// Add appends a new person and persists the document.
func (r *Registry) Add(p Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.AddedAt.IsZero() {
		p.AddedAt = time.Now()
	}
	if p.LastSeenAt.IsZero() {
		p.LastSeenAt = p.AddedAt
	}
	r.people = append(r.people, p)
	return r.save()
}

// UpdateLastSeen stamps the person's last-seen time and persists.
// Unknown ids are ignored.
func (r *Registry) UpdateLastSeen(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.people {
		if r.people[i].ID == id {
			r.people[i].LastSeenAt = time.Now()
			return r.save()
		}
	}
	return nil
}

// ResolveDescriptor backfills the descriptor for a person that was stored
// without one. A descriptor that is already resolved is never overwritten;
// the first resolution wins.
func (r *Registry) ResolveDescriptor(id string, descriptor []float32) error {
	if len(descriptor) == 0 {
		return fmt.Errorf("empty descriptor for %s", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.people {
		if r.people[i].ID != id {
			continue
		}
		if r.people[i].Resolved() {
			return nil
		}
		r.people[i].Descriptor = descriptor
		return r.save()
	}
	return fmt.Errorf("person %s not found", id)
}

// MergeApproved merges relay-approved identities into the registry. Entries
// already merged (matched by server id) are skipped, so running the merge
// twice against the same server state is a no-op. Nothing is ever deleted.
// Returns the number of newly added people.
func (r *Registry) MergeApproved(entries []ApprovedEntry) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := make(map[string]struct{}, len(r.people))
	for i := range r.people {
		if r.people[i].ServerID != "" {
			existing[r.people[i].ServerID] = struct{}{}
		}
	}

	added := 0
	for _, e := range entries {
		if _, ok := existing[e.ServerID]; ok {
			continue
		}
		existing[e.ServerID] = struct{}{}
		addedAt := e.ApprovedAt
		if addedAt.IsZero() {
			addedAt = time.Now()
		}
		r.people = append(r.people, Person{
			ID:         "server_" + e.ServerID,
			ServerID:   e.ServerID,
			Name:       e.Name,
			Relation:   e.Relation,
			Descriptor: e.Descriptor,
			Portrait:   e.Portrait,
			AddedAt:    addedAt,
			LastSeenAt: addedAt,
			Source:     "approved",
		})
		added++
	}

	if added == 0 {
		return 0, nil
	}
	return added, r.save()
}

// save persists the whole document. Callers must hold the write lock.
func (r *Registry) save() error {
	if err := r.store.Save(r.people); err != nil {
		return fmt.Errorf("saving people document: %w", err)
	}
	return nil
}
