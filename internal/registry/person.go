// Package registry holds the local set of known people and its on-disk form.
// The registry is owned by a single device; approved people from the relay are
// merged in by the sync service and descriptors for caregiver-uploaded
// portraits are backfilled lazily during live matching.
package registry

import "time"

// Person is one known identity on the device.
type Person struct {
	ID       string `json:"id"`
	ServerID string `json:"server_id,omitempty"` // set when merged from the relay
	Name     string `json:"name"`
	Relation string `json:"relation"`

	// Descriptor is the face embedding. Nil for caregiver-uploaded portraits
	// that have not been through the detector yet; filled in by the lazy
	// resolver during live matching.
	Descriptor []float32 `json:"descriptor,omitempty"`

	// Portrait is the stored face image (JPEG or PNG bytes).
	Portrait []byte `json:"portrait,omitempty"`

	AddedAt    time.Time `json:"added_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	Source     string    `json:"source,omitempty"` // "approved" for relay-merged entries
}

// Resolved reports whether the person has a usable descriptor.
func (p *Person) Resolved() bool {
	return len(p.Descriptor) > 0
}

// ApprovedEntry is the subset of a relay-approved identity the merge needs.
type ApprovedEntry struct {
	ServerID   string
	Name       string
	Relation   string
	Descriptor []float32
	Portrait   []byte
	ApprovedAt time.Time
}
