// Package relay implements the caregiver relay: the approval queue that holds
// enrollment submissions until a caregiver decides on them, the durable
// approved-people store, and the HTTP client the patient device uses to reach
// them.
package relay

import "time"

// Status of an approval request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// SubmitRequest is an enrollment submission from a patient device.
type SubmitRequest struct {
	Name       string    `json:"name"`
	Relation   string    `json:"relation"`
	Descriptor []float32 `json:"descriptor,omitempty"`
	ImageData  []byte    `json:"image_data,omitempty"`
	SubjectID  string    `json:"subject_id"`
}

// PendingRequest is a submission awaiting a caregiver decision.
type PendingRequest struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Relation   string    `json:"relation"`
	Descriptor []float32 `json:"descriptor,omitempty"`
	ImageData  []byte    `json:"image_data,omitempty"`
	SubjectID  string    `json:"subject_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Status     Status    `json:"status"`

	RejectedAt      time.Time `json:"rejected_at,omitzero"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
}

// ApprovedPerson is the durable server-side identity, scoped to the subject
// device it was submitted for.
type ApprovedPerson struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Relation   string    `json:"relation"`
	Descriptor []float32 `json:"descriptor,omitempty"`
	ImageData  []byte    `json:"image_data,omitempty"`
	SubjectID  string    `json:"subject_id"`
	SubmittedAt time.Time `json:"submitted_at,omitzero"`
	ApprovedAt time.Time `json:"approved_at"`

	// UploadedByCaregiver marks entries created by the caregiver's direct
	// upload. They carry no descriptor; the device resolves one from the
	// portrait on first sight.
	UploadedByCaregiver bool `json:"uploaded_by_caregiver,omitempty"`
}

// Overrides are caregiver edits applied at approval time. Empty fields keep
// the submitted values.
type Overrides struct {
	Name     string `json:"name,omitempty"`
	Relation string `json:"relation,omitempty"`
}

// Routine is a scheduled activity reminder for a subject. The relay only
// stores and serves these; scheduling logic lives with the caregiver UI.
type Routine struct {
	ID           string    `json:"id"`
	SubjectID    string    `json:"subject_id"`
	ActivityName string    `json:"activity_name"`
	DateTime     time.Time `json:"date_time"`
	IsRecurring  bool      `json:"is_recurring"`
	Frequency    string    `json:"frequency,omitempty"` // daily, weekly, monthly
	CreatedAt    time.Time `json:"created_at"`
	Notified     bool      `json:"notified"`
}
