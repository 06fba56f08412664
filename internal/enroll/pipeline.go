// Package enroll captures unknown faces and walks them through the
// caregiver-approval workflow: capture, name/relation collection (spoken or
// manual), submission to the relay, and the wait for approval.
package enroll

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/hpratama/ingatan/internal/relay"
	"github.com/hpratama/ingatan/internal/speech"
)

// State of the enrollment pipeline.
type State int

const (
	StateIdle State = iota
	StateListening
	StateCaptured
	StateSubmitting
	StateAwaitingApproval
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateCaptured:
		return "captured"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingApproval:
		return "awaiting-approval"
	default:
		return "unknown"
	}
}

// PendingFace is the single captured-but-unnamed face in flight. The
// descriptor may be nil when the detection carried no embedding; such faces
// can still be enrolled, the relay portrait serving as the source for lazy
// resolution later.
type PendingFace struct {
	Descriptor []float32
	Image      []byte
}

// Submitter is the slice of the relay client the pipeline needs.
type Submitter interface {
	Submit(ctx context.Context, req relay.SubmitRequest) (string, error)
}

// Pipeline is the per-device enrollment state machine. At most one
// PendingFace is tracked at a time: further unknown faces are ignored until
// the current one resolves, because there is only one voice-input channel to
// collect a name with.
type Pipeline struct {
	client    Submitter
	listener  *speech.Listener
	subjectID string

	// onSubmitted runs after every successful submission; the session uses
	// it to schedule a near-term sync so a fast caregiver approval shows up
	// quickly.
	onSubmitted func(requestID string)

	mu            sync.Mutex
	state         State
	pending       *PendingFace
	lastRequestID string
	status        string
}

// NewPipeline creates an idle pipeline.
func NewPipeline(client Submitter, listener *speech.Listener, subjectID string, onSubmitted func(requestID string)) *Pipeline {
	return &Pipeline{
		client:      client,
		listener:    listener,
		subjectID:   subjectID,
		onSubmitted: onSubmitted,
		state:       StateIdle,
	}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Pending returns the face currently awaiting a name, or nil.
func (p *Pipeline) Pending() *PendingFace {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return nil
	}
	face := *p.pending
	return &face
}

// Status returns the last user-facing status text.
func (p *Pipeline) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// LastRequestID returns the id of the most recent successful submission.
func (p *Pipeline) LastRequestID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRequestID
}

// CaptureUnknown offers an unmatched detection to the pipeline. When no face
// is already pending, the crop becomes the PendingFace and the speech
// listener is started; otherwise the detection is ignored. Returns whether
// the face was captured.
//
// A failing listener is not fatal: the face stays captured and the user is
// pointed at manual entry.
func (p *Pipeline) CaptureUnknown(descriptor []float32, crop []byte) bool {
	p.mu.Lock()
	if p.pending != nil {
		p.mu.Unlock()
		return false
	}
	p.pending = &PendingFace{Descriptor: descriptor, Image: crop}
	p.state = StateCaptured
	p.mu.Unlock()

	log.Printf("captured unknown face, starting introduction listener")
	if p.listener != nil {
		if err := p.listener.Start(p.handleIntroduction); err != nil {
			log.Printf("speech listener unavailable: %v", err)
			p.setStatus("Speech recognition not available - please use manual entry")
			return true
		}
		p.mu.Lock()
		p.state = StateListening
		p.mu.Unlock()
		p.setStatus(`Minta orang tersebut memperkenalkan diri. Contoh: "Nama saya Budi, anak Anda"`)
	} else {
		p.setStatus("Please use manual entry")
	}
	return true
}

// handleIntroduction receives a recognized self-introduction from the speech
// listener. The callback can fire after the pipeline has moved on (manual
// cancel, completed submission), so it re-checks for a live PendingFace
// before acting.
func (p *Pipeline) handleIntroduction(intro speech.Introduction) {
	p.mu.Lock()
	stale := p.pending == nil
	p.mu.Unlock()
	if stale {
		log.Printf("discarding introduction for %s: no pending face", intro.Name)
		return
	}

	if err := p.Submit(context.Background(), intro.Name, intro.Relation); err != nil {
		log.Printf("submission from speech failed: %v", err)
	}
}

// Submit sends the pending face with the given name and relation to the
// approval queue. Spoken and manual entry both land here. On success the
// PendingFace is cleared, the listener stopped and the pipeline stays in
// StateAwaitingApproval until the next capture or a reset. On failure the
// PendingFace is retained and the user must retry manually; there is no
// automatic retry.
func (p *Pipeline) Submit(ctx context.Context, name, relation string) error {
	p.mu.Lock()
	if p.pending == nil {
		p.mu.Unlock()
		return fmt.Errorf("no pending face to submit")
	}
	face := *p.pending
	p.state = StateSubmitting
	p.mu.Unlock()

	p.setStatus(fmt.Sprintf("Sending %s for caregiver approval...", name))
	id, err := p.client.Submit(ctx, relay.SubmitRequest{
		Name:       name,
		Relation:   relation,
		Descriptor: face.Descriptor,
		ImageData:  face.Image,
		SubjectID:  p.subjectID,
	})
	if err != nil {
		// Keep the captured face so manual retry can still use it.
		p.mu.Lock()
		if p.listener != nil && p.listener.Active() {
			p.state = StateListening
		} else {
			p.state = StateCaptured
		}
		p.mu.Unlock()
		p.setStatus("Failed to submit. Try manual entry.")
		return fmt.Errorf("submitting %s: %w", name, err)
	}

	p.mu.Lock()
	p.pending = nil
	p.lastRequestID = id
	p.state = StateAwaitingApproval
	p.mu.Unlock()

	if p.listener != nil {
		p.listener.Stop()
	}
	p.setStatus(fmt.Sprintf("%s submitted! Waiting for caregiver approval...", name))
	log.Printf("submitted %s (%s) for approval as request %s", name, relation, id)

	if p.onSubmitted != nil {
		p.onSubmitted(id)
	}
	return nil
}

// Cancel discards the pending face and stops the listener without submitting.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	p.pending = nil
	p.state = StateIdle
	p.status = ""
	p.mu.Unlock()

	if p.listener != nil {
		p.listener.Stop()
	}
}

// Reset is Cancel plus clearing the submission trail; used on session stop.
func (p *Pipeline) Reset() {
	p.Cancel()
	p.mu.Lock()
	p.lastRequestID = ""
	p.mu.Unlock()
}

func (p *Pipeline) setStatus(s string) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}
