// Package session runs the live recognition loop: frames in, stable labels
// and announcements out, unknown faces into the enrollment pipeline.
package session

import (
	"context"
	"log"
	"time"

	"github.com/hpratama/ingatan/internal/announce"
	"github.com/hpratama/ingatan/internal/constants"
	"github.com/hpratama/ingatan/internal/detector"
	"github.com/hpratama/ingatan/internal/enroll"
	"github.com/hpratama/ingatan/internal/match"
	"github.com/hpratama/ingatan/internal/registry"
	"github.com/hpratama/ingatan/internal/speech"
)

// FaceLabel is the per-detection outcome of one pass, for rendering.
type FaceLabel struct {
	Slot     int
	BBox     []float64
	Label    string
	Relation string
	Known    bool
}

// Session wires the matcher, stability tracker, claim arbiter, lazy resolver,
// announcer and enrollment pipeline into a single cooperative loop. Passes
// never overlap: the next one is scheduled a fixed delay after the previous
// pass, including its detector call, completes.
type Session struct {
	detector  detector.Detector
	registry  *registry.Registry
	metric    match.Metric
	resolver  *match.LazyResolver
	history   *match.History
	claims    match.ClaimSet
	announcer *announce.Announcer
	pipeline  *enroll.Pipeline
	listener  *speech.Listener
	frames    FrameSource

	labels []FaceLabel
	now    func() time.Time
}

// New assembles a session. All collaborators are injected; nothing here is a
// package-level singleton, so tests can run many sessions side by side.
func New(det detector.Detector, reg *registry.Registry, metric match.Metric, announcer *announce.Announcer, pipeline *enroll.Pipeline, listener *speech.Listener, frames FrameSource) *Session {
	return &Session{
		detector:  det,
		registry:  reg,
		metric:    metric,
		resolver:  match.NewLazyResolver(det, reg),
		history:   match.NewHistory(),
		claims:    match.NewClaimSet(),
		announcer: announcer,
		pipeline:  pipeline,
		listener:  listener,
		frames:    frames,
		now:       time.Now,
	}
}

// Run drives detection passes until the context is cancelled, then clears
// session state.
func (s *Session) Run(ctx context.Context) error {
	defer s.Stop()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		frame, err := s.frames.Frame()
		if err != nil {
			log.Printf("frame source error: %v", err)
		} else if frame != nil {
			s.processFrame(ctx, frame)
		}

		// Re-arm only after the pass completes so slow detector calls
		// throttle the loop instead of overlapping it.
		timer.Reset(constants.DetectionDelay)
	}
}

// Labels returns the outcome of the most recent pass.
func (s *Session) Labels() []FaceLabel {
	return s.labels
}

// Stop clears per-session state: slot history, the frame claim set, any
// pending enrollment and its listener, and the announcer's rate limits.
// In-flight relay calls are not aborted; their results are discarded by the
// pipeline's own staleness checks.
func (s *Session) Stop() {
	s.history.Reset()
	s.claims.Reset()
	s.pipeline.Reset()
	s.announcer.Reset()
}

// processFrame runs one detection pass. Detector failures skip the frame
// entirely; the next tick retries.
func (s *Session) processFrame(ctx context.Context, frame []byte) {
	result, err := s.detector.DetectFaces(ctx, frame)
	if err != nil {
		log.Printf("detection failed, skipping frame: %v", err)
		return
	}

	people := s.registry.People()
	s.claims.Reset()
	labels := make([]FaceLabel, 0, len(result.Faces))

	// Detector output order decides who wins a contested identity.
	for _, det := range result.Faces {
		labels = append(labels, s.processDetection(ctx, frame, people, det))
	}
	s.labels = labels
}

// processDetection matches one detection and routes the outcome: known faces
// are claimed, stamped and announced; unknown ones are offered to the
// enrollment pipeline.
func (s *Session) processDetection(ctx context.Context, frame []byte, people []registry.Person, det detector.Detection) FaceLabel {
	unknown := FaceLabel{Slot: det.FaceIndex, BBox: det.BBox, Label: "Unknown"}

	// A detection without an embedding cannot be matched, but its crop is
	// still usable for enrollment. The slot's vote history is cleared the
	// same way as for a matcher miss so the next occupant starts fresh.
	if len(det.Embedding) == 0 {
		s.history.ClearSlot(det.FaceIndex)
		s.offerForEnrollment(frame, det)
		return unknown
	}

	person, _ := s.metric.BestMatch(det.Embedding, people, s.claims)
	if person == nil {
		person = s.tryLazyResolve(ctx, det.Embedding)
	}
	if person == nil {
		s.history.ClearSlot(det.FaceIndex)
		s.offerForEnrollment(frame, det)
		return unknown
	}

	stable := s.stabilize(det.FaceIndex, person)
	s.claims.Claim(stable.ID)

	if err := s.registry.UpdateLastSeen(stable.ID); err != nil {
		log.Printf("failed to update last seen for %s: %v", stable.Name, err)
	}
	s.announce(stable)

	return FaceLabel{
		Slot:     det.FaceIndex,
		BBox:     det.BBox,
		Label:    stable.Name,
		Relation: stable.Relation,
		Known:    true,
	}
}

// stabilize runs the raw match through the per-slot history and returns the
// person whose label the slot should carry this frame.
func (s *Session) stabilize(slot int, raw *registry.Person) *registry.Person {
	stableID := s.history.Observe(slot, raw.ID, s.now())
	if stableID == raw.ID {
		return raw
	}
	stable := s.registry.Get(stableID)
	if stable == nil || s.claims.Claimed(stable.ID) {
		// The historic majority is gone or already taken by an earlier
		// detection this frame; fall back to the raw match.
		return raw
	}
	return stable
}

// tryLazyResolve attempts the portrait-backfill path after a main-matcher
// miss. Resolver errors are non-fatal.
func (s *Session) tryLazyResolve(ctx context.Context, observed []float32) *registry.Person {
	person, err := s.resolver.Resolve(ctx, observed)
	if err != nil {
		log.Printf("lazy resolution failed: %v", err)
		return nil
	}
	if person != nil && s.claims.Claimed(person.ID) {
		return nil
	}
	return person
}

// announce speaks the recognized person, pausing the introduction listener
// for the duration so the recognizer does not hear the announcement.
func (s *Session) announce(p *registry.Person) {
	var done func()
	if s.listener != nil && s.listener.Active() {
		s.listener.Pause()
		done = s.listener.Resume
	}
	if !s.announcer.Announce(p.Name, p.Relation, done) && done != nil {
		// Suppressed by the rate limit; resume immediately.
		done()
	}
}

// offerForEnrollment crops the detection and hands it to the pipeline. The
// pipeline ignores it when another face is already pending.
func (s *Session) offerForEnrollment(frame []byte, det detector.Detection) {
	if s.pipeline.Pending() != nil {
		return
	}
	crop, err := enroll.CropFace(frame, det.BBox)
	if err != nil {
		log.Printf("failed to crop unknown face: %v", err)
		return
	}
	s.pipeline.CaptureUnknown(det.Embedding, crop)
}
