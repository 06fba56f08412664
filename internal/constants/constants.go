// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Face matching constants
const (
	// MatchDistanceThreshold is the maximum Euclidean distance between two
	// descriptors for a live detection to match a known person.
	// Lower values = stricter matching.
	MatchDistanceThreshold = 0.55

	// CosineMatchThreshold is the accept threshold when matching with cosine
	// distance instead of Euclidean. For unit-length descriptors it covers
	// the same region as MatchDistanceThreshold (d^2 = 2 * cosine distance).
	CosineMatchThreshold = 0.15

	// PortraitDistanceThreshold is the maximum distance when matching a live
	// detection against a descriptor derived from a stored portrait. Portraits
	// are usually better lit than camera frames, so the threshold is looser.
	PortraitDistanceThreshold = 0.60

	// HistoryWindow is the number of recent match outcomes kept per detection
	// slot for label stabilization.
	HistoryWindow = 5
)

// Session timing constants
const (
	// DetectionDelay is the pause between the end of one detection pass and
	// the start of the next. Passes never overlap; a slow detector call
	// throttles the loop instead of stacking frames.
	DetectionDelay = 300 * time.Millisecond

	// AnnounceInterval is the minimum gap between spoken announcements of the
	// same person.
	AnnounceInterval = 30 * time.Second

	// UtterancePause is how long the speech listener waits after the last
	// transcript fragment before treating the utterance as finished.
	UtterancePause = 3 * time.Second

	// CropPadding is the pixel margin added around a detected face box when
	// capturing an enrollment snapshot.
	CropPadding = 20
)

// Sync constants
const (
	// SyncInterval is the period of the background approved-people sync.
	SyncInterval = 10 * time.Second

	// PostSubmitSyncDelay is how long after a successful enrollment submission
	// the next sync runs. Short enough that a caregiver approving right away
	// shows up quickly during a bedside demo.
	PostSubmitSyncDelay = 2 * time.Second
)

// Relay constants
const (
	// RejectionGracePeriod is how long a rejected request stays visible so the
	// submitting device can still poll its status.
	RejectionGracePeriod = time.Hour

	// RoutineDueWindow is how far ahead the due-routine listing looks.
	RoutineDueWindow = 5 * time.Minute
)
