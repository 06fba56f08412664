// Package announce speaks recognized people aloud, rate-limiting repeats so
// the same person is not announced over and over while they stay in frame.
package announce

import (
	"log"
	"sync"
	"time"

	"github.com/hpratama/ingatan/internal/constants"
)

// Speaker is the text-to-speech boundary. SpeakThen invokes done when the
// utterance finishes (or fails), which the session uses to pause the speech
// listener while announcing and resume it afterwards.
type Speaker interface {
	Speak(text string) error
	SpeakThen(text string, done func()) error
	Stop()
}

// Announcer wraps a Speaker with per-person rate limiting.
type Announcer struct {
	speaker Speaker

	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

// New creates an announcer over the given speaker.
func New(speaker Speaker) *Announcer {
	return &Announcer{
		speaker: speaker,
		last:    make(map[string]time.Time),
		now:     time.Now,
	}
}

// Announce speaks "<name>, <relation> Anda" unless the same person was
// announced within the rate-limit interval. Returns whether an announcement
// was made. done, when non-nil, runs after the utterance completes; it is not
// invoked for suppressed announcements.
func (a *Announcer) Announce(name, relation string, done func()) bool {
	key := name + "_" + relation

	a.mu.Lock()
	now := a.now()
	if last, ok := a.last[key]; ok && now.Sub(last) < constants.AnnounceInterval {
		a.mu.Unlock()
		return false
	}
	a.last[key] = now
	a.mu.Unlock()

	message := name + ", " + relation + " Anda"
	var err error
	if done != nil {
		err = a.speaker.SpeakThen(message, done)
	} else {
		err = a.speaker.Speak(message)
	}
	if err != nil {
		log.Printf("announcement failed: %v", err)
	}
	return true
}

// Forget clears the rate-limit record for one person.
func (a *Announcer) Forget(name, relation string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.last, name+"_"+relation)
}

// Reset clears all rate-limit records and stops any ongoing speech. Called
// when a detection session stops or restarts.
func (a *Announcer) Reset() {
	a.mu.Lock()
	a.last = make(map[string]time.Time)
	a.mu.Unlock()
	a.speaker.Stop()
}
