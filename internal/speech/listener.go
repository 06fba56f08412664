package speech

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/hpratama/ingatan/internal/constants"
)

// Engine is the platform speech-to-text boundary. It streams transcript
// fragments to the callback; final fragments are complete recognized chunks,
// non-final ones are interim guesses. Start fails when the platform has no
// recognizer or the microphone is unavailable; callers treat that as
// non-fatal and fall back to manual entry.
type Engine interface {
	Start(onFragment func(text string, final bool)) error
	Stop()
}

// Listener accumulates final transcript fragments from an Engine and, after a
// silence of UtterancePause, phrase-matches the accumulated utterance. A
// successful match is delivered once to the result callback; the buffer then
// resets for the next utterance.
type Listener struct {
	engine Engine

	mu        sync.Mutex
	active    bool
	utterance string
	flush     *time.Timer
	onResult  func(Introduction)
}

// NewListener creates a listener over the given engine.
func NewListener(engine Engine) *Listener {
	return &Listener{engine: engine}
}

// Start begins listening. Calling Start while already active is a no-op that
// keeps the existing result callback, matching how a single enrollment session
// reuses one microphone stream.
func (l *Listener) Start(onResult func(Introduction)) error {
	if l.engine == nil {
		return errors.New("no speech engine available")
	}

	l.mu.Lock()
	if l.active {
		l.mu.Unlock()
		return nil
	}
	l.active = true
	l.utterance = ""
	l.onResult = onResult
	l.mu.Unlock()

	if err := l.engine.Start(l.handleFragment); err != nil {
		l.mu.Lock()
		l.active = false
		l.mu.Unlock()
		return err
	}
	return nil
}

// Stop stops the engine and discards any buffered transcript.
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return
	}
	l.active = false
	l.utterance = ""
	if l.flush != nil {
		l.flush.Stop()
		l.flush = nil
	}
	l.mu.Unlock()

	l.engine.Stop()
}

// Pause releases the microphone without ending the enrollment session; the
// buffered utterance and result callback survive. Used while an announcement
// is being spoken so the recognizer does not transcribe our own voice.
func (l *Listener) Pause() {
	l.mu.Lock()
	active := l.active
	l.mu.Unlock()
	if active {
		l.engine.Stop()
	}
}

// Resume re-acquires the microphone after Pause.
func (l *Listener) Resume() {
	l.mu.Lock()
	active := l.active
	l.mu.Unlock()
	if !active {
		return
	}
	if err := l.engine.Start(l.handleFragment); err != nil {
		log.Printf("failed to resume speech listener: %v", err)
	}
}

// Active reports whether the listener is currently running.
func (l *Listener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// handleFragment receives transcript fragments from the engine. Final
// fragments extend the current utterance and re-arm the silence timer;
// interim fragments are ignored.
func (l *Listener) handleFragment(text string, final bool) {
	if !final {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}

	if l.utterance != "" {
		l.utterance += " "
	}
	l.utterance += text

	if l.flush != nil {
		l.flush.Stop()
	}
	l.flush = time.AfterFunc(constants.UtterancePause, l.flushUtterance)
}

// flushUtterance fires after the silence pause: the utterance is considered
// complete and is phrase-matched.
func (l *Listener) flushUtterance() {
	l.mu.Lock()
	text := l.utterance
	l.utterance = ""
	active := l.active
	onResult := l.onResult
	l.mu.Unlock()

	if !active || text == "" {
		return
	}

	intro := ExtractIntroduction(text)
	if intro == nil {
		log.Printf("no introduction recognized in %q", text)
		return
	}
	if onResult != nil {
		onResult(*intro)
	}
}
