package speech

import (
	"errors"
	"testing"
)

// fakeEngine records lifecycle calls and exposes the fragment callback so a
// test can feed transcripts.
type fakeEngine struct {
	onFragment func(text string, final bool)
	startErr   error
	starts     int
	stops      int
}

func (e *fakeEngine) Start(onFragment func(text string, final bool)) error {
	if e.startErr != nil {
		return e.startErr
	}
	e.starts++
	e.onFragment = onFragment
	return nil
}

func (e *fakeEngine) Stop() { e.stops++ }

func TestListener_DeliversIntroduction(t *testing.T) {
	engine := &fakeEngine{}
	l := NewListener(engine)

	var got *Introduction
	if err := l.Start(func(intro Introduction) { got = &intro }); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Two final fragments form one utterance; interim fragments are ignored.
	engine.onFragment("nama saya", false)
	engine.onFragment("Nama saya Budi,", true)
	engine.onFragment("anak Anda", true)
	l.flushUtterance()

	if got == nil {
		t.Fatal("expected an introduction")
	}
	if got.Name != "Budi" || got.Relation != "Anak" {
		t.Errorf("got (%s, %s), want (Budi, Anak)", got.Name, got.Relation)
	}
}

func TestListener_NoEngine(t *testing.T) {
	l := NewListener(nil)
	if err := l.Start(func(Introduction) {}); err == nil {
		t.Error("expected error without an engine")
	}
	if l.Active() {
		t.Error("listener must not report active after a failed start")
	}
}

func TestListener_StartFailure(t *testing.T) {
	engine := &fakeEngine{startErr: errors.New("no microphone")}
	l := NewListener(engine)

	if err := l.Start(func(Introduction) {}); err == nil {
		t.Error("expected engine start error to propagate")
	}
	if l.Active() {
		t.Error("listener must not report active after a failed start")
	}
}

func TestListener_StartIsIdempotent(t *testing.T) {
	engine := &fakeEngine{}
	l := NewListener(engine)

	l.Start(func(Introduction) {})
	l.Start(func(Introduction) {})

	if engine.starts != 1 {
		t.Errorf("expected one engine start, got %d", engine.starts)
	}
}

func TestListener_StopDiscardsBuffer(t *testing.T) {
	engine := &fakeEngine{}
	l := NewListener(engine)

	delivered := false
	l.Start(func(Introduction) { delivered = true })
	engine.onFragment("Nama saya Budi, anak Anda", true)
	l.Stop()
	l.flushUtterance()

	if delivered {
		t.Error("stopped listener must not deliver a buffered utterance")
	}
	if engine.stops != 1 {
		t.Errorf("expected engine stopped once, got %d", engine.stops)
	}
	if l.Active() {
		t.Error("expected inactive after stop")
	}
}

func TestListener_PauseResume(t *testing.T) {
	engine := &fakeEngine{}
	l := NewListener(engine)

	l.Start(func(Introduction) {})
	l.Pause()
	if !l.Active() {
		t.Error("pause must keep the session active")
	}
	if engine.stops != 1 {
		t.Errorf("expected engine stopped on pause, got %d stops", engine.stops)
	}

	l.Resume()
	if engine.starts != 2 {
		t.Errorf("expected engine restarted on resume, got %d starts", engine.starts)
	}

	// Resume after stop is a no-op.
	l.Stop()
	l.Resume()
	if engine.starts != 2 {
		t.Error("resume after stop must not restart the engine")
	}
}

func TestListener_UnrecognizedUtteranceNotDelivered(t *testing.T) {
	engine := &fakeEngine{}
	l := NewListener(engine)

	delivered := false
	l.Start(func(Introduction) { delivered = true })
	engine.onFragment("cuacanya bagus hari ini", true)
	l.flushUtterance()

	if delivered {
		t.Error("non-introduction speech must not reach the callback")
	}
}
