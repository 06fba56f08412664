package match

import (
	"context"
	"errors"
	"testing"

	"github.com/hpratama/ingatan/internal/detector"
	"github.com/hpratama/ingatan/internal/registry"
)

// fakeDetector returns a canned detection keyed by portrait bytes.
type fakeDetector struct {
	portraits map[string]*detector.Detection
	err       error
	calls     int
}

func (f *fakeDetector) DetectFaces(ctx context.Context, imageData []byte) (*detector.FrameResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeDetector) DetectPortrait(ctx context.Context, imageData []byte) (*detector.Detection, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.portraits[string(imageData)], nil
}

func newTestRegistry(t *testing.T, people []registry.Person) *registry.Registry {
	t.Helper()
	reg, err := registry.New(registry.NewMemoryStore(people))
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	return reg
}

func TestLazyResolver_BackfillsDescriptor(t *testing.T) {
	reg := newTestRegistry(t, []registry.Person{
		{ID: "p1", Name: "Siti", Portrait: []byte("siti.jpg")},
	})
	det := &fakeDetector{portraits: map[string]*detector.Detection{
		"siti.jpg": {Embedding: []float32{1, 0, 0}},
	}}
	r := NewLazyResolver(det, reg)

	matched, err := r.Resolve(context.Background(), []float32{1.1, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched == nil || matched.ID != "p1" {
		t.Fatalf("expected p1 to resolve, got %v", matched)
	}

	// The descriptor is persisted: the main matcher sees it from now on.
	if p := reg.Get("p1"); p == nil || !p.Resolved() {
		t.Error("expected descriptor persisted on the registry")
	}
}

func TestLazyResolver_RejectsDistantPortrait(t *testing.T) {
	reg := newTestRegistry(t, []registry.Person{
		{ID: "p1", Name: "Siti", Portrait: []byte("siti.jpg")},
	})
	det := &fakeDetector{portraits: map[string]*detector.Detection{
		"siti.jpg": {Embedding: []float32{5, 0, 0}},
	}}
	r := NewLazyResolver(det, reg)

	matched, err := r.Resolve(context.Background(), []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched != nil {
		t.Fatalf("expected no match for a distant portrait, got %v", matched)
	}
	if p := reg.Get("p1"); p.Resolved() {
		t.Error("descriptor must not be persisted on a rejected comparison")
	}
}

func TestLazyResolver_SkipsResolvedAndPortraitless(t *testing.T) {
	reg := newTestRegistry(t, []registry.Person{
		{ID: "resolved", Descriptor: []float32{1, 0, 0}, Portrait: []byte("x")},
		{ID: "no-portrait"},
	})
	det := &fakeDetector{}
	r := NewLazyResolver(det, reg)

	if _, err := r.Resolve(context.Background(), []float32{1, 0, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if det.calls != 0 {
		t.Errorf("expected no detector calls, got %d", det.calls)
	}
}

func TestLazyResolver_DetectorFailureIsNonFatal(t *testing.T) {
	reg := newTestRegistry(t, []registry.Person{
		{ID: "p1", Portrait: []byte("bad.jpg")},
	})
	det := &fakeDetector{err: errors.New("server down")}
	r := NewLazyResolver(det, reg)

	matched, err := r.Resolve(context.Background(), []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("detector failure should be swallowed, got %v", err)
	}
	if matched != nil {
		t.Fatalf("expected no match, got %v", matched)
	}

	// The person stays unresolved and is retried on the next miss.
	det.err = nil
	det.portraits = map[string]*detector.Detection{
		"bad.jpg": {Embedding: []float32{1, 0, 0}},
	}
	matched, _ = r.Resolve(context.Background(), []float32{1, 0, 0})
	if matched == nil || matched.ID != "p1" {
		t.Errorf("expected retry to succeed, got %v", matched)
	}
}

func TestLazyResolver_EmptyObservedDescriptor(t *testing.T) {
	reg := newTestRegistry(t, []registry.Person{
		{ID: "p1", Portrait: []byte("x")},
	})
	det := &fakeDetector{}
	r := NewLazyResolver(det, reg)

	matched, err := r.Resolve(context.Background(), nil)
	if err != nil || matched != nil {
		t.Errorf("expected nil, nil for empty observation, got %v, %v", matched, err)
	}
}
