package syncsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hpratama/ingatan/internal/registry"
	"github.com/hpratama/ingatan/internal/relay"
)

type fakeLister struct {
	people []relay.ApprovedPerson
	err    error
	calls  int
}

func (f *fakeLister) ListApproved(ctx context.Context, subjectID string) ([]relay.ApprovedPerson, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.people, nil
}

func newSyncRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(registry.NewMemoryStore(nil))
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	return reg
}

func TestSyncOnce_MergesApproved(t *testing.T) {
	reg := newSyncRegistry(t)
	lister := &fakeLister{people: []relay.ApprovedPerson{
		{ID: "s1", Name: "Budi", Relation: "anak", Descriptor: []float32{1}, ApprovedAt: time.Now()},
		{ID: "s2", Name: "Siti", Relation: "istri", ImageData: []byte("portrait")},
	}}

	var merged int
	svc := New(lister, reg, "subject_1", time.Second, func(added int) { merged = added })

	added, err := svc.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if added != 2 || merged != 2 {
		t.Errorf("expected 2 added, got %d (callback %d)", added, merged)
	}

	p := reg.Get("server_s1")
	if p == nil || p.Name != "Budi" || !p.Resolved() {
		t.Errorf("expected resolved Budi merged, got %v", p)
	}
	if p := reg.Get("server_s2"); p == nil || p.Resolved() || len(p.Portrait) == 0 {
		t.Error("expected Siti merged unresolved with her portrait")
	}
}

func TestSyncOnce_Idempotent(t *testing.T) {
	reg := newSyncRegistry(t)
	lister := &fakeLister{people: []relay.ApprovedPerson{{ID: "s1", Name: "Budi", Relation: "anak"}}}
	svc := New(lister, reg, "subject_1", time.Second, nil)

	svc.SyncOnce(context.Background())
	added, err := svc.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if added != 0 || reg.Len() != 1 {
		t.Errorf("expected no change on repeat sync, got %d added, %d people", added, reg.Len())
	}
}

func TestSyncOnce_ListFailure(t *testing.T) {
	reg := newSyncRegistry(t)
	lister := &fakeLister{err: errors.New("relay down")}
	svc := New(lister, reg, "subject_1", time.Second, nil)

	if _, err := svc.SyncOnce(context.Background()); err == nil {
		t.Error("expected error when the relay is unreachable")
	}
	if reg.Len() != 0 {
		t.Error("registry must be untouched on failure")
	}
}

func TestRun_SyncsImmediatelyAndOnTicks(t *testing.T) {
	reg := newSyncRegistry(t)
	lister := &fakeLister{}
	svc := New(lister, reg, "subject_1", 10*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	svc.Run(ctx)

	// One startup sync plus a few ticks.
	if lister.calls < 3 {
		t.Errorf("expected several syncs, got %d", lister.calls)
	}
}
