// Package syncsvc periodically merges caregiver-approved people from the
// relay into the local registry.
package syncsvc

import (
	"context"
	"log"
	"time"

	"github.com/hpratama/ingatan/internal/constants"
	"github.com/hpratama/ingatan/internal/registry"
	"github.com/hpratama/ingatan/internal/relay"
)

// ApprovedLister is the slice of the relay client the sync service needs.
type ApprovedLister interface {
	ListApproved(ctx context.Context, subjectID string) ([]relay.ApprovedPerson, error)
}

// Service pulls the approved list on a fixed interval, once immediately on
// startup, and once shortly after every successful enrollment submission.
// The merge is idempotent and never deletes local entries: a reject only
// prevents promotion, it does not retract an already-synced approval.
type Service struct {
	client    ApprovedLister
	registry  *registry.Registry
	subjectID string
	interval  time.Duration

	trigger chan struct{}

	// onMerged, when set, runs after a sync that added people.
	onMerged func(added int)
}

// New creates a sync service. interval <= 0 falls back to the default.
func New(client ApprovedLister, reg *registry.Registry, subjectID string, interval time.Duration, onMerged func(added int)) *Service {
	if interval <= 0 {
		interval = constants.SyncInterval
	}
	return &Service{
		client:    client,
		registry:  reg,
		subjectID: subjectID,
		interval:  interval,
		trigger:   make(chan struct{}, 1),
		onMerged:  onMerged,
	}
}

// SyncOnce pulls the approved list and merges it. Returns the number of newly
// added people.
func (s *Service) SyncOnce(ctx context.Context) (int, error) {
	people, err := s.client.ListApproved(ctx, s.subjectID)
	if err != nil {
		return 0, err
	}

	entries := make([]registry.ApprovedEntry, 0, len(people))
	for _, p := range people {
		entries = append(entries, registry.ApprovedEntry{
			ServerID:   p.ID,
			Name:       p.Name,
			Relation:   p.Relation,
			Descriptor: p.Descriptor,
			Portrait:   p.ImageData,
			ApprovedAt: p.ApprovedAt,
		})
	}

	added, err := s.registry.MergeApproved(entries)
	if err != nil {
		return 0, err
	}
	if added > 0 {
		log.Printf("synced %d newly approved people", added)
		if s.onMerged != nil {
			s.onMerged(added)
		}
	}
	return added, nil
}

// TriggerSoon schedules an extra sync after the post-submission delay. The
// delay gives a caregiver sitting at the dashboard time to approve; it is a
// demo nicety, not a correctness requirement.
func (s *Service) TriggerSoon() {
	time.AfterFunc(constants.PostSubmitSyncDelay, func() {
		select {
		case s.trigger <- struct{}{}:
		default:
		}
	})
}

// Run syncs immediately, then on every tick or trigger until the context is
// cancelled. Failures are logged and skipped; the next tick retries, so no
// backoff is needed at this cadence.
func (s *Service) Run(ctx context.Context) {
	if _, err := s.SyncOnce(ctx); err != nil {
		log.Printf("initial sync failed: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.trigger:
		}
		if _, err := s.SyncOnce(ctx); err != nil {
			log.Printf("sync failed: %v", err)
		}
	}
}
