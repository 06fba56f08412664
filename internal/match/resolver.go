package match

import (
	"context"
	"log"

	"github.com/hpratama/ingatan/internal/constants"
	"github.com/hpratama/ingatan/internal/detector"
	"github.com/hpratama/ingatan/internal/registry"
)

// LazyResolver derives descriptors for people registered without one
// (caregiver-uploaded portraits). It is tried only after the main matcher
// misses, so the common case stays cheap; each attempt costs one detector
// pass per unresolved candidate.
type LazyResolver struct {
	detector detector.Detector
	registry *registry.Registry
}

// NewLazyResolver creates a resolver over the given detector and registry.
func NewLazyResolver(det detector.Detector, reg *registry.Registry) *LazyResolver {
	return &LazyResolver{detector: det, registry: reg}
}

// Resolve runs the stored portrait of each unresolved person through the
// detector and compares the derived descriptor against the observed one. On a
// hit the descriptor is persisted onto the person (one-time backfill) and the
// person is returned as the match. Detector failures and faceless portraits
// are logged and skipped; the person stays unresolved and is retried on a
// future miss.
func (r *LazyResolver) Resolve(ctx context.Context, observed []float32) (*registry.Person, error) {
	if len(observed) == 0 {
		return nil, nil
	}
	for _, p := range r.registry.People() {
		if p.Resolved() || len(p.Portrait) == 0 {
			continue
		}

		det, err := r.detector.DetectPortrait(ctx, p.Portrait)
		if err != nil {
			log.Printf("portrait detection failed for %s: %v", p.Name, err)
			continue
		}
		if det == nil {
			log.Printf("no face found in portrait of %s, will retry later", p.Name)
			continue
		}

		if EuclideanDistance(observed, det.Embedding) >= constants.PortraitDistanceThreshold {
			continue
		}

		if err := r.registry.ResolveDescriptor(p.ID, det.Embedding); err != nil {
			log.Printf("failed to persist descriptor for %s: %v", p.Name, err)
		} else {
			log.Printf("resolved descriptor for %s from stored portrait", p.Name)
		}
		matched := r.registry.Get(p.ID)
		if matched == nil {
			matched = &p
		}
		return matched, nil
	}
	return nil, nil
}
