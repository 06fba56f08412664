package match

import (
	"github.com/hpratama/ingatan/internal/constants"
	"github.com/hpratama/ingatan/internal/registry"
)

// ClaimSet tracks which person ids have already been assigned to a detection
// in the current frame. The caller resets it at the start of every frame and
// processes detections in detector output order, so the first detection wins
// a contested identity.
type ClaimSet map[string]struct{}

func NewClaimSet() ClaimSet { return make(ClaimSet) }

func (c ClaimSet) Claim(id string) { c[id] = struct{}{} }

func (c ClaimSet) Claimed(id string) bool {
	_, ok := c[id]
	return ok
}

func (c ClaimSet) Reset() {
	for id := range c {
		delete(c, id)
	}
}

// DistanceFunc measures how far apart two descriptors are. Lower is closer.
type DistanceFunc func(a, b []float32) float64

// Metric pairs a distance function with the strict accept threshold below
// which a candidate counts as a match.
type Metric struct {
	Name      string
	Distance  DistanceFunc
	Threshold float64
}

// MetricByName selects the configured matching metric. Cosine distance is
// scale invariant, which suits descriptor models that ship unnormalized
// vectors. Anything unrecognized falls back to Euclidean.
func MetricByName(name string) Metric {
	if name == "cosine" {
		return Metric{Name: "cosine", Distance: CosineDistance, Threshold: constants.CosineMatchThreshold}
	}
	return Metric{Name: "euclidean", Distance: EuclideanDistance, Threshold: constants.MatchDistanceThreshold}
}

// BestMatch finds the closest known person for an observed descriptor.
// People already claimed this frame and people without a resolved descriptor
// are excluded. A candidate matches only when its distance is strictly below
// the metric's accept threshold; among accepted candidates the closest wins,
// and the first one examined wins an exact tie. Returns nil when nothing
// matches.
//
// BestMatch is pure: it never mutates the registry snapshot or the claim set.
func (m Metric) BestMatch(descriptor []float32, people []registry.Person, claimed ClaimSet) (*registry.Person, float64) {
	if len(people) == 0 {
		return nil, 0
	}

	var best *registry.Person
	minDistance := m.Threshold
	for i := range people {
		p := &people[i]
		if claimed.Claimed(p.ID) || !p.Resolved() {
			continue
		}
		if d := m.Distance(descriptor, p.Descriptor); d < minDistance {
			minDistance = d
			best = p
		}
	}
	if best == nil {
		return nil, 0
	}
	return best, minDistance
}

// BestMatch matches under the default Euclidean metric.
func BestMatch(descriptor []float32, people []registry.Person, claimed ClaimSet) (*registry.Person, float64) {
	return MetricByName("euclidean").BestMatch(descriptor, people, claimed)
}
