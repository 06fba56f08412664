package match

import (
	"time"

	"github.com/hpratama/ingatan/internal/constants"
)

type observation struct {
	personID string
	at       time.Time
}

// History damps frame-to-frame label flicker. It is keyed by the detector's
// per-frame slot index, which is only a rough continuity hint: a person who
// leaves and re-enters the frame lands on a fresh slot and re-earns their
// label from an empty window.
type History struct {
	window int
	slots  map[int][]observation
}

// NewHistory creates a tracker with the default window length.
func NewHistory() *History {
	return &History{window: constants.HistoryWindow, slots: make(map[int][]observation)}
}

// Observe records a raw match for a slot and returns the stabilized person id
// for that slot: the most frequent id in the retained window, with ties going
// to the id just observed. The returned id is the label to display and
// announce, which is not necessarily this frame's raw match.
func (h *History) Observe(slot int, personID string, now time.Time) string {
	obs := append(h.slots[slot], observation{personID: personID, at: now})
	if len(obs) > h.window {
		obs = obs[len(obs)-h.window:]
	}
	h.slots[slot] = obs

	counts := make(map[string]int, len(obs))
	maxCount := 0
	for _, o := range obs {
		counts[o.personID]++
		if counts[o.personID] > maxCount {
			maxCount = counts[o.personID]
		}
	}

	// Walk newest to oldest so a tied count goes to the most recently
	// observed id, the just-observed one first of all.
	for i := len(obs) - 1; i >= 0; i-- {
		if counts[obs[i].personID] == maxCount {
			return obs[i].personID
		}
	}
	return personID
}

// ClearSlot drops a slot's window. Called the moment a slot stops matching:
// a disappearance is trusted instantly, a reappearance must re-earn frequency.
func (h *History) ClearSlot(slot int) {
	delete(h.slots, slot)
}

// Reset drops all per-slot history. Called when a detection session stops.
func (h *History) Reset() {
	h.slots = make(map[int][]observation)
}

// SlotLen reports the retained window length for a slot.
func (h *History) SlotLen(slot int) int {
	return len(h.slots[slot])
}
