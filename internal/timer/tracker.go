package timer

import (
	"math"
	"time"
)

// Sample is one reading of a countdown. Expired is set on exactly one sample:
// the first one whose remaining time reaches zero.
type Sample struct {
	Anchor    time.Time     `json:"anchor"`
	Remaining time.Duration `json:"remaining"`
	Expired   bool          `json:"expired"`
}

// Tracker derives remaining time from an absolute anchor. Every reading is
// recomputed from the supplied clock value, so late or irregular readings
// never accumulate drift.
type Tracker struct {
	anchor time.Time
	fired  bool
}

func NewTracker(anchor time.Time) *Tracker {
	return &Tracker{anchor: anchor}
}

func (t *Tracker) Anchor() time.Time { return t.anchor }

// Done reports whether expiry has already been signalled.
func (t *Tracker) Done() bool { return t.fired }

func (t *Tracker) Sample(now time.Time) Sample {
	remaining := t.anchor.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	s := Sample{Anchor: t.anchor, Remaining: remaining}
	if remaining == 0 && !t.fired {
		t.fired = true
		s.Expired = true
	}
	return s
}

// Seconds rounds remaining time up to whole seconds for display.
func Seconds(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Seconds()))
}

// Progress is the elapsed share of total, clamped to [0, 1].
func Progress(remaining, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	p := 1 - float64(remaining)/float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
