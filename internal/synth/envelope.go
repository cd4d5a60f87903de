package synth

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Envelope is the gain curve of one tone: a linear rise from silence to peak
// over the attack, then an exponential fall to the floor at the tone's end.
// When peak is at or below the floor the fall is linear to zero instead.
type Envelope struct {
	attack *gween.Tween
	decay  *gween.Tween
	rise   float32 // seconds
	total  float32 // seconds
}

// NewEnvelope builds an envelope lasting total seconds. attack is clamped to
// total.
func NewEnvelope(peak, floor, attack, total float64) *Envelope {
	if total < 0 {
		total = 0
	}
	attack = math.Min(math.Max(attack, 0), total)
	e := &Envelope{rise: float32(attack), total: float32(total)}
	e.attack = gween.New(0, float32(peak), e.rise, ease.Linear)
	if peak > floor && floor > 0 {
		e.decay = gween.New(float32(peak), float32(floor), e.total-e.rise, exponentialRamp)
	} else {
		e.decay = gween.New(float32(peak), 0, e.total-e.rise, ease.Linear)
	}
	return e
}

// At returns the gain t seconds after the tone started. Outside [0, total] the
// tone is silent.
func (e *Envelope) At(t float64) float64 {
	ts := float32(t)
	switch {
	case ts < 0 || ts > e.total:
		return 0
	case ts < e.rise:
		v, _ := e.attack.Set(ts)
		return float64(v)
	default:
		v, _ := e.decay.Set(ts - e.rise)
		return float64(v)
	}
}

func (e *Envelope) Duration() float64 { return float64(e.total) }

// exponentialRamp moves from b to b+c along a constant-ratio curve. Both ends
// must be positive.
func exponentialRamp(t, b, c, d float32) float32 {
	end := b + c
	if d <= 0 || b <= 0 || end <= 0 {
		return ease.Linear(t, b, c, d)
	}
	return b * float32(math.Pow(float64(end/b), float64(t/d)))
}
