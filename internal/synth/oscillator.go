package synth

import (
	"fmt"
	"math"
	"strings"
)

// Waveform is the oscillator shape of a tone.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Triangle
	Sawtooth
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Sawtooth:
		return "sawtooth"
	}
	return fmt.Sprintf("waveform(%d)", int(w))
}

func (w Waveform) Valid() bool { return w >= Sine && w <= Sawtooth }

func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return Sine, nil
	case "square", "sq":
		return Square, nil
	case "triangle", "tri":
		return Triangle, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	}
	return 0, fmt.Errorf("invalid waveform %q (expected sine|square|triangle|sawtooth)", name)
}

type oscillator struct {
	wave  Waveform
	phase float64 // [0, 1)
}

// next advances the phase at freq and returns a sample in [-1, 1]. Square and
// sawtooth are band-limited with polyBLEP.
func (o *oscillator) next(freq, sampleRate float64) float64 {
	dt := freq / sampleRate
	if dt < 0 {
		dt = 0
	}
	var out float64
	switch o.wave {
	case Square:
		out = -1
		if o.phase < 0.5 {
			out = 1
		}
		out += polyBLEP(o.phase, dt)
		out -= polyBLEP(math.Mod(o.phase+0.5, 1), dt)
	case Triangle:
		// rises from zero like sine
		out = 2*math.Abs(2*math.Mod(o.phase+0.75, 1)-1) - 1
	case Sawtooth:
		out = 2*o.phase - 1
		out -= polyBLEP(o.phase, dt)
	default:
		out = math.Sin(2 * math.Pi * o.phase)
	}
	o.phase += dt
	for o.phase >= 1 {
		o.phase -= 1
	}
	return out
}

// polyBLEP reduces aliasing at waveform discontinuities.
// t is the phase position [0,1), dt is the phase increment per sample.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
