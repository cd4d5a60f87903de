package lfo

import "math"

// Waveform selects the modulator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSquare
	WaveSaw
)

// LFO is a low-frequency oscillator that produces per-sample modulation.
// Each voice owns its own LFO so vibrato phase starts at zero with the note.
type LFO struct {
	depth    float64 // modulation depth in the caller's units (Hz for vibrato)
	rateHz   float64
	waveform Waveform
	phase    float64 // [0, 1)
}

// New returns an LFO configured with Set.
func New(depth, rateHz float64, waveform Waveform) *LFO {
	l := &LFO{}
	l.Set(depth, rateHz, waveform)
	return l
}

// Set configures the LFO parameters. Unknown waveforms fall back to sine.
func (l *LFO) Set(depth, rateHz float64, waveform Waveform) {
	l.depth = depth
	l.rateHz = rateHz
	if waveform < WaveSine || waveform > WaveSaw {
		waveform = WaveSine
	}
	l.waveform = waveform
}

// Sample advances the LFO by one sample and returns a value in [-depth, +depth].
// Returns 0 if depth or rate is zero.
func (l *LFO) Sample(sampleRate float64) float64 {
	if l.depth == 0 || l.rateHz == 0 || sampleRate == 0 {
		return 0
	}

	var waveVal float64
	switch l.waveform {
	case WaveSaw:
		waveVal = 1.0 - 2.0*l.phase
	case WaveSquare:
		if l.phase < 0.5 {
			waveVal = 1.0
		} else {
			waveVal = -1.0
		}
	case WaveTriangle:
		// starts at zero and rises, like sine
		switch {
		case l.phase < 0.25:
			waveVal = 4.0 * l.phase
		case l.phase < 0.75:
			waveVal = 2.0 - 4.0*l.phase
		default:
			waveVal = 4.0*l.phase - 4.0
		}
	default:
		waveVal = math.Sin(2 * math.Pi * l.phase)
	}

	l.phase += l.rateHz / sampleRate
	for l.phase >= 1.0 {
		l.phase -= 1.0
	}
	return waveVal * l.depth
}

// Active returns true if the LFO has non-zero depth and rate.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0
}

// Reset zeros the LFO phase.
func (l *LFO) Reset() {
	l.phase = 0
}
