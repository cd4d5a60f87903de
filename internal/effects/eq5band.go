package effects

import (
	"math"
	"sync/atomic"
)

// Bands of the master EQ.
const (
	BandLow     = iota // < 200 Hz
	BandLowMid         // 200-800 Hz
	BandMid            // 800 Hz - 2.5 kHz
	BandHighMid        // 2.5-8 kHz
	BandHigh           // > 8 kHz
	NumBands
)

const maxBandGain = 4

var crossovers = [NumBands - 1]float64{200, 800, 2500, 8000}

// EQ5Band is the master bus equalizer. Gains are float32 bit patterns so the
// audio goroutine reads them without locking.
type EQ5Band struct {
	gains  [NumBands]atomic.Uint32
	alphas [NumBands - 1]float32
	lpL    [NumBands - 1]float32
	lpR    [NumBands - 1]float32
}

// NewEQ5Band creates a 5-band EQ with all gains at unity.
func NewEQ5Band(sampleRate int) *EQ5Band {
	eq := &EQ5Band{}
	dt := 1.0 / float64(sampleRate)
	for i, freq := range crossovers {
		rc := 1.0 / (2.0 * math.Pi * freq)
		eq.alphas[i] = float32(dt / (rc + dt))
	}
	for i := range eq.gains {
		eq.gains[i].Store(math.Float32bits(1.0))
	}
	return eq
}

// SetGain sets a band's gain: 1.0 = unity, 0 = silence, clamped to [0, 4].
// Out-of-range bands are ignored.
func (eq *EQ5Band) SetGain(band int, gain float32) {
	if band < 0 || band >= NumBands {
		return
	}
	if gain != gain { // NaN
		gain = 1
	}
	eq.gains[band].Store(math.Float32bits(clamp(gain, 0, maxBandGain)))
}

// Gain returns a band's gain, or 1.0 for an out-of-range band.
func (eq *EQ5Band) Gain(band int) float32 {
	if band < 0 || band >= NumBands {
		return 1.0
	}
	return math.Float32frombits(eq.gains[band].Load())
}

// Flat reports whether every band is at unity.
func (eq *EQ5Band) Flat() bool {
	for i := range eq.gains {
		if math.Float32frombits(eq.gains[i].Load()) != 1 {
			return false
		}
	}
	return true
}

func (eq *EQ5Band) Process(l, r float32) (float32, float32) {
	if eq.Flat() {
		return l, r
	}
	var outL, outR float32
	remL, remR := l, r
	for i := range eq.alphas {
		eq.lpL[i] += eq.alphas[i] * (remL - eq.lpL[i])
		eq.lpR[i] += eq.alphas[i] * (remR - eq.lpR[i])
		g := eq.Gain(i)
		outL += eq.lpL[i] * g
		outR += eq.lpR[i] * g
		remL -= eq.lpL[i]
		remR -= eq.lpR[i]
	}
	g := eq.Gain(BandHigh)
	return outL + remL*g, outR + remR*g
}

func (eq *EQ5Band) Reset() {
	clear(eq.lpL[:])
	clear(eq.lpR[:])
}
