package spatial

import "math"

const (
	speedOfSound = 343.0 // m/s
	ringSize     = 256   // power of two, covers the maximum ITD up to 192 kHz
	ringMask     = ringSize - 1

	openCutoff   = 20000.0 // Hz, unshadowed ear
	shadowCutoff = 1800.0  // Hz, far ear with the source at 90°
	rearCutoff   = 6000.0  // Hz, both ears with the source directly behind

	nearBoost = 0.25 // near-ear gain added at 90°
	farShadow = 0.55 // far-ear gain removed at 90°
)

// Stage converts a mono sample to a stereo pair.
type Stage interface {
	Process(x float64) (l, r float64)
}

// Routable is a voice whose mono output can be sent through a Stage.
type Routable interface {
	Route(Stage)
}

// Positioner builds panners for one sample rate and listener.
type Positioner struct {
	cfg        Config
	sampleRate float64
}

func NewPositioner(sampleRate int, cfg Config) *Positioner {
	if cfg.HeadRadius <= 0 {
		cfg.HeadRadius = DefaultConfig().HeadRadius
	}
	return &Positioner{cfg: cfg, sampleRate: float64(sampleRate)}
}

func (p *Positioner) Config() Config { return p.cfg }

// Position routes v through a panner placed at pos. The panner is returned so
// the caller can inspect its geometry.
func (p *Positioner) Position(v Routable, pos Position) *Panner {
	pan := p.NewPanner(pos)
	v.Route(pan)
	return pan
}

// NewPanner computes interaural time and level differences for pos. The
// source never moves after this, so all coefficients are fixed.
func (p *Positioner) NewPanner(pos Position) *Panner {
	az, el, dist := p.cfg.Locate(pos)
	// Lateral angle on the interaural axis, in [-π/2, π/2].
	lat := math.Asin(math.Max(-1, math.Min(1, math.Sin(az)*math.Cos(el))))
	side := math.Abs(math.Sin(lat))

	// Woodworth spherical-head ITD.
	itd := p.cfg.HeadRadius / speedOfSound * (math.Abs(lat) + side)
	lag := math.Min(itd*p.sampleRate, ringSize-2)

	gain := p.cfg.DistanceGain(dist)
	near := gain * (1 + nearBoost*side)
	far := gain * (1 - farShadow*side)

	nearCut := openCutoff
	farCut := logLerp(openCutoff, shadowCutoff, side)
	if back := -math.Cos(az) * math.Cos(el); back > 0 {
		rc := logLerp(openCutoff, rearCutoff, back)
		nearCut = math.Min(nearCut, rc)
		farCut = math.Min(farCut, rc)
	}

	pan := &Panner{azimuth: az, elevation: el, distance: dist, gain: gain}
	if lat >= 0 {
		// Source on the right: left ear is far.
		pan.delayL, pan.gainL, pan.alphaL = lag, far, p.alpha(farCut)
		pan.gainR, pan.alphaR = near, p.alpha(nearCut)
	} else {
		pan.delayR, pan.gainR, pan.alphaR = lag, far, p.alpha(farCut)
		pan.gainL, pan.alphaL = near, p.alpha(nearCut)
	}
	return pan
}

func logLerp(a, b, t float64) float64 {
	if t <= 0 {
		return a
	}
	return math.Exp(math.Log(a) + (math.Log(b)-math.Log(a))*t)
}

// alpha is the one-pole low-pass coefficient for cutoff; 1 is a bypass.
func (p *Positioner) alpha(cutoff float64) float64 {
	if cutoff >= p.sampleRate/2 || cutoff >= openCutoff {
		return 1
	}
	return 1 - math.Exp(-2*math.Pi*cutoff/p.sampleRate)
}

// Panner is a binaural stage for one static source.
type Panner struct {
	azimuth, elevation, distance float64
	gain                         float64

	gainL, gainR   float64
	delayL, delayR float64 // samples
	alphaL, alphaR float64
	lpL, lpR       float64

	ring [ringSize]float64
	pos  int
}

func (p *Panner) Azimuth() float64   { return p.azimuth }
func (p *Panner) Elevation() float64 { return p.elevation }
func (p *Panner) Distance() float64  { return p.distance }

// DistanceGain is the attenuation from the distance model alone.
func (p *Panner) DistanceGain() float64 { return p.gain }

// Gains returns the per-ear level after distance and head shadow.
func (p *Panner) Gains() (l, r float64) { return p.gainL, p.gainR }

// Delays returns the per-ear delay in samples.
func (p *Panner) Delays() (l, r float64) { return p.delayL, p.delayR }

func (p *Panner) Process(x float64) (l, r float64) {
	p.ring[p.pos] = x
	l = p.tap(p.delayL)
	r = p.tap(p.delayR)
	p.pos = (p.pos + 1) & ringMask
	p.lpL += p.alphaL * (l - p.lpL)
	p.lpR += p.alphaR * (r - p.lpR)
	return p.lpL * p.gainL, p.lpR * p.gainR
}

func (p *Panner) tap(d float64) float64 {
	if d <= 0 {
		return p.ring[p.pos]
	}
	whole := int(d)
	frac := d - float64(whole)
	a := p.ring[(p.pos-whole)&ringMask]
	b := p.ring[(p.pos-whole-1)&ringMask]
	return a + (b-a)*frac
}

func (p *Panner) Reset() {
	clear(p.ring[:])
	p.pos = 0
	p.lpL, p.lpR = 0, 0
}
