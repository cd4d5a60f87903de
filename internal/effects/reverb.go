package effects

// Reverb is a small Schroeder room: four comb filters per channel feeding two
// allpass stages. The right channel uses slightly longer delays so the tail
// decorrelates instead of collapsing positioned cues to the centre.
type Reverb struct {
	left, right room
	wet         float32
}

type room struct {
	combs   [4]delayLine
	allpass [2]delayLine
}

type delayLine struct {
	buf []float32
	pos int
	fb  float32
}

// NewReverb creates a reverb effect.
// roomSize: 0..1 controls delay lengths
// feedback: 0..1 controls decay time
// wet: wet/dry mix 0..1
func NewReverb(sampleRate int, roomSize, feedback, wet float32) *Reverb {
	base := int(float32(sampleRate) * clamp(roomSize, 0, 1) * 0.05)
	if base < 10 {
		base = 10
	}
	fb := clamp(feedback, 0, 0.95)
	return &Reverb{
		left:  newRoom(base, fb),
		right: newRoom(base+base/43+1, fb),
		wet:   clamp(wet, 0, 1),
	}
}

func newRoom(base int, fb float32) room {
	var rm room
	combLens := [4]int{base, base * 1117 / 1000, base * 1271 / 1000, base * 1437 / 1000}
	for i := range rm.combs {
		rm.combs[i] = delayLine{buf: make([]float32, combLens[i]), fb: fb}
	}
	apLens := [2]int{base * 347 / 1000, base * 213 / 1000}
	for i := range rm.allpass {
		rm.allpass[i] = delayLine{buf: make([]float32, max(apLens[i], 1)), fb: 0.5}
	}
	return rm
}

func (r *Reverb) Process(l, rr float32) (float32, float32) {
	mono := (l + rr) * 0.5
	outL := r.left.process(mono)
	outR := r.right.process(mono)
	return l*(1-r.wet) + outL*r.wet, rr*(1-r.wet) + outR*r.wet
}

func (r *Reverb) Reset() {
	r.left.reset()
	r.right.reset()
}

func (rm *room) process(in float32) float32 {
	var out float32
	for i := range rm.combs {
		out += rm.combs[i].comb(in)
	}
	out *= 0.25
	for i := range rm.allpass {
		out = rm.allpass[i].allpass(out)
	}
	return out
}

func (rm *room) reset() {
	for i := range rm.combs {
		rm.combs[i].reset()
	}
	for i := range rm.allpass {
		rm.allpass[i].reset()
	}
}

func (d *delayLine) comb(in float32) float32 {
	out := d.buf[d.pos]
	d.buf[d.pos] = in + out*d.fb
	d.advance()
	return out
}

func (d *delayLine) allpass(in float32) float32 {
	bufOut := d.buf[d.pos]
	out := -in + bufOut
	d.buf[d.pos] = in + bufOut*d.fb
	d.advance()
	return out
}

func (d *delayLine) advance() {
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
}

func (d *delayLine) reset() {
	clear(d.buf)
	d.pos = 0
}
