package effects

// damping is the one-pole coefficient in the echo feedback path; each repeat
// comes back a little darker, like a slapback off a soft wall.
const damping = 0.3

// Delay is a stereo echo. Feedback may be sent to the opposite channel
// (cross = 1 is a full ping-pong).
type Delay struct {
	frames   []float32 // interleaved L/R ring
	pos      int
	feedback float32
	cross    float32
	wet      float32
	dampL    float32
	dampR    float32
}

// NewDelay takes the echo time in ms, feedback in [0, 0.95], cross and wet
// in [0, 1].
func NewDelay(sampleRate int, delayMs float64, feedback, cross, wet float32) *Delay {
	n := max(int(delayMs*float64(sampleRate)/1000.0), 1)
	return &Delay{
		frames:   make([]float32, 2*n),
		feedback: clamp(feedback, 0, 0.95),
		cross:    clamp(cross, 0, 1),
		wet:      clamp(wet, 0, 1),
	}
}

func (d *Delay) Process(l, r float32) (float32, float32) {
	echoL, echoR := d.frames[d.pos], d.frames[d.pos+1]
	d.dampL += (echoL - d.dampL) * (1 - damping)
	d.dampR += (echoR - d.dampR) * (1 - damping)

	keep := d.feedback * (1 - d.cross)
	swap := d.feedback * d.cross
	d.frames[d.pos] = l + d.dampL*keep + d.dampR*swap
	d.frames[d.pos+1] = r + d.dampR*keep + d.dampL*swap
	if d.pos += 2; d.pos == len(d.frames) {
		d.pos = 0
	}
	dry := 1 - d.wet
	return l*dry + echoL*d.wet, r*dry + echoR*d.wet
}

func (d *Delay) Reset() {
	clear(d.frames)
	d.pos = 0
	d.dampL, d.dampR = 0, 0
}
