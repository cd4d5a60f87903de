// Package synth turns tones into positioned, enveloped oscillator voices on
// an audio context.
package synth

import (
	"fmt"
	"math"
	"time"

	"github.com/cbegin/quizsfx-go/internal/audio"
	"github.com/cbegin/quizsfx-go/internal/lfo"
	"github.com/cbegin/quizsfx-go/internal/spatial"
)

// Params are the voice-shaping constants shared by every tone.
type Params struct {
	// Headroom scales tone volume to peak gain so stacked voices stay
	// below full scale.
	Headroom float64
	Attack   time.Duration
	// Floor is the level the exponential decay reaches at the tone's end.
	Floor        float64
	VibratoDepth float64 // Hz
	VibratoRate  float64 // Hz
}

func DefaultParams() Params {
	return Params{
		Headroom:     0.1,
		Attack:       10 * time.Millisecond,
		Floor:        0.001,
		VibratoDepth: 10,
		VibratoRate:  5,
	}
}

// Tone is one oscillator burst.
type Tone struct {
	SoundID   string
	Note      int
	Frequency float64
	Waveform  Waveform
	Duration  time.Duration
	// Volume is the final linear volume (base × intensity × master).
	Volume  float64
	Vibrato bool
}

func (t Tone) validate() error {
	if !(t.Frequency > 0) || math.IsInf(t.Frequency, 0) {
		return fmt.Errorf("tone %s#%d: invalid frequency %v", t.SoundID, t.Note, t.Frequency)
	}
	if t.Duration <= 0 {
		return fmt.Errorf("tone %s#%d: non-positive duration %v", t.SoundID, t.Note, t.Duration)
	}
	if !t.Waveform.Valid() {
		return fmt.Errorf("tone %s#%d: invalid waveform %v", t.SoundID, t.Note, t.Waveform)
	}
	return nil
}

// Voice renders one tone. Without a routed stage the mono signal goes to both
// channels unchanged.
type Voice struct {
	osc        oscillator
	freq       float64
	vibrato    *lfo.LFO
	env        *Envelope
	stage      spatial.Stage
	sampleRate float64
	frame      int
	frames     int
}

// NewVoice builds the node for t. t must already be valid.
func NewVoice(sampleRate int, t Tone, p Params) *Voice {
	sr := float64(sampleRate)
	v := &Voice{
		osc:        oscillator{wave: t.Waveform},
		freq:       t.Frequency,
		env:        NewEnvelope(math.Max(t.Volume, 0)*p.Headroom, p.Floor, p.Attack.Seconds(), t.Duration.Seconds()),
		sampleRate: sr,
		frames:     int(math.Round(t.Duration.Seconds() * sr)),
	}
	if t.Vibrato {
		v.vibrato = lfo.New(p.VibratoDepth, p.VibratoRate, lfo.WaveSine)
	}
	return v
}

// Route implements spatial.Routable.
func (v *Voice) Route(s spatial.Stage) { v.stage = s }

// Render implements audio.Node.
func (v *Voice) Render(dst []float32) bool {
	for i := 0; i+1 < len(dst); i += 2 {
		if v.frame >= v.frames {
			return false
		}
		freq := v.freq
		if v.vibrato != nil {
			freq += v.vibrato.Sample(v.sampleRate)
		}
		x := v.osc.next(freq, v.sampleRate) * v.env.At(float64(v.frame)/v.sampleRate)
		l, r := x, x
		if v.stage != nil {
			l, r = v.stage.Process(x)
		}
		dst[i] += float32(l)
		dst[i+1] += float32(r)
		v.frame++
	}
	return v.frame < v.frames
}

// Synthesizer starts positioned voices on a context.
type Synthesizer struct {
	ctx        *audio.Context
	positioner *spatial.Positioner
	params     Params
}

func New(ctx *audio.Context, positioner *spatial.Positioner, params Params) *Synthesizer {
	return &Synthesizer{ctx: ctx, positioner: positioner, params: params}
}

func (s *Synthesizer) Params() Params { return s.params }

// Synthesize starts t at pos now. The voice stops itself after t.Duration;
// onEnded runs when it does.
func (s *Synthesizer) Synthesize(t Tone, pos spatial.Position, onEnded func(*audio.Voice)) (*audio.Voice, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	node := NewVoice(s.ctx.SampleRate(), t, s.params)
	if s.positioner != nil {
		s.positioner.Position(node, pos)
	}
	meta := audio.Meta{
		SoundID:   t.SoundID,
		Note:      t.Note,
		Frequency: t.Frequency,
		Waveform:  t.Waveform.String(),
		Volume:    t.Volume,
		Position:  pos,
		Vibrato:   t.Vibrato,
	}
	return s.ctx.Start(meta, node, t.Duration, onEnded)
}
