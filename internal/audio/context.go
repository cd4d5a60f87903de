package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/cbegin/quizsfx-go/internal/clock"
	"github.com/cbegin/quizsfx-go/internal/effects"
	"github.com/cbegin/quizsfx-go/internal/spatial"
)

// State is the processing context's run state.
type State int

const (
	StateRunning State = iota
	StateSuspended
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Node is a source connected to the master bus.
type Node interface {
	// Render mixes len(dst)/2 stereo frames into dst and reports whether the
	// node has samples left to produce.
	Render(dst []float32) bool
}

// Meta describes what a voice is playing.
type Meta struct {
	SoundID   string
	Note      int // index within the cue
	Frequency float64
	Waveform  string
	Volume    float64
	Position  spatial.Position
	Vibrato   bool
}

// Voice is one in-flight node on the context. It retires itself when its
// stop time elapses.
type Voice struct {
	id        uint64
	meta      Meta
	startedAt time.Time
	stopAt    time.Time
	node      Node
	drained   bool
	timer     clock.Timer
	onEnded   func(*Voice)
}

func (v *Voice) ID() uint64           { return v.id }
func (v *Voice) Meta() Meta           { return v.meta }
func (v *Voice) StartedAt() time.Time { return v.startedAt }
func (v *Voice) StopAt() time.Time    { return v.stopAt }
func (v *Voice) Duration() time.Duration {
	return v.stopAt.Sub(v.startedAt)
}

type Config struct {
	SampleRate int
	Backend    Backend
	// Sink overrides Backend when set.
	Sink    SinkFactory
	Clock   clock.Clock
	Effects *effects.Chain
	EQ      *effects.EQ5Band
}

// Context owns the output sink, the set of active voices and the master bus
// (effects chain, EQ and a hard ceiling).
type Context struct {
	mu         sync.Mutex
	sampleRate int
	clock      clock.Clock
	sink       Sink
	state      State
	voices     []*Voice
	nextID     uint64
	effects    *effects.Chain
	eq         *effects.EQ5Band
}

// NewContext opens the output sink and starts it. Any failure to obtain
// output is reported as *UnavailableError.
func NewContext(cfg Config) (*Context, error) {
	if cfg.SampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	factory := cfg.Sink
	if factory == nil {
		f, err := cfg.Backend.Factory()
		if err != nil {
			return nil, &UnavailableError{Backend: cfg.Backend, Err: err}
		}
		factory = f
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	c := &Context{
		sampleRate: cfg.SampleRate,
		clock:      clk,
		effects:    cfg.Effects,
		eq:         cfg.EQ,
	}
	sink, err := factory(cfg.SampleRate, c)
	if err != nil {
		return nil, &UnavailableError{Backend: cfg.Backend, Err: err}
	}
	if err := sink.Play(); err != nil {
		_ = sink.Close()
		return nil, &UnavailableError{Backend: cfg.Backend, Err: err}
	}
	c.sink = sink
	return c, nil
}

func (c *Context) SampleRate() int { return c.sampleRate }

// Now is the context's current time.
func (c *Context) Now() time.Time { return c.clock.Now() }

func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start connects node to the master bus now and schedules its automatic stop
// after d. onEnded, if set, runs once when the voice retires or is stopped.
func (c *Context) Start(meta Meta, node Node, d time.Duration, onEnded func(*Voice)) (*Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return nil, ErrClosed
	}
	c.nextID++
	now := c.clock.Now()
	v := &Voice{
		id:        c.nextID,
		meta:      meta,
		startedAt: now,
		stopAt:    now.Add(d),
		node:      node,
		onEnded:   onEnded,
	}
	c.voices = append(c.voices, v)
	v.timer = c.clock.AfterFunc(d, func() { c.retire(v) })
	return v, nil
}

func (c *Context) retire(v *Voice) {
	c.mu.Lock()
	removed := false
	for i, cur := range c.voices {
		if cur == v {
			c.voices = append(c.voices[:i], c.voices[i+1:]...)
			removed = true
			break
		}
	}
	c.mu.Unlock()
	if removed && v.onEnded != nil {
		v.onEnded(v)
	}
}

// Voices returns a snapshot of the active voices in start order.
func (c *Context) Voices() []*Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Voice, len(c.voices))
	copy(out, c.voices)
	return out
}

// StopAll force-stops every active voice and returns how many were stopped.
func (c *Context) StopAll() int {
	c.mu.Lock()
	stopped := c.voices
	c.voices = nil
	for _, v := range stopped {
		if v.timer != nil {
			v.timer.Stop()
		}
	}
	c.mu.Unlock()
	for _, v := range stopped {
		if v.onEnded != nil {
			v.onEnded(v)
		}
	}
	return len(stopped)
}

// Suspend pauses output. Voices keep their schedule but render silence.
// The sink is paused without holding the context lock, since a device may
// pull samples synchronously from Play or Pause.
func (c *Context) Suspend() error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	case StateSuspended:
		c.mu.Unlock()
		return nil
	}
	c.state = StateSuspended
	c.mu.Unlock()

	if err := c.sink.Pause(); err != nil {
		c.restore(StateSuspended, StateRunning)
		return err
	}
	return nil
}

func (c *Context) Resume() error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	case StateRunning:
		c.mu.Unlock()
		return nil
	}
	c.state = StateRunning
	c.mu.Unlock()

	if err := c.sink.Play(); err != nil {
		c.restore(StateRunning, StateSuspended)
		return err
	}
	return nil
}

// restore undoes a state transition whose sink call failed, unless the
// context moved on (e.g. was closed) in the meantime.
func (c *Context) restore(from, to State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == from {
		c.state = to
	}
}

// Close stops every voice and releases the sink. Closing twice is a no-op.
func (c *Context) Close() error {
	c.StopAll()
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	c.mu.Unlock()
	return c.sink.Close()
}

// Process renders the master bus. It implements SampleSource for the sink.
func (c *Context) Process(dst []float32) {
	clear(dst)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return
	}
	for _, v := range c.voices {
		if v.drained {
			continue
		}
		if !v.node.Render(dst) {
			v.drained = true
		}
	}
	for i := 0; i+1 < len(dst); i += 2 {
		l, r := dst[i], dst[i+1]
		if c.effects != nil {
			l, r = c.effects.Process(l, r)
		}
		if c.eq != nil {
			l, r = c.eq.Process(l, r)
		}
		dst[i], dst[i+1] = ceiling(l), ceiling(r)
	}
}

func ceiling(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
