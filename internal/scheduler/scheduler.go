// Package scheduler turns play requests into timed tone bursts, consulting
// the engine state, the catalog and the governor in that order.
package scheduler

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cbegin/quizsfx-go/internal/audio"
	"github.com/cbegin/quizsfx-go/internal/catalog"
	"github.com/cbegin/quizsfx-go/internal/clock"
	"github.com/cbegin/quizsfx-go/internal/governor"
	"github.com/cbegin/quizsfx-go/internal/spatial"
	"github.com/cbegin/quizsfx-go/internal/state"
	"github.com/cbegin/quizsfx-go/internal/synth"
)

// maxVolume caps base × intensity × master so a runaway intensity cannot
// drive the bus into the ceiling limiter.
const maxVolume = 4.0

// Outcome reports what Play did with a request.
type Outcome int

const (
	Played Outcome = iota
	Disabled
	Unknown
	Unavailable
	Suspended
	// ShutDown: the engine was shut down and not re-initialized.
	ShutDown
	Throttled
	Busy
	Redundant
	Deferred
)

func (o Outcome) String() string {
	switch o {
	case Played:
		return "played"
	case Disabled:
		return "disabled"
	case Unknown:
		return "unknown"
	case Unavailable:
		return "unavailable"
	case Suspended:
		return "suspended"
	case ShutDown:
		return "shut down"
	case Throttled:
		return "throttled"
	case Busy:
		return "busy"
	case Redundant:
		return "redundant"
	case Deferred:
		return "deferred"
	}
	return "unknown outcome"
}

// Request asks for one cue. Position, when set, overrides every note's
// catalog position.
type Request struct {
	ID        string
	Intensity float64
	Position  *spatial.Position
}

type Config struct {
	Catalog    *catalog.Catalog
	State      *state.State
	Governor   *governor.Governor
	Positioner func(sampleRate int) *spatial.Positioner
	Synth      synth.Params
	Clock      clock.Clock
	Logger     *slog.Logger
	// OnVoice observes every started voice. It runs with the scheduler lock
	// held and must not call back into the scheduler.
	OnVoice func(*audio.Voice)
}

type Scheduler struct {
	mu       sync.Mutex
	cfg      Config
	clock    clock.Clock
	logger   *slog.Logger
	synth    *synth.Synthesizer
	synthCtx *audio.Context
	pending  map[uint64]clock.Timer
	nextKey  uint64
}

func New(cfg Config) *Scheduler {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		cfg:     cfg,
		clock:   clk,
		logger:  logger,
		pending: make(map[uint64]clock.Timer),
	}
}

// Play runs a request through the enabled flag, catalog, engine state and
// governor, then starts the cue's first note and schedules the rest.
func (s *Scheduler) Play(req Request) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.State.Enabled() {
		return Disabled
	}
	recipe, err := s.cfg.Catalog.Lookup(req.ID)
	if err != nil {
		s.logger.Debug("ignoring unknown sound", "id", req.ID)
		return Unknown
	}
	ctx, err := s.cfg.State.EnsureRunning()
	if err != nil {
		return s.classify(req.ID, err)
	}
	d := s.cfg.Governor.Admit(governor.Request{
		ID:       recipe.ID,
		MustPlay: recipe.MustPlay,
		Window:   recipe.Span(),
		Replay:   func() bool { return s.replay(recipe, req) },
	})
	switch d {
	case governor.Redundant:
		return Redundant
	case governor.Throttled:
		return Throttled
	case governor.Busy:
		return Busy
	case governor.Deferred:
		return Deferred
	}
	s.dispatchLocked(ctx, recipe, req)
	return Played
}

func (s *Scheduler) classify(id string, err error) Outcome {
	var se *audio.SuspendedError
	switch {
	case errors.Is(err, state.ErrShutDown):
		s.logger.Debug("ignoring play after shutdown", "id", id)
		return ShutDown
	case errors.As(err, &se):
		s.logger.Warn("audio context suspended", "id", id, "err", err)
		return Suspended
	default:
		s.logger.Warn("audio unavailable", "id", id, "err", err)
		return Unavailable
	}
}

// replay dispatches a deferred request the governor has just admitted. It
// reports false when the engine can no longer sound it.
func (s *Scheduler) replay(recipe catalog.Recipe, req Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.State.Enabled() {
		s.logger.Debug("dropping deferred sound while disabled", "id", req.ID)
		return false
	}
	ctx, err := s.cfg.State.EnsureRunning()
	if err != nil {
		s.classify(req.ID, err)
		return false
	}
	s.logger.Debug("replaying deferred sound", "id", req.ID)
	s.dispatchLocked(ctx, recipe, req)
	return true
}

func (s *Scheduler) dispatchLocked(ctx *audio.Context, recipe catalog.Recipe, req Request) {
	for i := range recipe.Frequencies {
		offset := time.Duration(i) * recipe.Spacing
		if offset == 0 {
			s.startNoteLocked(ctx, recipe, req, i)
			continue
		}
		s.nextKey++
		key := s.nextKey
		s.pending[key] = s.clock.AfterFunc(offset, func() { s.noteDue(key, recipe, req, i) })
	}
}

func (s *Scheduler) noteDue(key uint64, recipe catalog.Recipe, req Request, note int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[key]; !ok {
		return
	}
	delete(s.pending, key)
	ctx := s.cfg.State.Context()
	if ctx == nil {
		return
	}
	s.startNoteLocked(ctx, recipe, req, note)
}

func (s *Scheduler) startNoteLocked(ctx *audio.Context, recipe catalog.Recipe, req Request, note int) {
	if s.synthCtx != ctx {
		var pos *spatial.Positioner
		if s.cfg.Positioner != nil {
			pos = s.cfg.Positioner(ctx.SampleRate())
		}
		s.synth = synth.New(ctx, pos, s.cfg.Synth)
		s.synthCtx = ctx
	}
	tone := synth.Tone{
		SoundID:   recipe.ID,
		Note:      note,
		Frequency: recipe.Frequencies[note],
		Waveform:  recipe.Waveform,
		Duration:  recipe.Duration,
		Volume:    Volume(recipe.Volume, req.Intensity, s.cfg.State.MasterVolume()),
		Vibrato:   recipe.Vibrato,
	}
	v, err := s.synth.Synthesize(tone, recipe.PositionFor(note, req.Position), nil)
	if err != nil {
		s.logger.Warn("tone not started", "id", recipe.ID, "note", note, "err", err)
		return
	}
	if s.cfg.OnVoice != nil {
		s.cfg.OnVoice(v)
	}
}

// Volume is base × intensity × master, forced finite and within
// [0, maxVolume].
func Volume(base, intensity, master float64) float64 {
	v := base * intensity * master
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, maxVolume)
}

// CancelPending drops every note that has not started yet and returns how
// many were dropped.
func (s *Scheduler) CancelPending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelPendingLocked()
}

func (s *Scheduler) cancelPendingLocked() int {
	n := len(s.pending)
	for _, t := range s.pending {
		t.Stop()
	}
	clear(s.pending)
	return n
}

// Pending is the number of notes waiting for their start offset.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// StopAll silences every voice and drops pending notes without touching the
// lifecycle.
func (s *Scheduler) StopAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPendingLocked()
	if ctx := s.cfg.State.Context(); ctx != nil {
		return ctx.StopAll()
	}
	return 0
}

// Shutdown cancels pending notes, drops the deferred queue and closes the
// processing context.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPendingLocked()
	s.cfg.Governor.Reset()
	s.synth, s.synthCtx = nil, nil
	return s.cfg.State.Shutdown()
}
