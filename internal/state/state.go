// Package state holds the engine's mutable settings and the lifecycle of its
// processing context.
package state

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/cbegin/quizsfx-go/internal/audio"
)

// Phase is the lifecycle phase of the processing context.
type Phase int

const (
	Uninitialized Phase = iota
	Initializing
	Ready
	Suspended
	ShutDown
	// Unavailable is terminal: the host could not provide audio output.
	Unavailable
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Suspended:
		return "suspended"
	case ShutDown:
		return "shut down"
	case Unavailable:
		return "unavailable"
	}
	return "unknown"
}

// ErrShutDown is returned by EnsureRunning after Shutdown until Initialize is
// called again.
var ErrShutDown = errors.New("engine shut down")

// resumeAttempts is the initial resume plus one retry.
const resumeAttempts = 2

// Opener creates a processing context.
type Opener func() (*audio.Context, error)

// State is the explicit engine state. The zero value is not usable; call New.
type State struct {
	mu      sync.Mutex
	open    Opener
	logger  *slog.Logger
	enabled bool
	volume  float64
	phase   Phase
	ctx     *audio.Context
	failure error
}

func New(open Opener, enabled bool, volume float64, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &State{open: open, logger: logger, enabled: enabled, volume: ClampVolume(volume)}
}

// ClampVolume limits v to [0, 1]; NaN becomes 0.
func ClampVolume(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}

func (s *State) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// ToggleEnabled flips the enabled flag and returns the new value.
func (s *State) ToggleEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = !s.enabled
	return s.enabled
}

func (s *State) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

func (s *State) MasterVolume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// SetMasterVolume stores the clamped volume. It affects tones synthesized
// afterwards, not voices already sounding.
func (s *State) SetMasterVolume(v float64) {
	s.mu.Lock()
	s.volume = ClampVolume(v)
	s.mu.Unlock()
}

func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Context returns the processing context, or nil before initialization and
// after shutdown.
func (s *State) Context() *audio.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Initialize creates the processing context. It is a no-op when one already
// exists; an Unavailable engine keeps returning the original failure.
func (s *State) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializeLocked()
}

func (s *State) initializeLocked() error {
	switch s.phase {
	case Ready, Suspended:
		return nil
	case Unavailable:
		return s.failure
	}
	s.phase = Initializing
	ctx, err := s.open()
	if err != nil {
		var ue *audio.UnavailableError
		if !errors.As(err, &ue) {
			err = &audio.UnavailableError{Err: err}
		}
		s.phase = Unavailable
		s.failure = err
		s.logger.Warn("audio unavailable", "err", err)
		return err
	}
	s.ctx = ctx
	s.phase = Ready
	s.logger.Debug("audio context ready", "sampleRate", ctx.SampleRate())
	return nil
}

// EnsureRunning returns a running context, initializing lazily on first use
// and resuming a suspended context (one retry) when needed.
func (s *State) EnsureRunning() (*audio.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case Uninitialized:
		if err := s.initializeLocked(); err != nil {
			return nil, err
		}
	case ShutDown:
		return nil, ErrShutDown
	case Unavailable:
		return nil, s.failure
	}
	if s.phase == Suspended || s.ctx.State() == audio.StateSuspended {
		var err error
		for attempt := 1; attempt <= resumeAttempts; attempt++ {
			if err = s.ctx.Resume(); err == nil {
				break
			}
			s.logger.Debug("resume failed", "attempt", attempt, "err", err)
		}
		if err != nil {
			s.phase = Suspended
			return nil, &audio.SuspendedError{Err: err}
		}
		s.phase = Ready
	}
	return s.ctx, nil
}

// Suspend pauses output, as a host does when the app is backgrounded.
func (s *State) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case Ready:
		if err := s.ctx.Suspend(); err != nil {
			return fmt.Errorf("suspend audio context: %w", err)
		}
		s.phase = Suspended
		return nil
	case Suspended:
		return nil
	}
	return fmt.Errorf("cannot suspend while %s", s.phase)
}

// Shutdown closes the context. Initialize brings the engine back.
func (s *State) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Unavailable {
		return nil
	}
	var err error
	if s.ctx != nil {
		err = s.ctx.Close()
		s.ctx = nil
	}
	s.phase = ShutDown
	return err
}
