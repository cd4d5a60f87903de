// Package quizsfx is a procedural spatial sound engine for quiz-style
// funnels: it synthesizes short cues on demand, places them around the
// listener and arbitrates bursts of requests.
package quizsfx

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cbegin/quizsfx-go/internal/audio"
	"github.com/cbegin/quizsfx-go/internal/catalog"
	"github.com/cbegin/quizsfx-go/internal/clock"
	"github.com/cbegin/quizsfx-go/internal/effects"
	"github.com/cbegin/quizsfx-go/internal/governor"
	"github.com/cbegin/quizsfx-go/internal/scheduler"
	"github.com/cbegin/quizsfx-go/internal/spatial"
	"github.com/cbegin/quizsfx-go/internal/state"
	"github.com/cbegin/quizsfx-go/internal/synth"
)

// Position is a point around the listener: +X right, +Y up, -Z ahead.
type Position = spatial.Position

// Catalog is a read-only table of playable cues.
type Catalog = catalog.Catalog

// SpatialCatalog is the default catalog of spatialized quiz cues.
func SpatialCatalog() *Catalog { return catalog.Spatial() }

// ClassicCatalog is the arcade-style alternative with moving arpeggios.
func ClassicCatalog() *Catalog { return catalog.Classic() }

// CatalogByName returns "spatial" or "classic".
func CatalogByName(name string) (*Catalog, error) {
	c, ok := catalog.ByName(name)
	if !ok {
		return nil, fmt.Errorf("invalid catalog %q (expected spatial|classic)", name)
	}
	return c, nil
}

type Backend = audio.Backend

const (
	BackendEbiten   = audio.BackendEbiten
	BackendOto      = audio.BackendOto
	BackendHeadless = audio.BackendHeadless
)

func ParseBackend(name string) (Backend, error) { return audio.ParseBackend(name) }

type DistanceModel = spatial.DistanceModel

const (
	DistanceInverse     = spatial.DistanceInverse
	DistanceExponential = spatial.DistanceExponential
	DistanceLinear      = spatial.DistanceLinear
)

// ParseDistanceModel accepts inverse, exponential (or exp) and linear; the
// empty name is the default, exponential.
func ParseDistanceModel(name string) (DistanceModel, error) { return spatial.ParseDistanceModel(name) }

// Phase is the engine lifecycle phase.
type Phase = state.Phase

const (
	PhaseUninitialized = state.Uninitialized
	PhaseInitializing  = state.Initializing
	PhaseReady         = state.Ready
	PhaseSuspended     = state.Suspended
	PhaseShutDown      = state.ShutDown
	PhaseUnavailable   = state.Unavailable
)

// Bands of the master EQ.
const (
	EQLow     = effects.BandLow
	EQLowMid  = effects.BandLowMid
	EQMid     = effects.BandMid
	EQHighMid = effects.BandHighMid
	EQHigh    = effects.BandHigh
)

// VoiceInfo describes one sounding tone.
type VoiceInfo struct {
	ID        uint64
	SoundID   string
	Note      int
	Frequency float64
	Waveform  string
	Volume    float64
	Position  Position
	Vibrato   bool
	StartedAt time.Time
	StopAt    time.Time
}

func voiceInfo(v *audio.Voice) VoiceInfo {
	m := v.Meta()
	return VoiceInfo{
		ID:        v.ID(),
		SoundID:   m.SoundID,
		Note:      m.Note,
		Frequency: m.Frequency,
		Waveform:  m.Waveform,
		Volume:    m.Volume,
		Position:  m.Position,
		Vibrato:   m.Vibrato,
		StartedAt: v.StartedAt(),
		StopAt:    v.StopAt(),
	}
}

type Option func(*config)

type config struct {
	sampleRate    int
	backend       Backend
	sink          audio.SinkFactory
	catalog       *Catalog
	masterVolume  float64
	enabled       bool
	throttle      time.Duration
	ceiling       int
	distanceModel DistanceModel
	vibratoDepth  float64
	vibratoRate   float64
	attack        time.Duration
	headroom      float64
	effects       []string
	clock         clock.Clock
	logger        *slog.Logger
	voiceHook     func(VoiceInfo)
}

func defaultConfig() config {
	gov := governor.DefaultConfig()
	syn := synth.DefaultParams()
	return config{
		sampleRate:    48000,
		backend:       BackendEbiten,
		masterVolume:  0.7,
		enabled:       true,
		throttle:      gov.ThrottleInterval,
		ceiling:       gov.Ceiling,
		distanceModel: DistanceExponential,
		vibratoDepth:  syn.VibratoDepth,
		vibratoRate:   syn.VibratoRate,
		attack:        syn.Attack,
		headroom:      syn.Headroom,
	}
}

func WithSampleRate(sampleRate int) Option {
	return func(cfg *config) {
		cfg.sampleRate = sampleRate
	}
}

func WithBackend(b Backend) Option {
	return func(cfg *config) {
		cfg.backend = b
	}
}

// WithCatalog replaces the default spatial catalog.
func WithCatalog(c *Catalog) Option {
	return func(cfg *config) {
		cfg.catalog = c
	}
}

// WithMasterVolume sets the initial master volume, clamped to [0, 1].
func WithMasterVolume(v float64) Option {
	return func(cfg *config) {
		cfg.masterVolume = v
	}
}

func WithEnabled(enabled bool) Option {
	return func(cfg *config) {
		cfg.enabled = enabled
	}
}

// WithThrottle sets the minimum interval between two starts of the same cue.
func WithThrottle(d time.Duration) Option {
	return func(cfg *config) {
		cfg.throttle = d
	}
}

// WithCeiling caps how many cues may sound at once. Zero disables the cap.
func WithCeiling(n int) Option {
	return func(cfg *config) {
		cfg.ceiling = n
	}
}

func WithDistanceModel(m DistanceModel) Option {
	return func(cfg *config) {
		cfg.distanceModel = m
	}
}

// WithVibrato sets the vibrato depth and rate, both in Hz.
func WithVibrato(depth, rate float64) Option {
	return func(cfg *config) {
		cfg.vibratoDepth = depth
		cfg.vibratoRate = rate
	}
}

func WithAttack(d time.Duration) Option {
	return func(cfg *config) {
		cfg.attack = d
	}
}

// WithHeadroom sets the volume-to-gain scale applied to every tone.
func WithHeadroom(h float64) Option {
	return func(cfg *config) {
		cfg.headroom = h
	}
}

// WithEffects installs master bus effects, e.g. "comp -12,4,5,100,0" or
// "reverb 0.4,0.6,0.15".
func WithEffects(specs ...string) Option {
	return func(cfg *config) {
		cfg.effects = append(cfg.effects, specs...)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithVoiceHook observes every tone as it starts. The hook runs on the
// scheduling goroutine and must not call back into the Engine.
func WithVoiceHook(hook func(VoiceInfo)) Option {
	return func(cfg *config) {
		cfg.voiceHook = hook
	}
}

func withClock(c clock.Clock) Option {
	return func(cfg *config) {
		cfg.clock = c
	}
}

func withSink(f audio.SinkFactory) Option {
	return func(cfg *config) {
		cfg.sink = f
	}
}

func (cfg *config) validate() error {
	var errs []error
	if cfg.sampleRate <= 0 {
		errs = append(errs, errors.New("sampleRate must be positive"))
	}
	if _, err := cfg.backend.Factory(); err != nil && cfg.sink == nil {
		errs = append(errs, err)
	}
	if cfg.throttle < 0 {
		errs = append(errs, errors.New("throttle must not be negative"))
	}
	if cfg.ceiling < 0 {
		errs = append(errs, errors.New("ceiling must not be negative"))
	}
	if cfg.attack < 0 {
		errs = append(errs, errors.New("attack must not be negative"))
	}
	if !(cfg.headroom > 0) || math.IsInf(cfg.headroom, 0) {
		errs = append(errs, fmt.Errorf("invalid headroom %v", cfg.headroom))
	}
	if !(cfg.vibratoDepth >= 0) || !(cfg.vibratoRate >= 0) {
		errs = append(errs, errors.New("vibrato depth and rate must not be negative"))
	}
	if cfg.sampleRate > 0 {
		if _, err := effects.ParseChain(cfg.sampleRate, cfg.effects); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Engine is the public facade. All methods are safe for concurrent use and
// none of the play methods block on audio output.
type Engine struct {
	cfg     config
	logger  *slog.Logger
	catalog *Catalog
	clock   clock.Clock
	eq      *effects.EQ5Band
	state   *state.State
	gov     *governor.Governor
	sched   *scheduler.Scheduler

	mu        sync.Mutex
	followUps map[uint64]clock.Timer
	nextKey   uint64
}

// NewEngine validates options and builds an engine. The audio device is not
// opened until Initialize or the first Play.
func NewEngine(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.catalog == nil {
		cfg.catalog = catalog.Spatial()
	}
	if cfg.clock == nil {
		cfg.clock = clock.Real()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		cfg:       cfg,
		logger:    cfg.logger,
		catalog:   cfg.catalog,
		clock:     cfg.clock,
		eq:        effects.NewEQ5Band(cfg.sampleRate),
		followUps: make(map[uint64]clock.Timer),
	}
	e.state = state.New(e.openContext, cfg.enabled, cfg.masterVolume, cfg.logger)
	e.gov = governor.New(governor.Config{ThrottleInterval: cfg.throttle, Ceiling: cfg.ceiling}, cfg.clock, cfg.logger)

	spatialCfg := spatial.DefaultConfig()
	spatialCfg.DistanceModel = cfg.distanceModel
	synthParams := synth.DefaultParams()
	synthParams.Attack = cfg.attack
	synthParams.Headroom = cfg.headroom
	synthParams.VibratoDepth = cfg.vibratoDepth
	synthParams.VibratoRate = cfg.vibratoRate

	var onVoice func(*audio.Voice)
	if hook := cfg.voiceHook; hook != nil {
		onVoice = func(v *audio.Voice) { hook(voiceInfo(v)) }
	}
	e.sched = scheduler.New(scheduler.Config{
		Catalog:  cfg.catalog,
		State:    e.state,
		Governor: e.gov,
		Positioner: func(sampleRate int) *spatial.Positioner {
			return spatial.NewPositioner(sampleRate, spatialCfg)
		},
		Synth:   synthParams,
		Clock:   cfg.clock,
		Logger:  cfg.logger,
		OnVoice: onVoice,
	})
	return e, nil
}

func (e *Engine) openContext() (*audio.Context, error) {
	chain, err := effects.ParseChain(e.cfg.sampleRate, e.cfg.effects)
	if err != nil {
		return nil, err
	}
	e.eq.Reset()
	return audio.NewContext(audio.Config{
		SampleRate: e.cfg.sampleRate,
		Backend:    e.cfg.backend,
		Sink:       e.cfg.sink,
		Clock:      e.cfg.clock,
		Effects:    chain,
		EQ:         e.eq,
	})
}

// Catalog returns the catalog the engine plays from.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Play starts cue id at the given intensity (1 is nominal). An optional
// position overrides the cue's own placement. Unknown ids, a disabled
// engine, unavailable audio and governor rejections are all silent.
func (e *Engine) Play(id string, intensity float64, pos ...Position) {
	e.play(id, intensity, pos...)
}

func (e *Engine) play(id string, intensity float64, pos ...Position) scheduler.Outcome {
	req := scheduler.Request{ID: id, Intensity: intensity}
	if len(pos) > 0 {
		p := pos[0]
		req.Position = &p
	}
	o := e.sched.Play(req)
	e.logger.Debug("play", "id", id, "intensity", intensity, "outcome", o.String())
	return o
}

func (e *Engine) playRole(role catalog.Role, intensity float64, pos ...Position) scheduler.Outcome {
	id, ok := e.catalog.Role(role)
	if !ok {
		e.logger.Debug("catalog has no cue for role", "catalog", e.catalog.Name(), "role", role.String())
		return scheduler.Unknown
	}
	return e.play(id, intensity, pos...)
}

// ToggleEnabled flips the enabled flag. While disabled every play is a no-op.
func (e *Engine) ToggleEnabled() { e.state.ToggleEnabled() }

func (e *Engine) Enabled() bool { return e.state.Enabled() }

// SetMasterVolume clamps v to [0, 1]. It applies to tones started afterwards.
func (e *Engine) SetMasterVolume(v float64) { e.state.SetMasterVolume(v) }

func (e *Engine) MasterVolume() float64 { return e.state.MasterVolume() }

// Initialize opens the audio output. Calling it again is a no-op; after
// Shutdown it reopens output. A host without audio yields
// *AudioUnavailableError and the engine stays silent from then on.
func (e *Engine) Initialize() error { return e.state.Initialize() }

// Suspend pauses output as a host does when backgrounded. The next play
// resumes it.
func (e *Engine) Suspend() error { return e.state.Suspend() }

func (e *Engine) Phase() Phase { return e.state.Phase() }

// StopAll silences every voice and pending note, including staggered
// follow-up cues, without shutting down.
func (e *Engine) StopAll() {
	e.cancelFollowUps()
	n := e.sched.StopAll()
	e.logger.Debug("stopped all voices", "voices", n)
}

// Shutdown stops every voice, cancels pending notes and follow-ups, drops
// deferred requests and closes the audio output.
func (e *Engine) Shutdown() error {
	e.cancelFollowUps()
	return e.sched.Shutdown()
}

// ActiveVoices lists the tones currently sounding, in start order.
func (e *Engine) ActiveVoices() []VoiceInfo {
	ctx := e.state.Context()
	if ctx == nil {
		return nil
	}
	voices := ctx.Voices()
	out := make([]VoiceInfo, len(voices))
	for i, v := range voices {
		out[i] = voiceInfo(v)
	}
	return out
}

// SetEQBand sets a master EQ band gain (EQLow..EQHigh). 1.0 = unity.
func (e *Engine) SetEQBand(band int, gain float32) { e.eq.SetGain(band, gain) }

func (e *Engine) EQBand(band int) float32 { return e.eq.Gain(band) }

// after runs f once d has elapsed unless StopAll or Shutdown intervenes.
func (e *Engine) after(d time.Duration, f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextKey++
	key := e.nextKey
	e.followUps[key] = e.clock.AfterFunc(d, func() {
		e.mu.Lock()
		_, ok := e.followUps[key]
		delete(e.followUps, key)
		e.mu.Unlock()
		if ok {
			f()
		}
	})
}

func (e *Engine) cancelFollowUps() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.followUps {
		t.Stop()
	}
	clear(e.followUps)
}
