// Package governor decides whether a requested cue may start, given which
// cues are already sounding and how recently each was started.
package governor

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cbegin/quizsfx-go/internal/clock"
)

// Decision is the outcome of a ShouldPlay check.
type Decision int

const (
	Accepted Decision = iota
	// Redundant: the same cue is still sounding.
	Redundant
	// Throttled: the cue started less than the throttle interval ago.
	Throttled
	// Busy: too many cues are sounding and the request is droppable.
	Busy
	// Deferred: too many cues are sounding; the request waits in the queue.
	Deferred
)

func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case Redundant:
		return "redundant"
	case Throttled:
		return "throttled"
	case Busy:
		return "busy"
	case Deferred:
		return "deferred"
	}
	return "unknown"
}

// Request is one cue start awaiting a decision.
type Request struct {
	ID       string
	MustPlay bool
	// Window is how long the cue counts as active once accepted.
	Window time.Duration
	// Replay dispatches a deferred request once it is accepted and reports
	// whether anything started. It runs without the governor lock held; a
	// false result gives the window back.
	Replay func() bool
}

type Config struct {
	ThrottleInterval time.Duration
	// Ceiling caps simultaneously active cues; zero or less is unlimited.
	Ceiling int
}

func DefaultConfig() Config {
	return Config{ThrottleInterval: 100 * time.Millisecond, Ceiling: 3}
}

type activeCue struct {
	timer clock.Timer
	gen   uint64
}

// Governor is the throttle ledger: last dispatch per id, the active set and
// the FIFO queue of deferred must-play requests.
type Governor struct {
	mu       sync.Mutex
	cfg      Config
	clock    clock.Clock
	logger   *slog.Logger
	last     map[string]time.Time
	active   map[string]*activeCue
	queue    []Request
	gen      uint64
	replayed int
}

func New(cfg Config, clk clock.Clock, logger *slog.Logger) *Governor {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Governor{
		cfg:    cfg,
		clock:  clk,
		logger: logger,
		last:   make(map[string]time.Time),
		active: make(map[string]*activeCue),
	}
}

// ShouldPlay applies the admission rules in order: an active id is
// redundant, a recent id is throttled, a full active set defers must-play
// requests and rejects the rest. Accepting records the dispatch time; the
// caller must follow with MarkPlaying.
func (g *Governor) ShouldPlay(req Request) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shouldPlayLocked(req, true)
}

// MarkPlaying makes id active for window.
func (g *Governor) MarkPlaying(id string, window time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.markLocked(id, window)
}

// Admit is ShouldPlay followed by MarkPlaying(req.ID, req.Window) in one
// critical section.
func (g *Governor) Admit(req Request) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := g.shouldPlayLocked(req, true)
	if d == Accepted {
		g.markLocked(req.ID, req.Window)
	}
	return d
}

func (g *Governor) shouldPlayLocked(req Request, enqueue bool) Decision {
	now := g.clock.Now()
	d := g.evaluateLocked(req, now)
	switch d {
	case Accepted:
		g.last[req.ID] = now
	case Busy:
		if req.MustPlay && enqueue {
			g.queue = append(g.queue, req)
			d = Deferred
		}
	}
	g.logger.Debug("governor decision", "id", req.ID, "decision", d.String(), "active", len(g.active), "queued", len(g.queue))
	return d
}

func (g *Governor) evaluateLocked(req Request, now time.Time) Decision {
	if _, ok := g.active[req.ID]; ok {
		return Redundant
	}
	if last, ok := g.last[req.ID]; ok && now.Sub(last) < g.cfg.ThrottleInterval {
		return Throttled
	}
	if g.cfg.Ceiling > 0 && len(g.active) >= g.cfg.Ceiling {
		return Busy
	}
	return Accepted
}

func (g *Governor) markLocked(id string, window time.Duration) {
	if prev, ok := g.active[id]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	g.gen++
	gen := g.gen
	cue := &activeCue{gen: gen}
	g.active[id] = cue
	cue.timer = g.clock.AfterFunc(window, func() { g.release(id, gen) })
}

// release ends id's window and re-evaluates the deferred queue from the
// front. Requests that became redundant or throttled are dropped; one still
// over the ceiling goes back to the front.
func (g *Governor) release(id string, gen uint64) {
	g.mu.Lock()
	cue, ok := g.active[id]
	if !ok || cue.gen != gen {
		g.mu.Unlock()
		return
	}
	delete(g.active, id)
	g.mu.Unlock()
	g.drain()
}

func (g *Governor) drain() {
	for {
		g.mu.Lock()
		req, gen, prev, ok := g.nextLocked()
		g.mu.Unlock()
		if !ok {
			return
		}
		if req.Replay == nil || req.Replay() {
			return
		}
		g.mu.Lock()
		g.unmarkLocked(req.ID, gen, prev)
		g.mu.Unlock()
		g.logger.Debug("deferred request not dispatched", "id", req.ID)
	}
}

// nextLocked pops the first deferred request that is admissible now and
// marks it active. prev is the dispatch time it replaced.
func (g *Governor) nextLocked() (req Request, gen uint64, prev time.Time, ok bool) {
	for len(g.queue) > 0 {
		req = g.queue[0]
		g.queue = g.queue[1:]
		prev = g.last[req.ID]
		d := g.shouldPlayLocked(req, false)
		if d == Busy {
			g.queue = slices.Insert(g.queue, 0, req)
			return Request{}, 0, time.Time{}, false
		}
		if d != Accepted {
			g.logger.Debug("deferred request dropped", "id", req.ID, "decision", d.String())
			continue
		}
		g.markLocked(req.ID, req.Window)
		g.replayed++
		return req, g.gen, prev, true
	}
	return Request{}, 0, time.Time{}, false
}

// unmarkLocked undoes markLocked for a replay that started nothing.
func (g *Governor) unmarkLocked(id string, gen uint64, prev time.Time) {
	cue, ok := g.active[id]
	if !ok || cue.gen != gen {
		return
	}
	cue.timer.Stop()
	delete(g.active, id)
	g.replayed--
	if prev.IsZero() {
		delete(g.last, id)
	} else {
		g.last[id] = prev
	}
}

// Reset forgets every window, dispatch time and deferred request.
func (g *Governor) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, cue := range g.active {
		if cue.timer != nil {
			cue.timer.Stop()
		}
	}
	clear(g.active)
	clear(g.last)
	g.queue = nil
}

// Snapshot is a point-in-time view of the ledger.
type Snapshot struct {
	Active   []string // sorted
	Queued   []string // oldest first
	Replayed int
}

func (g *Governor) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := Snapshot{Replayed: g.replayed}
	for id := range g.active {
		s.Active = append(s.Active, id)
	}
	slices.Sort(s.Active)
	for _, req := range g.queue {
		s.Queued = append(s.Queued, req.ID)
	}
	return s
}
