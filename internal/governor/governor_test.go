package governor

import (
	"slices"
	"testing"
	"time"

	"github.com/cbegin/quizsfx-go/internal/clock"
)

func newTestGovernor() (*Governor, *clock.Manual) {
	clk := clock.NewManual(time.Unix(100, 0))
	return New(DefaultConfig(), clk, nil), clk
}

func req(id string, window time.Duration) Request {
	return Request{ID: id, Window: window}
}

func TestActiveIDIsRedundant(t *testing.T) {
	g, clk := newTestGovernor()
	if d := g.Admit(req("a", 500*time.Millisecond)); d != Accepted {
		t.Fatalf("first = %v", d)
	}
	clk.Advance(200 * time.Millisecond)
	if d := g.Admit(Request{ID: "a", MustPlay: true, Window: time.Second}); d != Redundant {
		t.Fatalf("while active = %v, want redundant", d)
	}
	if s := g.Snapshot(); len(s.Queued) != 0 {
		t.Fatalf("redundant request queued: %v", s.Queued)
	}
	clk.Advance(300 * time.Millisecond)
	if d := g.Admit(req("a", time.Millisecond)); d != Accepted {
		t.Fatalf("after window = %v", d)
	}
}

func TestThrottleInterval(t *testing.T) {
	g, clk := newTestGovernor()
	g.Admit(req("tick", 10*time.Millisecond))
	clk.Advance(50 * time.Millisecond)
	if d := g.Admit(req("tick", 10*time.Millisecond)); d != Throttled {
		t.Fatalf("at 50ms = %v, want throttled", d)
	}
	clk.Advance(50 * time.Millisecond)
	if d := g.Admit(req("tick", 10*time.Millisecond)); d != Accepted {
		t.Fatalf("at 100ms = %v, want accepted", d)
	}
}

func TestCeilingRejectsDroppable(t *testing.T) {
	g, _ := newTestGovernor()
	for _, id := range []string{"a", "b", "c"} {
		if d := g.Admit(req(id, time.Second)); d != Accepted {
			t.Fatalf("%s = %v", id, d)
		}
	}
	if d := g.Admit(req("d", time.Second)); d != Busy {
		t.Fatalf("fourth = %v, want busy", d)
	}
	if s := g.Snapshot(); !slices.Equal(s.Active, []string{"a", "b", "c"}) || len(s.Queued) != 0 {
		t.Fatalf("snapshot = %+v", s)
	}
}

func TestDeferredMustPlayReplaysWhenSlotFrees(t *testing.T) {
	g, clk := newTestGovernor()
	g.Admit(req("a", 300*time.Millisecond))
	g.Admit(req("b", time.Second))
	g.Admit(req("c", time.Second))
	replayed := 0
	d := g.Admit(Request{ID: "correct", MustPlay: true, Window: 400 * time.Millisecond, Replay: func() bool {
		replayed++
		return true
	}})
	if d != Deferred {
		t.Fatalf("must-play at ceiling = %v, want deferred", d)
	}
	clk.Advance(299 * time.Millisecond)
	if replayed != 0 {
		t.Fatal("replayed before a slot freed")
	}
	clk.Advance(time.Millisecond)
	if replayed != 1 {
		t.Fatalf("replayed = %d, want 1", replayed)
	}
	s := g.Snapshot()
	if !slices.Equal(s.Active, []string{"b", "c", "correct"}) || len(s.Queued) != 0 || s.Replayed != 1 {
		t.Fatalf("snapshot = %+v", s)
	}
}

func TestDeferredQueueIsFIFO(t *testing.T) {
	g, clk := newTestGovernor()
	g.Admit(req("a", 100*time.Millisecond))
	g.Admit(req("b", 200*time.Millisecond))
	g.Admit(req("c", time.Second))
	var order []string
	for _, id := range []string{"x", "y"} {
		g.Admit(Request{ID: id, MustPlay: true, Window: time.Second, Replay: func() bool {
			order = append(order, id)
			return true
		}})
	}
	if s := g.Snapshot(); !slices.Equal(s.Queued, []string{"x", "y"}) {
		t.Fatalf("queue = %v", s.Queued)
	}
	clk.Advance(100 * time.Millisecond)
	if !slices.Equal(order, []string{"x"}) {
		t.Fatalf("after first release = %v", order)
	}
	if s := g.Snapshot(); !slices.Equal(s.Queued, []string{"y"}) {
		t.Fatalf("y should still be queued at the head: %v", s.Queued)
	}
	clk.Advance(100 * time.Millisecond)
	if !slices.Equal(order, []string{"x", "y"}) {
		t.Fatalf("after second release = %v", order)
	}
}

func TestDeferredRedundantIsDropped(t *testing.T) {
	g, clk := newTestGovernor()
	g.Admit(req("a", 100*time.Millisecond))
	g.Admit(req("b", time.Second))
	g.Admit(req("c", time.Second))
	replayed := false
	// "b" is active, so once a slot frees the queued copy is redundant.
	g.mu.Lock()
	g.queue = append(g.queue, Request{ID: "b", MustPlay: true, Window: time.Second, Replay: func() bool {
		replayed = true
		return true
	}})
	g.mu.Unlock()
	clk.Advance(100 * time.Millisecond)
	if replayed {
		t.Fatal("redundant deferred request replayed")
	}
	if s := g.Snapshot(); len(s.Queued) != 0 {
		t.Fatalf("queue = %v", s.Queued)
	}
}

func TestResetClearsEverything(t *testing.T) {
	g, clk := newTestGovernor()
	g.Admit(req("a", time.Second))
	g.Admit(req("b", time.Second))
	g.Admit(req("c", time.Second))
	replayed := false
	g.Admit(Request{ID: "d", MustPlay: true, Window: time.Second, Replay: func() bool {
		replayed = true
		return true
	}})
	g.Reset()
	s := g.Snapshot()
	if len(s.Active) != 0 || len(s.Queued) != 0 {
		t.Fatalf("after reset: %+v", s)
	}
	clk.Advance(2 * time.Second)
	if replayed {
		t.Fatal("deferred request survived reset")
	}
	if d := g.Admit(req("a", time.Second)); d != Accepted {
		t.Fatalf("after reset = %v", d)
	}
}

func TestShouldPlayThenMarkPlaying(t *testing.T) {
	g, clk := newTestGovernor()
	if d := g.ShouldPlay(req("a", 0)); d != Accepted {
		t.Fatalf("ShouldPlay = %v", d)
	}
	g.MarkPlaying("a", 250*time.Millisecond)
	clk.Advance(150 * time.Millisecond)
	if d := g.ShouldPlay(req("a", 0)); d != Redundant {
		t.Fatalf("during window = %v", d)
	}
	clk.Advance(100 * time.Millisecond)
	if d := g.ShouldPlay(req("a", 0)); d != Accepted {
		t.Fatalf("after window = %v", d)
	}
}

func TestUnlimitedCeiling(t *testing.T) {
	g := New(Config{Ceiling: 0}, clock.NewManual(time.Unix(0, 0)), nil)
	for i := range 10 {
		if d := g.Admit(req(string(rune('a'+i)), time.Second)); d != Accepted {
			t.Fatalf("request %d = %v", i, d)
		}
	}
}

func TestUndispatchedReplayGivesWindowBack(t *testing.T) {
	g, clk := newTestGovernor()
	g.Admit(req("a", 100*time.Millisecond))
	g.Admit(req("b", time.Second))
	g.Admit(req("c", time.Second))
	var calls []string
	for _, id := range []string{"x", "y"} {
		dispatched := id == "y"
		g.Admit(Request{ID: id, MustPlay: true, Window: time.Second, Replay: func() bool {
			calls = append(calls, id)
			return dispatched
		}})
	}
	clk.Advance(100 * time.Millisecond)
	if !slices.Equal(calls, []string{"x", "y"}) {
		t.Fatalf("replays = %v", calls)
	}
	s := g.Snapshot()
	if !slices.Equal(s.Active, []string{"b", "c", "y"}) || len(s.Queued) != 0 || s.Replayed != 1 {
		t.Fatalf("snapshot = %+v", s)
	}
	clk.Advance(time.Second)
	if d := g.Admit(req("x", time.Second)); d != Accepted {
		t.Fatalf("x after an undispatched replay = %v", d)
	}
}
