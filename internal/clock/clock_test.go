package clock

import (
	"testing"
	"time"
)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var got []int
	m.AfterFunc(30*time.Millisecond, func() { got = append(got, 3) })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, 1) })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, 2) })

	m.Advance(20 * time.Millisecond)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("after 20ms fired %v, want [1 2]", got)
	}
	m.Advance(10 * time.Millisecond)
	if len(got) != 3 || got[2] != 3 {
		t.Fatalf("after 30ms fired %v, want [1 2 3]", got)
	}
	if m.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", m.Pending())
	}
}

func TestManualCallbackSeesDeadlineAsNow(t *testing.T) {
	start := time.Unix(0, 0)
	m := NewManual(start)
	var seen time.Duration
	m.AfterFunc(15*time.Millisecond, func() { seen = m.Now().Sub(start) })
	m.Advance(time.Second)
	if seen != 15*time.Millisecond {
		t.Fatalf("callback saw now=%v, want 15ms", seen)
	}
	if got := m.Now().Sub(start); got != time.Second {
		t.Fatalf("now after advance = %v, want 1s", got)
	}
}

func TestManualNestedScheduling(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	fired := 0
	m.AfterFunc(10*time.Millisecond, func() {
		fired++
		m.AfterFunc(10*time.Millisecond, func() { fired++ })
	})
	m.Advance(25 * time.Millisecond)
	if fired != 2 {
		t.Fatalf("fired = %d, want 2", fired)
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	fired := false
	tm := m.AfterFunc(time.Millisecond, func() { fired = true })
	if !tm.Stop() {
		t.Fatal("Stop on pending timer should report true")
	}
	if tm.Stop() {
		t.Fatal("second Stop should report false")
	}
	m.Advance(time.Second)
	if fired {
		t.Fatal("stopped timer fired")
	}
}
