package spatial

import (
	"math"
	"testing"
)

type routeRecorder struct{ stage Stage }

func (r *routeRecorder) Route(s Stage) { r.stage = s }

func TestLocateDefaultListener(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name   string
		pos    Position
		az, el float64
		dist   float64
	}{
		{"ahead", Position{Z: -1}, 0, 0, 1},
		{"right", Position{X: 1}, math.Pi / 2, 0, 1},
		{"left", Position{X: -2}, -math.Pi / 2, 0, 2},
		{"above", Position{Y: 1}, 0, math.Pi / 2, 1},
		{"behind", Position{Z: 3}, math.Pi, 0, 3},
	}
	for _, tc := range cases {
		az, el, dist := cfg.Locate(tc.pos)
		if math.Abs(math.Abs(az)-math.Abs(tc.az)) > 1e-9 || math.Abs(el-tc.el) > 1e-9 || math.Abs(dist-tc.dist) > 1e-9 {
			t.Errorf("%s: got az=%v el=%v d=%v, want az=%v el=%v d=%v", tc.name, az, el, dist, tc.az, tc.el, tc.dist)
		}
	}
}

func TestLocateOriginIsCentered(t *testing.T) {
	az, el, dist := DefaultConfig().Locate(Position{})
	if az != 0 || el != 0 || dist != 0 {
		t.Fatalf("origin: az=%v el=%v d=%v", az, el, dist)
	}
}

func TestDefaultDistanceModel(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DistanceModel != DistanceExponential || cfg.MaxDistance != 10 || cfg.RefDistance != 1 || cfg.Rolloff != 1 {
		t.Fatalf("default config = %+v", cfg)
	}
	if g := cfg.DistanceGain(4); math.Abs(g-0.25) > 1e-12 {
		t.Fatalf("exponential at 4 = %v, want 0.25", g)
	}
	if g := cfg.DistanceGain(0.2); g != 1 {
		t.Fatalf("inside ref distance = %v, want 1", g)
	}
}

func TestDistanceModels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DistanceModel = DistanceInverse
	cfg.MaxDistance = 10000
	if g := cfg.DistanceGain(0.5); g != 1 {
		t.Fatalf("inverse inside ref distance = %v, want 1", g)
	}
	if g := cfg.DistanceGain(2); math.Abs(g-0.5) > 1e-12 {
		t.Fatalf("inverse at 2 = %v, want 0.5", g)
	}
	cfg.DistanceModel = DistanceExponential
	cfg.Rolloff = 2
	if g := cfg.DistanceGain(2); math.Abs(g-0.25) > 1e-12 {
		t.Fatalf("exponential at 2 = %v, want 0.25", g)
	}
	cfg.DistanceModel = DistanceLinear
	cfg.Rolloff = 1
	cfg.MaxDistance = 11
	if g := cfg.DistanceGain(6); math.Abs(g-0.5) > 1e-12 {
		t.Fatalf("linear at 6 = %v, want 0.5", g)
	}
	if g := cfg.DistanceGain(100); math.Abs(g) > 1e-12 {
		t.Fatalf("linear beyond max = %v, want 0", g)
	}
}

func TestParseDistanceModel(t *testing.T) {
	for name, want := range map[string]DistanceModel{"": DistanceExponential, "Inverse": DistanceInverse, "exp": DistanceExponential, "linear": DistanceLinear} {
		got, err := ParseDistanceModel(name)
		if err != nil || got != want {
			t.Fatalf("ParseDistanceModel(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseDistanceModel("cone"); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestPositionRoutesVoice(t *testing.T) {
	p := NewPositioner(48000, DefaultConfig())
	rec := &routeRecorder{}
	pan := p.Position(rec, Position{X: 1})
	if rec.stage != pan {
		t.Fatal("voice was not routed through the returned panner")
	}
}

func energy(p *Panner, n int) (l, r float64) {
	for i := range n {
		x := math.Sin(2 * math.Pi * 440 * float64(i) / 48000)
		a, b := p.Process(x)
		l += a * a
		r += b * b
	}
	return l, r
}

func TestRightSourceIsLouderOnRight(t *testing.T) {
	p := NewPositioner(48000, DefaultConfig())
	l, r := energy(p.NewPanner(Position{X: 1}), 4800)
	if r <= l*2 {
		t.Fatalf("right source: L=%v R=%v", l, r)
	}
	l, r = energy(p.NewPanner(Position{X: -1}), 4800)
	if l <= r*2 {
		t.Fatalf("left source: L=%v R=%v", l, r)
	}
}

func TestCenteredSourceIsBalanced(t *testing.T) {
	p := NewPositioner(48000, DefaultConfig())
	for _, pos := range []Position{{}, {Z: -1}, {Y: 1}} {
		l, r := energy(p.NewPanner(pos), 4800)
		if math.Abs(l-r) > 1e-9*math.Max(l, 1) {
			t.Fatalf("%v: L=%v R=%v", pos, l, r)
		}
	}
}

func TestFarEarIsDelayed(t *testing.T) {
	p := NewPositioner(48000, DefaultConfig())
	pan := p.NewPanner(Position{X: 1})
	dl, dr := pan.Delays()
	if dr != 0 || dl < 20 || dl > 40 {
		t.Fatalf("delays L=%v R=%v samples", dl, dr)
	}
	firstL, firstR := -1, -1
	for i := range 64 {
		x := 0.0
		if i == 0 {
			x = 1
		}
		l, r := pan.Process(x)
		if firstL < 0 && math.Abs(l) > 1e-6 {
			firstL = i
		}
		if firstR < 0 && math.Abs(r) > 1e-6 {
			firstR = i
		}
	}
	if firstR != 0 || firstL <= firstR {
		t.Fatalf("impulse onset L=%d R=%d", firstL, firstR)
	}
}

func TestDistanceAttenuatesPanner(t *testing.T) {
	p := NewPositioner(48000, DefaultConfig())
	near := p.NewPanner(Position{Z: -1})
	far := p.NewPanner(Position{Z: -4})
	if math.Abs(far.DistanceGain()-0.25) > 1e-12 || near.DistanceGain() != 1 {
		t.Fatalf("gains near=%v far=%v", near.DistanceGain(), far.DistanceGain())
	}
}

func TestRearSourceIsDuller(t *testing.T) {
	p := NewPositioner(48000, DefaultConfig())
	hi := func(pan *Panner) float64 {
		var e float64
		for i := range 4800 {
			x := math.Sin(2 * math.Pi * 9000 * float64(i) / 48000)
			l, _ := pan.Process(x)
			e += l * l
		}
		return e
	}
	front := hi(p.NewPanner(Position{Z: -1}))
	back := hi(p.NewPanner(Position{Z: 1}))
	if back >= front*0.9 {
		t.Fatalf("rear source not attenuated at 9 kHz: front=%v back=%v", front, back)
	}
}
