package lfo

import (
	"math"
	"testing"
)

func TestLFOSineVibratoShape(t *testing.T) {
	l := New(10, 5, WaveSine) // ±10 Hz at 5 Hz, the vibrato defaults

	sr := 1000.0 // 200 samples per cycle
	samples := make([]float64, 200)
	for i := range samples {
		samples[i] = l.Sample(sr)
	}

	if math.Abs(samples[0]) > 1e-9 {
		t.Errorf("sine at phase 0: got %f, want 0", samples[0])
	}
	if math.Abs(samples[50]-10) > 0.01 {
		t.Errorf("sine at phase 0.25: got %f, want 10", samples[50])
	}
	if math.Abs(samples[150]+10) > 0.01 {
		t.Errorf("sine at phase 0.75: got %f, want -10", samples[150])
	}
	for i, v := range samples {
		if math.Abs(v) > 10+1e-9 {
			t.Fatalf("sample %d exceeds depth: %f", i, v)
		}
	}
}

func TestLFOTriangleBasicShape(t *testing.T) {
	l := New(1.0, 1.0, WaveTriangle)

	sr := 100.0
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = l.Sample(sr)
	}

	if math.Abs(samples[0]) > 0.05 {
		t.Errorf("triangle at phase 0: got %f, want 0", samples[0])
	}
	if math.Abs(samples[25]-1.0) > 0.05 {
		t.Errorf("triangle at phase 0.25: got %f, want 1.0", samples[25])
	}
	if math.Abs(samples[75]+1.0) > 0.05 {
		t.Errorf("triangle at phase 0.75: got %f, want -1.0", samples[75])
	}
}

func TestLFOSquareShape(t *testing.T) {
	l := New(2.0, 1.0, WaveSquare)

	sr := 100.0
	v := l.Sample(sr)
	if math.Abs(v-2.0) > 0.01 {
		t.Errorf("square first half: got %f, want 2.0", v)
	}
	for i := 1; i < 50; i++ {
		l.Sample(sr)
	}
	v = l.Sample(sr)
	if math.Abs(v-(-2.0)) > 0.01 {
		t.Errorf("square second half: got %f, want -2.0", v)
	}
}

func TestLFOSawShape(t *testing.T) {
	l := New(1.0, 1.0, WaveSaw)
	v := l.Sample(100)
	if math.Abs(v-1.0) > 0.05 {
		t.Errorf("saw at phase 0: got %f, want 1.0", v)
	}
}

func TestLFOZeroDepthOrRateReturnsZero(t *testing.T) {
	if v := New(0, 5.0, WaveSine).Sample(44100); v != 0 {
		t.Errorf("zero depth should return 0, got %f", v)
	}
	if v := New(1.0, 0, WaveSine).Sample(44100); v != 0 {
		t.Errorf("zero rate should return 0, got %f", v)
	}
}

func TestLFOActiveAndUnknownWaveform(t *testing.T) {
	l := &LFO{}
	if l.Active() {
		t.Error("default LFO should not be active")
	}
	l.Set(1.0, 5.0, Waveform(42))
	if !l.Active() {
		t.Error("configured LFO should be active")
	}
	if l.waveform != WaveSine {
		t.Errorf("unknown waveform should fall back to sine, got %d", l.waveform)
	}
}
