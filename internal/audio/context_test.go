package audio

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/cbegin/quizsfx-go/internal/clock"
)

type constNode struct {
	value    float32
	frames   int
	rendered int
}

func (n *constNode) Render(dst []float32) bool {
	for i := 0; i+1 < len(dst) && n.rendered < n.frames; i += 2 {
		dst[i] += n.value
		dst[i+1] += n.value
		n.rendered++
	}
	return n.rendered < n.frames
}

type failingSink struct {
	playErr error
}

func (s *failingSink) Play() error  { return s.playErr }
func (s *failingSink) Pause() error { return nil }
func (s *failingSink) Close() error { return nil }

// pullingSink reads from its source inside Play and Pause, as some device
// players do before returning.
type pullingSink struct {
	src     SampleSource
	pulls   int
	playErr error
}

func (s *pullingSink) pull() {
	s.pulls++
	s.src.Process(make([]float32, 64))
}

func (s *pullingSink) Play() error {
	s.pull()
	return s.playErr
}

func (s *pullingSink) Pause() error {
	s.pull()
	return nil
}

func (s *pullingSink) Close() error { return nil }

func newPullingContext(t *testing.T) (*Context, *pullingSink) {
	t.Helper()
	sink := &pullingSink{}
	ctx, err := NewContext(Config{
		SampleRate: 1000,
		Clock:      clock.NewManual(time.Unix(0, 0)),
		Sink: func(_ int, src SampleSource) (Sink, error) {
			sink.src = src
			return sink, nil
		},
	})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return ctx, sink
}

func newTestContext(t *testing.T) (*Context, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Unix(0, 0))
	ctx, err := NewContext(Config{SampleRate: 1000, Backend: BackendHeadless, Clock: clk})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return ctx, clk
}

func TestVoiceRetiresAtStopTime(t *testing.T) {
	ctx, clk := newTestContext(t)
	ended := 0
	v, err := ctx.Start(Meta{SoundID: "x"}, &constNode{value: 0.1, frames: 10}, 300*time.Millisecond, func(*Voice) { ended++ })
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if v.Duration() != 300*time.Millisecond {
		t.Fatalf("duration = %v", v.Duration())
	}
	clk.Advance(299 * time.Millisecond)
	if got := len(ctx.Voices()); got != 1 || ended != 0 {
		t.Fatalf("before stop: voices=%d ended=%d", got, ended)
	}
	clk.Advance(time.Millisecond)
	if got := len(ctx.Voices()); got != 0 || ended != 1 {
		t.Fatalf("after stop: voices=%d ended=%d", got, ended)
	}
}

func TestProcessMixesAndClamps(t *testing.T) {
	ctx, _ := newTestContext(t)
	for range 3 {
		if _, err := ctx.Start(Meta{}, &constNode{value: 0.5, frames: 2}, time.Second, nil); err != nil {
			t.Fatal(err)
		}
	}
	buf := make([]float32, 8)
	ctx.Process(buf)
	if buf[0] != 1 || buf[1] != 1 {
		t.Fatalf("mix not clamped: %v", buf[:2])
	}
	if buf[4] != 0 || buf[5] != 0 {
		t.Fatalf("drained nodes still rendering: %v", buf[4:6])
	}
}

func TestStopAllEndsEveryVoice(t *testing.T) {
	ctx, clk := newTestContext(t)
	ended := 0
	for range 4 {
		ctx.Start(Meta{}, &constNode{frames: 1}, time.Second, func(*Voice) { ended++ })
	}
	if n := ctx.StopAll(); n != 4 || ended != 4 {
		t.Fatalf("StopAll = %d, ended=%d", n, ended)
	}
	clk.Advance(2 * time.Second)
	if ended != 4 {
		t.Fatalf("stopped voices retired again: ended=%d", ended)
	}
}

func TestSuspendRendersSilence(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Start(Meta{}, &constNode{value: 0.2, frames: 100}, time.Second, nil)
	if err := ctx.Suspend(); err != nil {
		t.Fatal(err)
	}
	if ctx.State() != StateSuspended {
		t.Fatalf("state = %v", ctx.State())
	}
	buf := make([]float32, 4)
	ctx.Process(buf)
	if buf[0] != 0 {
		t.Fatalf("suspended context produced %v", buf[0])
	}
	if err := ctx.Resume(); err != nil {
		t.Fatal(err)
	}
	ctx.Process(buf)
	if buf[0] == 0 {
		t.Fatal("resumed context is silent")
	}
}

func TestSinkPullsDuringSuspendAndResume(t *testing.T) {
	ctx, sink := newPullingContext(t)
	done := make(chan error, 1)
	go func() {
		if err := ctx.Suspend(); err != nil {
			done <- err
			return
		}
		done <- ctx.Resume()
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Suspend/Resume blocked on a sink that pulls samples")
	}
	if ctx.State() != StateRunning || sink.pulls != 3 {
		t.Fatalf("state=%v pulls=%d", ctx.State(), sink.pulls)
	}
}

func TestFailedResumeStaysSuspended(t *testing.T) {
	ctx, sink := newPullingContext(t)
	if err := ctx.Suspend(); err != nil {
		t.Fatal(err)
	}
	sink.playErr = errors.New("device busy")
	if err := ctx.Resume(); err == nil {
		t.Fatal("Resume succeeded")
	}
	if ctx.State() != StateSuspended {
		t.Fatalf("state = %v", ctx.State())
	}
	sink.playErr = nil
	if err := ctx.Resume(); err != nil || ctx.State() != StateRunning {
		t.Fatalf("retry: err=%v state=%v", err, ctx.State())
	}
}

func TestClosedContextRejectsVoices(t *testing.T) {
	ctx, _ := newTestContext(t)
	if err := ctx.Close(); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := ctx.Start(Meta{}, &constNode{}, time.Second, nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("Start after Close = %v", err)
	}
	if err := ctx.Resume(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Resume after Close = %v", err)
	}
}

func TestUnavailableSink(t *testing.T) {
	cause := errors.New("no device")
	_, err := NewContext(Config{SampleRate: 48000, Backend: BackendOto, Sink: func(int, SampleSource) (Sink, error) {
		return nil, cause
	}})
	var ue *UnavailableError
	if !errors.As(err, &ue) || !errors.Is(err, cause) || ue.Backend != BackendOto {
		t.Fatalf("err = %v", err)
	}
	_, err = NewContext(Config{SampleRate: 48000, Sink: func(int, SampleSource) (Sink, error) {
		return &failingSink{playErr: cause}, nil
	}})
	if !errors.As(err, &ue) {
		t.Fatalf("play failure err = %v", err)
	}
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{"": BackendEbiten, "OTO": BackendOto, "headless": BackendHeadless} {
		got, err := ParseBackend(in)
		if err != nil || got != want {
			t.Fatalf("ParseBackend(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseBackend("alsa"); err == nil {
		t.Fatal("expected error")
	}
}

type finiteSource struct{ calls int }

func (s *finiteSource) Process(dst []float32) {
	s.calls++
	for i := range dst {
		dst[i] = 0.25
	}
}

func (s *finiteSource) State() State {
	if s.calls >= 2 {
		return StateClosed
	}
	return StateRunning
}

func TestStreamReaderEncodes(t *testing.T) {
	r := NewStreamReader(&finiteSource{})
	p := make([]byte, 16)
	n, err := r.Read(p)
	if n != 16 || err != nil {
		t.Fatalf("first read = %d, %v", n, err)
	}
	// 0.25 = 0x3e800000
	if p[0] != 0 || p[1] != 0 || p[2] != 0x80 || p[3] != 0x3e {
		t.Fatalf("encoding = % x", p[:4])
	}
	if _, err := r.Read(p); err != io.EOF {
		t.Fatalf("second read err = %v, want EOF", err)
	}
	if r.Frames() != 4 {
		t.Fatalf("frames = %d", r.Frames())
	}
}

func TestStreamReaderEndsAfterClose(t *testing.T) {
	ctx, err := NewContext(Config{SampleRate: 48000, Backend: BackendHeadless, Clock: clock.NewManual(time.Unix(0, 0))})
	if err != nil {
		t.Fatal(err)
	}
	r := NewStreamReader(ctx)
	p := make([]byte, 64)
	if _, err := r.Read(p); err != nil {
		t.Fatalf("read while running: %v", err)
	}
	_ = ctx.Close()
	if n, err := r.Read(p); n != 64 || err != io.EOF {
		t.Fatalf("read after close = %d, %v", n, err)
	}
}
