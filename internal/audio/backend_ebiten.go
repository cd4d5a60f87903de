package audio

import (
	"fmt"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// ebiten allows a single audio context per process; every engine
// initialization after the first reuses it.
var (
	ebitenContextMu sync.Mutex
	ebitenContext   *ebitaudio.Context
)

func sharedEbitenContext(sampleRate int) (*ebitaudio.Context, error) {
	ebitenContextMu.Lock()
	defer ebitenContextMu.Unlock()
	if ebitenContext == nil {
		// The host application may already own one.
		if cur := ebitaudio.CurrentContext(); cur != nil {
			ebitenContext = cur
		} else {
			ebitenContext = ebitaudio.NewContext(sampleRate)
		}
	}
	if got := ebitenContext.SampleRate(); got != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", got, sampleRate)
	}
	return ebitenContext, nil
}

// ebitenSink never reports a missing device: ebiten opens the driver lazily
// and swallows its failure, so this backend plays silence instead of
// returning UnavailableError. BackendOto detects it.
type ebitenSink struct {
	player *ebitaudio.Player
	reader *StreamReader
}

func newEbitenSink(sampleRate int, src SampleSource) (Sink, error) {
	ctx, err := sharedEbitenContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(src)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	// Cues are short; keep output latency low.
	pl.SetBufferSize(defaultBufferDuration)
	return &ebitenSink{player: pl, reader: reader}, nil
}

func (s *ebitenSink) Play() error {
	s.player.Play()
	return nil
}

func (s *ebitenSink) Pause() error {
	s.player.Pause()
	return nil
}

func (s *ebitenSink) Close() error {
	s.player.Pause()
	if err := s.player.Close(); err != nil {
		return err
	}
	return s.reader.Close()
}
