package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// oto also permits one context per process.
var (
	otoContextMu   sync.Mutex
	otoContext     *oto.Context
	otoContextRate int
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoContextMu.Lock()
	defer otoContextMu.Unlock()
	if otoContext != nil {
		if otoContextRate != sampleRate {
			return nil, fmt.Errorf("oto context already initialized at %d Hz (requested %d Hz)", otoContextRate, sampleRate)
		}
		return otoContext, nil
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   defaultBufferDuration,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	otoContext = ctx
	otoContextRate = sampleRate
	return ctx, nil
}

type otoSink struct {
	ctx    *oto.Context
	player *oto.Player
	reader *StreamReader
}

func newOtoSink(sampleRate int, src SampleSource) (Sink, error) {
	ctx, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(src)
	return &otoSink{ctx: ctx, player: ctx.NewPlayer(reader), reader: reader}, nil
}

// Play resumes the device context (a no-op unless it was suspended) before
// starting the player.
func (s *otoSink) Play() error {
	if err := s.ctx.Resume(); err != nil {
		return fmt.Errorf("resume oto context: %w", err)
	}
	if err := s.ctx.Err(); err != nil {
		return err
	}
	s.player.Play()
	return nil
}

func (s *otoSink) Pause() error {
	s.player.Pause()
	return nil
}

func (s *otoSink) Close() error {
	s.player.Pause()
	if err := s.player.Close(); err != nil {
		return err
	}
	return s.reader.Close()
}
