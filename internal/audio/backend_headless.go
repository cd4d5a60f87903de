package audio

import "sync"

// HeadlessSink never touches an audio device. Samples are only produced when
// the owner pulls them from the context directly (offline rendering, tests).
type HeadlessSink struct {
	mu      sync.Mutex
	playing bool
	closed  bool
}

func NewHeadlessSink(int, SampleSource) (Sink, error) {
	return &HeadlessSink{}, nil
}

func (s *HeadlessSink) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.playing = true
	return nil
}

func (s *HeadlessSink) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	return nil
}

func (s *HeadlessSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.closed = true
	return nil
}

func (s *HeadlessSink) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}
