package audio

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
)

// SampleSource fills dst with interleaved stereo float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// stater is implemented by *Context; a closed source ends the stream.
type stater interface {
	State() State
}

// StreamReader encodes a SampleSource as the little-endian float32 stereo
// byte stream device players pull from. Partial frames are never written.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
	frames int64
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(p) / 8
	if n == 0 {
		return 0, nil
	}
	r.buf = growTo(r.buf, n*2)
	r.source.Process(r.buf)
	for i, s := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	r.frames += int64(n)
	if st, ok := r.source.(stater); ok && st.State() == StateClosed {
		return n * 8, io.EOF
	}
	return n * 8, nil
}

// Frames is the number of stereo frames delivered so far.
func (r *StreamReader) Frames() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *StreamReader) Close() error { return nil }

func growTo(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}
