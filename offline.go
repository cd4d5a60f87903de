package quizsfx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/cbegin/quizsfx-go/internal/clock"
	"github.com/cbegin/quizsfx-go/internal/scheduler"
)

// RenderCue renders seconds of cue id into interleaved stereo float32 frames
// without touching an audio device. Engine options apply as for NewEngine;
// the backend and clock are always headless and simulated.
func RenderCue(id string, intensity, seconds float64, opts ...Option) ([]float32, error) {
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		return nil, fmt.Errorf("invalid render length %v", seconds)
	}
	clk := clock.NewManual(time.Unix(0, 0))
	opts = append(slices.Clone(opts), WithBackend(BackendHeadless), withClock(clk), WithEnabled(true))
	e, err := NewEngine(opts...)
	if err != nil {
		return nil, err
	}
	if _, err := e.catalog.Lookup(id); err != nil {
		return nil, err
	}
	if err := e.Initialize(); err != nil {
		return nil, err
	}
	defer e.Shutdown()
	if o := e.play(id, intensity); o != scheduler.Played {
		return nil, fmt.Errorf("cue %q not rendered: %s", id, o)
	}
	ctx := e.state.Context()
	if ctx == nil {
		return nil, errors.New("no processing context")
	}

	sr := e.cfg.sampleRate
	frames := int(math.Round(seconds * float64(sr)))
	out := make([]float32, frames*2)
	chunk := max(sr/1000, 1)
	var elapsed int
	for elapsed < frames {
		n := min(chunk, frames-elapsed)
		ctx.Process(out[elapsed*2 : (elapsed+n)*2])
		before := framesToDuration(elapsed, sr)
		elapsed += n
		clk.Advance(framesToDuration(elapsed, sr) - before)
	}
	return out, nil
}

func framesToDuration(frames, sampleRate int) time.Duration {
	return time.Duration(int64(frames) * int64(time.Second) / int64(sampleRate))
}

// EncodeWAVFloat32LE wraps interleaved float32 samples in a WAVE_FORMAT_IEEE_FLOAT file.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*channels*4))
	binary.LittleEndian.PutUint16(out[32:], uint16(channels*4))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
