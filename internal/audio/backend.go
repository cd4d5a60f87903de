package audio

import (
	"fmt"
	"strings"
	"time"
)

// defaultBufferDuration bounds output latency for device backends.
const defaultBufferDuration = 40 * time.Millisecond

// Sink is an output device pulling samples from a SampleSource.
type Sink interface {
	// Play starts or resumes pulling samples. It may pull synchronously
	// before returning.
	Play() error
	// Pause stops pulling samples without releasing the device.
	Pause() error
	Close() error
}

// SinkFactory opens a Sink for src at the given sample rate.
type SinkFactory func(sampleRate int, src SampleSource) (Sink, error)

type Backend string

const (
	BackendEbiten   Backend = "ebiten"
	BackendOto      Backend = "oto"
	BackendHeadless Backend = "headless"
)

// ParseBackend maps a backend name to a Backend.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendEbiten, BackendOto, BackendHeadless:
		return b, nil
	case "":
		return BackendEbiten, nil
	default:
		return "", fmt.Errorf("invalid backend %q (expected ebiten|oto|headless)", name)
	}
}

// Factory returns the SinkFactory for a backend.
func (b Backend) Factory() (SinkFactory, error) {
	switch b {
	case BackendEbiten:
		return newEbitenSink, nil
	case BackendOto:
		return newOtoSink, nil
	case BackendHeadless:
		return NewHeadlessSink, nil
	}
	return nil, fmt.Errorf("unknown backend %q", string(b))
}
