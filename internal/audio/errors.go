package audio

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when scheduling on a context that has been closed.
var ErrClosed = errors.New("audio context closed")

// UnavailableError reports that the host could not provide audio output.
type UnavailableError struct {
	Backend Backend
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("audio unavailable (%s backend): %v", e.Backend, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// SuspendedError reports that a suspended context could not be resumed.
type SuspendedError struct {
	Err error
}

func (e *SuspendedError) Error() string {
	return fmt.Sprintf("audio context suspended: %v", e.Err)
}

func (e *SuspendedError) Unwrap() error { return e.Err }
