package quizsfx

import (
	"github.com/cbegin/quizsfx-go/internal/audio"
	"github.com/cbegin/quizsfx-go/internal/catalog"
)

// UnknownSoundError reports a cue id missing from the catalog.
type UnknownSoundError = catalog.UnknownSoundError

// AudioUnavailableError reports that the host could not provide audio
// output. Once returned, the engine stays silent.
type AudioUnavailableError = audio.UnavailableError

// ContextSuspendedError reports that suspended output could not be resumed.
type ContextSuspendedError = audio.SuspendedError
