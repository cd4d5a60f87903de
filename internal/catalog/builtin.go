package catalog

import (
	"math"
	"time"

	"github.com/cbegin/quizsfx-go/internal/spatial"
	"github.com/cbegin/quizsfx-go/internal/synth"
)

const ms = time.Millisecond

func pos(x, y, z float64) spatial.Position { return spatial.Position{X: x, Y: y, Z: z} }

// Spatial returns the default catalog of spatialized quiz cues.
func Spatial() *Catalog {
	return mustNew("spatial", []Recipe{
		{
			ID:          "correct-advanced",
			Frequencies: []float64{C5, E5, G5, C6},
			Waveform:    synth.Sine,
			Duration:    120 * ms,
			Spacing:     60 * ms,
			Volume:      1.2,
			Position:    pos(1, 0, 0),
			Vibrato:     true,
		},
		{
			ID:          "incorrect-encouraging",
			Frequencies: []float64{E4, C4},
			Waveform:    synth.Triangle,
			Duration:    150 * ms,
			Spacing:     150 * ms,
			Volume:      0.6,
			Position:    pos(-0.5, 0, 0),
		},
		{
			ID:          "perfect-streak-epic",
			Frequencies: []float64{A4, Cs5, E5, G5, B5},
			Waveform:    synth.Sine,
			Duration:    800 * ms,
			Spacing:     120 * ms,
			Volume:      1.5,
			Position:    pos(0, 0.5, 0),
			Vibrato:     true,
		},
		{
			ID:          "achievement-fanfare",
			Frequencies: []float64{C5, E5, G5, C6, E6},
			Waveform:    synth.Triangle,
			Duration:    1200 * ms,
			Spacing:     150 * ms,
			Volume:      1.4,
			Position:    pos(0, 1, 0),
			Vibrato:     true,
		},
		{
			ID:          "milestone-celebration",
			Frequencies: []float64{A4, C5, E5, G5},
			Waveform:    synth.Sine,
			Duration:    1000 * ms,
			Spacing:     120 * ms,
			Volume:      1.3,
			Position:    pos(0.5, 0.5, -0.2),
			Vibrato:     true,
		},
		{
			ID:          "completion-victory",
			Frequencies: []float64{C5, E5, G5, C6, E6, G6},
			Waveform:    synth.Sine,
			Duration:    2500 * ms,
			Spacing:     150 * ms,
			Volume:      1.8,
			Vibrato:     true,
		},
		{
			ID:          "countdown-urgent",
			Frequencies: []float64{A3, B3},
			Waveform:    synth.Sawtooth,
			Duration:    300 * ms,
			Spacing:     80 * ms,
			Volume:      1.0,
			Position:    pos(0, -0.5, 0.5),
		},
		{
			ID:          "time-alert-intense",
			Frequencies: []float64{F3, G3},
			Waveform:    synth.Square,
			Duration:    500 * ms,
			Spacing:     100 * ms,
			Volume:      1.1,
			Position:    pos(-1, 0, 0),
		},
		{
			ID:          "button-futuristic",
			Frequencies: []float64{G5, B5},
			Waveform:    synth.Sine,
			Duration:    100 * ms,
			Spacing:     40 * ms,
			Volume:      0.8,
			Position:    pos(0.3, 0, 0),
		},
		{
			ID:          "page-transition-smooth",
			Frequencies: []float64{A4, Cs5, E5},
			Waveform:    synth.Sine,
			Duration:    600 * ms,
			Spacing:     80 * ms,
			Volume:      1.0,
			Position:    pos(0, 0, -0.5),
			Vibrato:     true,
		},
		{
			ID:          "roulette-spinning",
			Frequencies: []float64{B3, D4, F4, G4, A4},
			Waveform:    synth.Sine,
			Duration:    3000 * ms,
			Spacing:     150 * ms,
			Volume:      1.2,
			Vibrato:     true,
		},
		{
			ID:          "confetti-celebration",
			Frequencies: []float64{D5, E5, Fs5, G5},
			Waveform:    synth.Triangle,
			Duration:    1500 * ms,
			Spacing:     100 * ms,
			Volume:      1.4,
			Position:    pos(0, 1, -0.5),
			Vibrato:     true,
		},
		{
			ID:          "prize-victory",
			Frequencies: []float64{C5, E5, G5, C6, E6},
			Waveform:    synth.Sine,
			Duration:    2000 * ms,
			Spacing:     120 * ms,
			Volume:      1.8,
			Position:    pos(0, 0.5, 0),
			Vibrato:     true,
		},
	}, map[Role]string{
		RoleCorrect:     "correct-advanced",
		RoleIncorrect:   "incorrect-encouraging",
		RoleStreak:      "perfect-streak-epic",
		RoleAchievement: "achievement-fanfare",
		RoleCompletion:  "completion-victory",
		RoleCelebration: "confetti-celebration",
		RoleTransition:  "page-transition-smooth",
		RoleCountdown:   "countdown-urgent",
		RoleAlert:       "time-alert-intense",
		RoleClick:       "button-futuristic",
		RoleSpin:        "roulette-spinning",
		RolePrize:       "prize-victory",
		RoleProgress:    "milestone-celebration",
	})
}

// Classic returns the arcade-style cue family whose arpeggios move around
// the listener note by note.
func Classic() *Catalog {
	return mustNew("classic", []Recipe{
		{
			ID:          "correct",
			Frequencies: []float64{C5, E5, G5, C6},
			Waveform:    synth.Sine,
			Duration:    120 * ms,
			Spacing:     60 * ms,
			Volume:      1.2,
			Position:    pos(1, 0, 0),
		},
		{
			ID:          "incorrect",
			Frequencies: []float64{E4, C4},
			Waveform:    synth.Triangle,
			Duration:    150 * ms,
			Spacing:     150 * ms,
			Volume:      0.6,
			Position:    pos(-0.5, 0, 0),
		},
		{
			ID:            "level-up",
			Frequencies:   []float64{C4, E4, G4, C5, E5, G5},
			Waveform:      synth.Sine,
			Duration:      180 * ms,
			Spacing:       100 * ms,
			Volume:        1.4,
			NotePositions: orbit(6, risingPath),
		},
		{
			ID:            "perfect-streak",
			Frequencies:   []float64{A4, Cs5, E5, G5, A5, C6},
			Waveform:      synth.Sine,
			Duration:      250 * ms,
			Spacing:       80 * ms,
			Volume:        1.8,
			NotePositions: orbit(6, spiralPath),
			Vibrato:       true,
		},
		{
			ID:          "achievement",
			Frequencies: []float64{C5, E5, G5, C6},
			Waveform:    synth.Triangle,
			Duration:    400 * ms,
			Spacing:     100 * ms,
			Volume:      1.3,
			Position:    pos(0, 1, -0.5),
		},
		{
			ID:          "countdown",
			Frequencies: []float64{800},
			Waveform:    synth.Square,
			Duration:    100 * ms,
			Volume:      0.8,
			Position:    pos(0, -0.5, 0),
		},
		{
			ID:            "time-alert",
			Frequencies:   []float64{1200, 1400, 1600},
			Waveform:      synth.Square,
			Duration:      80 * ms,
			Spacing:       120 * ms,
			Volume:        1.5,
			NotePositions: orbit(3, sweepPath),
		},
		{
			ID:          "button-click",
			Frequencies: []float64{600},
			Waveform:    synth.Sine,
			Duration:    50 * ms,
			Volume:      0.7,
		},
		{
			ID:            "page-transition",
			Frequencies:   []float64{A4, Cs5},
			Waveform:      synth.Sine,
			Duration:      300 * ms,
			Spacing:       150 * ms,
			Volume:        1.0,
			NotePositions: []spatial.Position{pos(-1, 0, 0), pos(1, 0, 0)},
		},
	}, map[Role]string{
		RoleCorrect:     "correct",
		RoleIncorrect:   "incorrect",
		RoleStreak:      "perfect-streak",
		RoleAchievement: "achievement",
		RoleCompletion:  "level-up",
		RoleCelebration: "perfect-streak",
		RoleTransition:  "page-transition",
		RoleCountdown:   "countdown",
		RoleAlert:       "time-alert",
		RoleClick:       "button-click",
		RolePrize:       "achievement",
		RoleProgress:    "level-up",
	})
}

// risingPath circles the listener while climbing.
func risingPath(i float64) spatial.Position {
	return pos(math.Sin(i*0.8), i*0.1, math.Cos(i*0.8))
}

func spiralPath(i float64) spatial.Position {
	return pos(math.Sin(i*1.5)*1.5, math.Cos(i*1.2)*0.8, math.Sin(i*0.9))
}

// sweepPath swings side to side just above ear level.
func sweepPath(i float64) spatial.Position {
	return pos(math.Sin(i*2.5), 0.3, 0)
}

func orbit(n int, at func(i float64) spatial.Position) []spatial.Position {
	out := make([]spatial.Position, n)
	for i := range out {
		out[i] = at(float64(i))
	}
	return out
}

// ByName returns a built-in catalog.
func ByName(name string) (*Catalog, bool) {
	switch name {
	case "", "spatial":
		return Spatial(), true
	case "classic":
		return Classic(), true
	}
	return nil, false
}
