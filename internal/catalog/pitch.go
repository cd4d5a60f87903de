package catalog

// Equal-tempered pitches (A4 = 440 Hz) used by the built-in cues.
const (
	F3  = 174.61
	G3  = 196.00
	A3  = 220.00
	B3  = 246.94
	C4  = 261.63
	D4  = 293.66
	E4  = 329.63
	F4  = 349.23
	G4  = 392.00
	A4  = 440.00
	C5  = 523.25
	Cs5 = 554.37
	D5  = 587.33
	E5  = 659.25
	Fs5 = 739.99
	G5  = 783.99
	A5  = 880.00
	B5  = 987.77
	C6  = 1046.50
	E6  = 1318.51
	G6  = 1567.98
)
