// Package spatial places mono voices in 3D space around a fixed listener
// using a spherical-head binaural model.
package spatial

import (
	"fmt"
	"math"
	"strings"

	"github.com/kvartborg/vector"
)

// Position is a point in listener space. +X is right, +Y is up and -Z is
// straight ahead of the default listener.
type Position struct {
	X, Y, Z float64
}

func (p Position) vec() vector.Vector { return vector.Vector{p.X, p.Y, p.Z} }

func (p Position) String() string {
	return fmt.Sprintf("{x:%g y:%g z:%g}", p.X, p.Y, p.Z)
}

// DistanceModel selects how gain falls off with distance.
type DistanceModel int

const (
	DistanceInverse DistanceModel = iota
	DistanceExponential
	DistanceLinear
)

func (m DistanceModel) String() string {
	switch m {
	case DistanceInverse:
		return "inverse"
	case DistanceExponential:
		return "exponential"
	case DistanceLinear:
		return "linear"
	}
	return "unknown"
}

func ParseDistanceModel(name string) (DistanceModel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "inverse":
		return DistanceInverse, nil
	case "", "exponential", "exp":
		return DistanceExponential, nil
	case "linear":
		return DistanceLinear, nil
	}
	return 0, fmt.Errorf("invalid distance model %q (expected inverse|exponential|linear)", name)
}

// Listener is fixed when the engine initializes; only sources move.
type Listener struct {
	Position Position
	Forward  Position
	Up       Position
}

func DefaultListener() Listener {
	return Listener{
		Forward: Position{Z: -1},
		Up:      Position{Y: 1},
	}
}

type Config struct {
	Listener      Listener
	DistanceModel DistanceModel
	RefDistance   float64
	MaxDistance   float64
	Rolloff       float64
	HeadRadius    float64 // metres
}

func DefaultConfig() Config {
	return Config{
		Listener:      DefaultListener(),
		DistanceModel: DistanceExponential,
		RefDistance:   1,
		MaxDistance:   10,
		Rolloff:       1,
		HeadRadius:    0.0875,
	}
}

// DistanceGain applies the configured distance model. Emission is
// omnidirectional so there is no cone term.
func (c Config) DistanceGain(d float64) float64 {
	ref := c.RefDistance
	if ref <= 0 {
		ref = 1
	}
	switch c.DistanceModel {
	case DistanceExponential:
		return math.Pow(math.Max(d, ref)/ref, -c.Rolloff)
	case DistanceLinear:
		maxD := math.Max(c.MaxDistance, ref)
		if maxD == ref {
			return 1
		}
		d = math.Min(math.Max(d, ref), maxD)
		return 1 - c.Rolloff*(d-ref)/(maxD-ref)
	default:
		return ref / (ref + c.Rolloff*(math.Max(d, ref)-ref))
	}
}

// Locate returns the source direction relative to the listener: azimuth in
// radians (0 ahead, +π/2 right, ±π behind), elevation in radians (+π/2
// overhead) and distance.
func (c Config) Locate(p Position) (azimuth, elevation, distance float64) {
	rel := p.vec().Sub(c.Listener.Position.vec())
	distance = rel.Magnitude()
	if distance < 1e-9 {
		return 0, 0, 0
	}
	fwd := unitOr(c.Listener.Forward.vec(), vector.Vector{0, 0, -1})
	up := unitOr(c.Listener.Up.vec(), vector.Vector{0, 1, 0})
	right, err := fwd.Cross(up)
	if err != nil || right.Magnitude() < 1e-9 {
		right = vector.Vector{1, 0, 0}
	}
	right = right.Unit()
	dir := rel.Unit()
	x, y, z := dir.Dot(right), dir.Dot(up), dir.Dot(fwd)
	return math.Atan2(x, z), math.Asin(math.Max(-1, math.Min(1, y))), distance
}

func unitOr(v, fallback vector.Vector) vector.Vector {
	if v.Magnitude() < 1e-9 {
		return fallback
	}
	return v.Unit()
}
