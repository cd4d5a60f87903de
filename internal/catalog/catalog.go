// Package catalog holds the immutable tables of sound recipes the engine can
// play, keyed by symbolic id.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/cbegin/quizsfx-go/internal/spatial"
	"github.com/cbegin/quizsfx-go/internal/synth"
)

// Recipe describes one cue: a run of tones started Spacing apart.
type Recipe struct {
	ID          string
	Frequencies []float64
	Waveform    synth.Waveform
	Duration    time.Duration // per tone
	Spacing     time.Duration
	Volume      float64
	Position    spatial.Position
	// NotePositions, when set, places each tone separately.
	NotePositions []spatial.Position
	Vibrato       bool
	// MustPlay requests are queued instead of dropped when the engine is
	// at its concurrency ceiling.
	MustPlay bool
}

// Span is the time from the first tone's start to the last tone's end.
func (r Recipe) Span() time.Duration {
	if len(r.Frequencies) == 0 {
		return 0
	}
	return time.Duration(len(r.Frequencies)-1)*r.Spacing + r.Duration
}

// PositionFor resolves where tone i sounds. An override wins over per-note
// and base positions.
func (r Recipe) PositionFor(i int, override *spatial.Position) spatial.Position {
	switch {
	case override != nil:
		return *override
	case i >= 0 && i < len(r.NotePositions):
		return r.NotePositions[i]
	default:
		return r.Position
	}
}

// Validate checks the recipe invariants.
func (r Recipe) Validate() error {
	if r.ID == "" {
		return errors.New("recipe has empty id")
	}
	if len(r.Frequencies) == 0 {
		return fmt.Errorf("recipe %q: no frequencies", r.ID)
	}
	for i, f := range r.Frequencies {
		if !(f > 0) || math.IsInf(f, 0) {
			return fmt.Errorf("recipe %q: frequency %d is %v", r.ID, i, f)
		}
	}
	if !r.Waveform.Valid() {
		return fmt.Errorf("recipe %q: invalid waveform %v", r.ID, r.Waveform)
	}
	if r.Duration <= 0 {
		return fmt.Errorf("recipe %q: duration must be positive", r.ID)
	}
	if r.Spacing < 0 || (r.Spacing == 0 && len(r.Frequencies) > 1) {
		return fmt.Errorf("recipe %q: spacing must be positive between %d notes", r.ID, len(r.Frequencies))
	}
	if !(r.Volume >= 0) || math.IsInf(r.Volume, 0) {
		return fmt.Errorf("recipe %q: invalid volume %v", r.ID, r.Volume)
	}
	if n := len(r.NotePositions); n != 0 && n != len(r.Frequencies) {
		return fmt.Errorf("recipe %q: %d note positions for %d frequencies", r.ID, n, len(r.Frequencies))
	}
	return nil
}

// UnknownSoundError is returned by Lookup for ids the catalog does not hold.
type UnknownSoundError struct {
	ID string
}

func (e *UnknownSoundError) Error() string {
	return fmt.Sprintf("unknown sound %q", e.ID)
}

// Catalog is a read-only recipe table plus the role bindings the feedback
// helpers use. It is safe for concurrent use.
type Catalog struct {
	name    string
	recipes map[string]Recipe
	roles   map[Role]string
}

// New validates recipes and role bindings. Recipes bound to the Correct,
// Incorrect and Achievement roles are always must-play.
func New(name string, recipes []Recipe, roles map[Role]string) (*Catalog, error) {
	c := &Catalog{
		name:    name,
		recipes: make(map[string]Recipe, len(recipes)),
		roles:   make(map[Role]string, len(roles)),
	}
	for _, r := range recipes {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.recipes[r.ID]; dup {
			return nil, fmt.Errorf("duplicate recipe %q", r.ID)
		}
		r.Frequencies = slices.Clone(r.Frequencies)
		r.NotePositions = slices.Clone(r.NotePositions)
		c.recipes[r.ID] = r
	}
	for role, id := range roles {
		r, ok := c.recipes[id]
		if !ok {
			return nil, fmt.Errorf("role %v bound to unknown recipe %q", role, id)
		}
		if role.mustPlay() {
			r.MustPlay = true
			c.recipes[id] = r
		}
		c.roles[role] = id
	}
	return c, nil
}

func mustNew(name string, recipes []Recipe, roles map[Role]string) *Catalog {
	c, err := New(name, recipes, roles)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Name() string { return c.name }

func (c *Catalog) Len() int { return len(c.recipes) }

// Lookup returns a copy of the recipe for id.
func (c *Catalog) Lookup(id string) (Recipe, error) {
	r, ok := c.recipes[id]
	if !ok {
		return Recipe{}, &UnknownSoundError{ID: id}
	}
	r.Frequencies = slices.Clone(r.Frequencies)
	r.NotePositions = slices.Clone(r.NotePositions)
	return r, nil
}

// IDs lists every recipe id in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.recipes))
	for id := range c.recipes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Role returns the id bound to r, if any.
func (c *Catalog) Role(r Role) (string, bool) {
	id, ok := c.roles[r]
	return id, ok
}
