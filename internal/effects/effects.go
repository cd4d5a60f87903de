package effects

import (
	"fmt"
	"strconv"
	"strings"
)

// Effector processes one stereo frame of the master bus.
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(l, r float32) (float32, float32) {
	for _, e := range c.effects {
		l, r = e.Process(l, r)
	}
	return l, r
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

func (c *Chain) Len() int { return len(c.effects) }

// ParseChain builds a chain from effect specs of the form "type p1,p2,...".
// Supported types: comp (compressor), reverb, delay. Missing parameters take
// their defaults; an empty spec list yields an empty chain.
func ParseChain(sampleRate int, specs []string) (*Chain, error) {
	chain := NewChain()
	for _, spec := range specs {
		eff, err := Parse(sampleRate, spec)
		if err != nil {
			return nil, err
		}
		chain.Add(eff)
	}
	return chain, nil
}

// Parse builds a single effect from a spec such as "reverb 0.4,0.6,0.15".
func Parse(sampleRate int, spec string) (Effector, error) {
	raw := strings.TrimSpace(spec)
	raw = strings.TrimPrefix(raw, "{")
	raw = strings.TrimSuffix(raw, "}")
	parts := strings.SplitN(strings.TrimSpace(raw), " ", 2)
	kind := strings.ToLower(strings.TrimSpace(parts[0]))
	var params []float64
	if len(parts) > 1 {
		for _, p := range strings.Split(parts[1], ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("effect %q: bad parameter %q: %w", kind, p, err)
			}
			params = append(params, v)
		}
	}
	param := func(idx int, def float64) float32 {
		if idx < len(params) {
			return float32(params[idx])
		}
		return float32(def)
	}
	switch kind {
	case "comp", "compressor", "limiter":
		return NewCompressor(sampleRate,
			param(0, -12), // threshold dB
			param(1, 4),   // ratio
			param(2, 5),   // attack ms
			param(3, 100), // release ms
			param(4, 0),   // makeup dB
		), nil
	case "reverb":
		return NewReverb(sampleRate,
			param(0, 0.4),  // room size
			param(1, 0.6),  // feedback
			param(2, 0.15), // wet
		), nil
	case "delay", "echo":
		return NewDelay(sampleRate,
			float64(param(0, 180)), // delay ms
			param(1, 0.3),          // feedback
			param(2, 0.5),          // cross
			param(3, 0.2),          // wet
		), nil
	case "":
		return nil, fmt.Errorf("empty effect spec")
	}
	return nil, fmt.Errorf("unknown effect %q", kind)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
