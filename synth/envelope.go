package synth

import "math"

// Decay is an exponential decay with rate k. It is strictly decreasing for
// k > 0 and never reaches zero.
func Decay(t, k float64) float64 {
	return math.Exp(-k * t)
}

// Sustain holds at 1 until frac of dur has elapsed and then decays
// exponentially with rate k.
func Sustain(t, dur, frac, k float64) float64 {
	hold := dur * frac
	if t < hold {
		return 1
	}
	return math.Exp(-k * (t - hold))
}

// Attack ramps linearly from 0 to 1 over window seconds.
func Attack(t, window float64) float64 {
	if window <= 0 || t >= window {
		return 1
	}
	if t <= 0 {
		return 0
	}
	return t / window
}

// FadeOut ramps linearly from 1 to 0 over the last window seconds before
// end. It is exactly 0 at end and after it.
func FadeOut(t, end, window float64) float64 {
	if t >= end {
		return 0
	}
	left := end - t
	if window <= 0 || left >= window {
		return 1
	}
	return left / window
}

// Strike is a percussive shape: a linear attack over attack seconds
// followed by an exponential decay with rate k measured from the peak.
func Strike(t, attack, k float64) float64 {
	if t < 0 {
		return 0
	}
	if t < attack {
		return t / attack
	}
	return math.Exp(-k * (t - attack))
}

// Envelope multiplies its components and clamps the result at zero.
func Envelope(parts ...float64) float64 {
	g := 1.0
	for _, p := range parts {
		g *= p
	}
	if g < 0 || math.IsNaN(g) {
		return 0
	}
	return g
}

type Intensity int

const (
	Light Intensity = iota
	Medium
	Strong
	Ghost
	Closed
	Open
)

// Hit places a percussive event of the given intensity on a slot.
type Hit struct {
	Slot      int
	Intensity Intensity
	Note      int // index into the pitches of the sound using the table
}

// HitShape describes how one intensity class sounds.
type HitShape struct {
	Gain   float64 // amplitude multiplier
	Attack float64 // seconds
	Decay  float64 // exponential decay rate after the attack
}

// GateTable is a fixed rhythmic pattern: the loop is divided into Slots
// equal slots and only the listed hits sound, each for at most Window
// seconds from the start of its slot. Everything else is true silence.
type GateTable struct {
	Loop   float64 // loop length in seconds
	Slots  int
	Window float64
	Hits   []Hit
	Shapes map[Intensity]HitShape
}

// gateRelease is the linear ramp that closes every hit at the end of its
// window so the cut to silence does not click.
const gateRelease = 0.004

// SlotLength returns the duration of a single slot in seconds.
func (g *GateTable) SlotLength() float64 {
	return g.Loop / float64(g.Slots)
}

// At reports the hits active at time t together with the time elapsed since
// the start of the slot. Several hits may share a slot.
func (g *GateTable) At(t float64) (hits []Hit, local float64) {
	if g.Slots <= 0 || g.Loop <= 0 || t < 0 {
		return nil, 0
	}
	pos := math.Mod(t, g.Loop) / g.SlotLength()
	slot := int(pos)
	local = (pos - float64(slot)) * g.SlotLength()
	if local >= g.Window {
		return nil, local
	}
	for _, h := range g.Hits {
		if h.Slot == slot {
			hits = append(hits, h)
		}
	}
	return hits, local
}

// Gain returns the summed gain envelope of the gate at time t. It is exactly
// 0 outside listed slots.
func (g *GateTable) Gain(t float64) float64 {
	return g.Render(t, func(Hit, float64) float64 { return 1 })
}

// Render evaluates voice for every hit active at t, weighting each by its
// own intensity-dependent envelope. voice receives the hit and the time
// elapsed since its slot started.
func (g *GateTable) Render(t float64, voice func(h Hit, local float64) float64) float64 {
	hits, local := g.At(t)
	var sum float64
	for _, h := range hits {
		s := g.Shapes[h.Intensity]
		sum += s.Gain * Strike(local, s.Attack, s.Decay) * FadeOut(local, g.Window, gateRelease) * voice(h, local)
	}
	return sum
}
