package synth

import "math"

// Safe frequency range for the target audience.
const (
	MinFrequency = 200.0
	MaxFrequency = 4000.0
)

// ClampFrequency limits f to [MinFrequency, MaxFrequency].
func ClampFrequency(f float64) float64 {
	if f < MinFrequency || math.IsNaN(f) {
		return MinFrequency
	}
	if f > MaxFrequency {
		return MaxFrequency
	}
	return f
}

// Category groups sounds that share an output ceiling. Background textures
// are quieter than melodic hits so that all of them can loop at once.
type Category int

const (
	Texture Category = iota
	Melodic
	MelodicOff
	Ritual
)

func (c Category) String() string {
	switch c {
	case Texture:
		return "texture"
	case Melodic:
		return "melodic"
	case MelodicOff:
		return "melodic-off"
	case Ritual:
		return "ritual"
	}
	return "unknown"
}

// Ceiling is the peak amplitude a buffer of category c may reach.
func (c Category) Ceiling() float64 {
	switch c {
	case Texture:
		return 0.22
	case Melodic:
		return 0.35
	case MelodicOff:
		return 0.25
	default:
		return 0.3
	}
}

// Limit hard-clamps x to the ceiling of category c.
func Limit(c Category, x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	ceil := c.Ceiling()
	if x > ceil {
		return ceil
	}
	if x < -ceil {
		return -ceil
	}
	return x
}

const pcmScale = math.MaxInt16

// Quantize converts a sample in [-1, 1] to the signed 16 bit range.
func Quantize(x float64) int {
	v := math.Round(x * pcmScale)
	if v > pcmScale {
		return pcmScale
	}
	if v < -pcmScale {
		return -pcmScale
	}
	return int(v)
}
