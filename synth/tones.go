package synth

import "fmt"

// Timbre is one of the melodic tone recipes.
type Timbre int

const (
	Bell Timbre = iota
	Soft
	Bright
	Sparkle
)

func (t Timbre) String() string {
	switch t {
	case Bell:
		return "bell"
	case Soft:
		return "soft"
	case Bright:
		return "bright"
	case Sparkle:
		return "sparkle"
	}
	return fmt.Sprintf("timbre(%d)", int(t))
}

type timbre struct {
	partials    []partial
	decay       float64
	offPartials []partial
	offDecay    float64
}

var timbres = map[Timbre]timbre{
	Bell: {
		partials:    []partial{{1, 1}, {2, 0.3}, {3, 0.1}},
		decay:       1.8,
		offPartials: []partial{{1, 1}, {2, 0.15}},
		offDecay:    3.5,
	},
	Soft: {
		partials:    []partial{{1, 1}},
		decay:       1.2,
		offPartials: []partial{{1, 1}},
		offDecay:    3.0,
	},
	Bright: {
		partials:    []partial{{1, 1}, {1.5, 0.2}},
		decay:       1.4,
		offPartials: []partial{{1, 1}, {1.5, 0.1}},
		offDecay:    3.2,
	},
	Sparkle: {
		partials:    []partial{{1, 1}, {2.5, 0.4}, {4, 0.2}},
		decay:       1.6,
		offPartials: []partial{{1, 1}, {2.5, 0.2}, {4, 0.1}},
		offDecay:    3.8,
	},
}

// Register is one row of four number pads.
type Register struct {
	Prefix   string
	Multiple float64 // applied to the base scale
	Timbre   Timbre
}

var Registers = [4]Register{
	{"seed", 1, Bell},
	{"sprout", 1.5, Soft},
	{"bud", 2, Bright},
	{"flower", 2.5, Sparkle},
}

// Pentatonic is the C major pentatonic scale the melodic pads are tuned to.
var Pentatonic = [5]float64{261.63, 293.66, 329.63, 392.00, 440.00}

const (
	NumMelodic   = 16
	PadsPerRow   = 4
	offSuffix    = "_off"
	offDetune    = 0.85
	toneLength   = 0.7
	toneAttack   = 0.02
	toneFade     = 0.1
	toneGain     = 0.24
	offLength    = 0.3
	offAttack    = 0.01
	offFade      = 0.05
	offGain      = 0.18
	ritualFadeIn = 0.005
)

// MelodicName returns the catalog name of melodic pad i (0 based), e.g.
// "seed_1" or "flower_16".
func MelodicName(i int) string {
	return fmt.Sprintf("%s_%d", Registers[(i/PadsPerRow)%len(Registers)].Prefix, i+1)
}

// OffName returns the name of the release variant of a melodic tone.
func OffName(name string) string {
	return name + offSuffix
}

// MelodicFrequency returns the fundamental of melodic pad i.
func MelodicFrequency(i int) float64 {
	row := (i / PadsPerRow) % len(Registers)
	col := i % PadsPerRow
	return Pentatonic[col%len(Pentatonic)] * Registers[row].Multiple
}

func melodicRecipes() []recipe {
	var recipes []recipe
	for i := 0; i < NumMelodic; i++ {
		var (
			name = MelodicName(i)
			freq = MelodicFrequency(i)
			tb   = timbres[Registers[i/PadsPerRow].Timbre]
		)
		recipes = append(recipes, melodicOn(name, freq, tb), melodicOff(OffName(name), freq, tb))
	}
	return recipes
}

func melodicOn(name string, freq float64, tb timbre) recipe {
	return recipe{
		name:     name,
		category: Melodic,
		duration: toneLength,
		gain:     toneGain,
		fadeOut:  toneFade,
		fn: func(t float64) float64 {
			env := Envelope(Attack(t, toneAttack), Decay(t, tb.decay))
			return additive(freq, t, tb.partials) * env
		},
	}
}

func melodicOff(name string, freq float64, tb timbre) recipe {
	freq *= offDetune
	return recipe{
		name:     name,
		category: MelodicOff,
		duration: offLength,
		gain:     offGain,
		fadeOut:  offFade,
		fn: func(t float64) float64 {
			env := Envelope(Attack(t, offAttack), Decay(t, tb.offDecay))
			return additive(freq, t, tb.offPartials) * env
		},
	}
}

// Shape selects the amplitude envelope of a plain tone.
type Shape int

const (
	ShapeSoft Shape = iota
	ShapeSustain
	ShapeFlat
)

func (s Shape) String() string {
	switch s {
	case ShapeSoft:
		return "soft"
	case ShapeSustain:
		return "sustain"
	case ShapeFlat:
		return "flat"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

func ParseShape(s string) (Shape, error) {
	switch s {
	case "soft":
		return ShapeSoft, nil
	case "sustain":
		return ShapeSustain, nil
	case "flat":
		return ShapeFlat, nil
	}
	return ShapeSoft, fmt.Errorf("not a valid envelope shape: %v", s)
}

// Tone renders a single waveform at freq for dur seconds. It is used for
// the rituals and for auditioning waveforms.
func Tone(name string, freq, dur float64, w Waveform, shape Shape, sampleRate int) *Buffer {
	return toneRecipe(name, freq, dur, w, shape).render(sampleRate)
}

func toneRecipe(name string, freq, dur float64, w Waveform, shape Shape) recipe {
	return recipe{
		name:     name,
		category: Ritual,
		duration: dur,
		gain:     0.3,
		fadeIn:   ritualFadeIn,
		fadeOut:  toneFade,
		fn: func(t float64) float64 {
			var env float64
			switch shape {
			case ShapeSoft:
				env = Decay(t, 2)
			case ShapeSustain:
				env = Sustain(t, dur, 0.8, 10)
			default:
				env = 1
			}
			return Sample(w, freq, t) * env
		},
	}
}

// Ritual sounds played when the garden wakes up and goes to sleep.
const Welcome = "welcome"

var (
	welcomeChord = []float64{261.63, 329.63, 392.00}
	goodnight    = []float64{392.00, 329.63, 261.63}
)

// GoodnightName returns the name of the i-th closing note.
func GoodnightName(i int) string {
	return fmt.Sprintf("goodnight_%d", i+1)
}

// NumGoodnight is the number of closing notes.
func NumGoodnight() int { return len(goodnight) }

func ritualRecipes() []recipe {
	recipes := []recipe{{
		name:     Welcome,
		category: Ritual,
		duration: 2,
		gain:     0.2,
		fadeIn:   ritualFadeIn,
		fadeOut:  toneFade,
		fn: func(t float64) float64 {
			var sum float64
			for _, f := range welcomeChord {
				sum += sine(f, t)
			}
			return sum / float64(len(welcomeChord)) * Decay(t, 0.5)
		},
	}}
	for i, f := range goodnight {
		recipes = append(recipes, toneRecipe(GoodnightName(i), f, 1.0, Sine, ShapeSoft))
	}
	return recipes
}
