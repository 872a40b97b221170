package synth

import "math"

// Background textures are 4 second loops, so everything rhythmic is laid
// out on sixteen 0.25 second slots.
const (
	loopLength = 4.0
	loopSlots  = 16
	loopFade   = 0.01
)

// Names of the background textures in big pad order.
var Textures = []string{"earth", "rain", "wind", "thunder", "trees", "birds", "insects", "sun"}

// IsTexture reports whether name is one of the background textures.
func IsTexture(name string) bool {
	for _, t := range Textures {
		if t == name {
			return true
		}
	}
	return false
}

func textureRecipes() []recipe {
	return []recipe{
		texture("earth", 0.09, earth),
		texture("rain", 0.16, rain),
		texture("wind", 0.09, wind),
		texture("thunder", 0.065, thunder),
		texture("trees", 0.12, trees),
		texture("birds", 0.15, birds),
		texture("insects", 0.12, insects),
		texture("sun", 0.13, sun),
	}
}

func texture(name string, gain float64, fn func(t float64) float64) recipe {
	return recipe{
		name:     name,
		category: Texture,
		loop:     true,
		duration: loopLength,
		gain:     gain,
		fadeIn:   loopFade,
		fadeOut:  loopFade,
		fn:       fn,
	}
}

// Low drone voiced as fundamental, fifth and octave.
var (
	earthRoot   = []partial{{1, 0.7}, {2, 0.25}, {3, 0.15}}
	earthFifth  = []partial{{1, 0.5}, {2, 0.2}}
	earthOctave = []partial{{1, 0.4}, {1.5, 0.15}}
)

func earth(t float64) float64 {
	const root = 220.0 // A3
	tv := Vibrato(t, 0.008, 0.3)
	wave := additive(root, tv, earthRoot) +
		additive(root*1.5, tv, earthFifth) +
		additive(root*2, tv, earthOctave)
	breathing := lfo(t, 0.82, 0.18, 0.08)
	return wave * breathing
}

// Arpeggiated droplets on E5, A5 and E6.
var (
	rainPitches = []float64{659.25, 880.00, 1318.51}
	rainGate    = &GateTable{
		Loop:   loopLength,
		Slots:  loopSlots,
		Window: loopLength / loopSlots,
		Hits: []Hit{
			{Slot: 0, Note: 0}, {Slot: 2, Note: 1}, {Slot: 4, Note: 2},
			{Slot: 8, Note: 1}, {Slot: 9, Note: 0},
			{Slot: 12, Note: 2}, {Slot: 13, Note: 1}, {Slot: 14, Note: 0},
		},
		Shapes: map[Intensity]HitShape{
			Light: {Gain: 1, Attack: 0.025, Decay: 24},
		},
	}
	rainPartials = []partial{{1, 1}, {1.5, 0.15}}
)

func rain(t float64) float64 {
	return rainGate.Render(t, func(h Hit, _ float64) float64 {
		return additive(rainPitches[h.Note], t, rainPartials)
	})
}

// Sustained D4-G4-A4 chord swelling like gusts of wind.
var (
	windD = []partial{{1, 0.6}, {1.5, 0.2}, {2, 0.1}}
	windG = []partial{{1, 0.5}, {1.25, 0.15}}
	windA = []partial{{1, 0.45}, {0.75, 0.12}}
)

func wind(t float64) float64 {
	tv := Vibrato(t, 0.005, 0.5)
	chord := additive(293.66, tv, windD) + additive(392.00, tv, windG) + additive(440.00, tv, windA)
	gust := lfo(t, 0.4, 0.6, 0.25)
	flutter := lfo(t, 1, 0.15, 1.0)
	return chord * Envelope(gust, flutter)
}

// Two low strikes per loop with a long decay.
var (
	thunderStrikes = []float64{0.3, 2.2}
	thunderRoot    = []partial{{1, 0.8}, {2, 0.4}, {3, 0.2}}
	thunderFifth   = []partial{{1, 0.6}, {2, 0.3}}
	thunderOctave  = []partial{{1, 0.5}, {1.5, 0.25}, {2.5, 0.15}}
)

const (
	thunderWindow = 1.8
	thunderAttack = 0.05
	thunderDecay  = 1.2
)

func thunder(t float64) float64 {
	const root = 200.0
	var env float64
	for _, at := range thunderStrikes {
		if local := t - at; local >= 0 && local <= thunderWindow {
			env += Strike(local, thunderAttack, thunderDecay) * FadeOut(local, thunderWindow, gateRelease)
		}
	}
	if env == 0 {
		return 0
	}
	wave := additive(root, t, thunderRoot) +
		additive(root*1.5, t, thunderFifth) +
		additive(root*2, t, thunderOctave)
	return wave * env
}

// Syncopated wood-block groove: X.x. .x.. X..x ..x.
var (
	treesPitches = []float64{261.63, 392.00}
	treesGate    = &GateTable{
		Loop:   loopLength,
		Slots:  loopSlots,
		Window: 0.15,
		Hits: []Hit{
			{0, Strong, 1}, {2, Light, 0}, {5, Medium, 0},
			{8, Strong, 1}, {11, Light, 0}, {14, Medium, 0},
		},
		Shapes: map[Intensity]HitShape{
			Strong: {Gain: 1.0, Attack: 0.01, Decay: 12},
			Medium: {Gain: 0.7, Attack: 0.01, Decay: 12},
			Light:  {Gain: 0.4, Attack: 0.01, Decay: 12},
		},
	}
)

func trees(t float64) float64 {
	return treesGate.Render(t, func(h Hit, local float64) float64 {
		f := treesPitches[h.Note]
		wave := sine(f, t) + 0.3*sine(f*1.5, t)
		if local < 0.005 {
			wave += 0.2 * sine(f*3, t)
		}
		return wave
	})
}

// Sparse warbling chirps.
var birdCalls = []float64{0.5, 1.8, 3.2}

const birdWindow = 0.3

func birds(t float64) float64 {
	var wave float64
	for _, at := range birdCalls {
		if math.Abs(t-at) >= birdWindow {
			continue
		}
		local := t - at + birdWindow
		f := 1200 + 200*math.Sin(twoPi*8*local)
		wave += sine(f, local) * Decay(local, 3)
	}
	return wave
}

// Hi-hat pattern with open accents and ghost notes.
var (
	insectPitches = []float64{880.00, 1318.51}
	insectsGate   = &GateTable{
		Loop:   loopLength,
		Slots:  loopSlots,
		Window: 0.08,
		Hits: []Hit{
			{0, Closed, 0}, {2, Open, 1}, {4, Closed, 0}, {6, Closed, 0},
			{8, Closed, 0}, {10, Open, 1}, {12, Closed, 0}, {14, Closed, 0},
			{1, Ghost, 0}, {3, Ghost, 0}, {9, Ghost, 0}, {13, Ghost, 0},
		},
		Shapes: map[Intensity]HitShape{
			Open:   {Gain: 0.8, Attack: 0.002, Decay: 8},
			Closed: {Gain: 0.6, Attack: 0.002, Decay: 15},
			Ghost:  {Gain: 0.25, Attack: 0.002, Decay: 20},
		},
	}
	insectPartials = []partial{{1, 1}, {1.3, 0.4}, {1.7, 0.2}, {2.1, 0.1}}
)

func insects(t float64) float64 {
	return insectsGate.Render(t, func(h Hit, _ float64) float64 {
		return additive(insectPitches[h.Note], t, insectPartials)
	})
}

// Warm drone with a fifth and an octave on top.
var sunPartials = []partial{{1, 1}, {1.5, 0.3}, {2, 0.2}}

func sun(t float64) float64 {
	return additive(200, t, sunPartials) * lfo(t, 1, 0.1, 0.5)
}
