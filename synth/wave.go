package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const twoPi = 2 * math.Pi

type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Sawtooth
	Noise
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Sawtooth:
		return "saw"
	case Noise:
		return "noise"
	}
	return fmt.Sprintf("waveform(%d)", int(w))
}

func ParseWaveform(s string) (Waveform, error) {
	switch s {
	case "sine":
		return Sine, nil
	case "triangle", "tri":
		return Triangle, nil
	case "saw", "sawtooth":
		return Sawtooth, nil
	case "noise":
		return Noise, nil
	}
	return Sine, fmt.Errorf("not a valid waveform type: %v", s)
}

// Sample returns the value of waveform w at frequency freq and time t (in
// seconds). The frequency is clamped to the safe range before use. Sine,
// triangle and sawtooth are pure functions of their arguments; noise is not.
func Sample(w Waveform, freq, t float64) float64 {
	f := ClampFrequency(freq)
	switch w {
	case Triangle:
		return 2 * math.Asin(math.Sin(twoPi*f*t)) / math.Pi
	case Sawtooth:
		return 2 * (f*t - math.Floor(f*t+0.5))
	case Noise:
		return rand.Float64()*2 - 1
	default:
		return math.Sin(twoPi * f * t)
	}
}

// sine is shorthand for the additive recipes, which are built almost
// entirely from sine partials.
func sine(freq, t float64) float64 {
	return Sample(Sine, freq, t)
}

// Vibrato warps t so that a generator driven with the result has an
// instantaneous frequency of f*(1 + depth*sin(2π*rate*t)). The warp is zero
// at t == 0.
func Vibrato(t, depth, rate float64) float64 {
	if rate <= 0 || depth == 0 {
		return t
	}
	w := twoPi * rate
	return t + depth*(1-math.Cos(w*t))/w
}

// lfo is a slow sine modulator oscillating around center by ±depth.
func lfo(t, center, depth, rate float64) float64 {
	return center + depth*math.Sin(twoPi*rate*t)
}
