package synth

import (
	"math"
	"testing"
)

func TestSampleDeterministic(t *testing.T) {
	for _, w := range []Waveform{Sine, Triangle, Sawtooth} {
		for _, tm := range []float64{0, 0.0001, 0.37, 1.5, 3.999} {
			a := Sample(w, 440, tm)
			b := Sample(w, 440, tm)
			if a != b {
				t.Errorf("%v at %v: not deterministic: %v != %v", w, tm, a, b)
			}
			if a < -1 || a > 1 {
				t.Errorf("%v at %v: out of range: %v", w, tm, a)
			}
		}
	}
}

func TestSampleShapes(t *testing.T) {
	const f = 250.0
	period := 1 / f
	tests := []struct {
		w    Waveform
		t    float64
		want float64
	}{
		{Sine, 0, 0},
		{Sine, period / 4, 1},
		{Triangle, 0, 0},
		{Triangle, period / 4, 1},
		{Triangle, 3 * period / 4, -1},
		{Triangle, period / 8, 0.5},
		{Sawtooth, 0, 0},
		{Sawtooth, period / 4, 0.5},
		{Sawtooth, 3 * period / 4, -0.5},
	}
	for _, test := range tests {
		got := Sample(test.w, f, test.t)
		if math.Abs(got-test.want) > 1e-6 {
			t.Errorf("%v at %v: want %v, got %v", test.w, test.t, test.want, got)
		}
	}
}

func TestNoiseRange(t *testing.T) {
	const n = 20000
	var sum float64
	var neg, pos int
	for i := 0; i < n; i++ {
		v := Sample(Noise, 440, float64(i)/SampleRate)
		if v < -1 || v > 1 {
			t.Fatalf("noise sample out of range: %v", v)
		}
		sum += v
		if v < 0 {
			neg++
		} else {
			pos++
		}
	}
	if mean := sum / n; math.Abs(mean) > 0.05 {
		t.Errorf("noise mean too far from zero: %v", mean)
	}
	if neg < n/3 || pos < n/3 {
		t.Errorf("noise is lopsided: %d negative, %d positive", neg, pos)
	}
}

func TestSampleClampsFrequency(t *testing.T) {
	tests := []struct {
		in, effective float64
	}{
		{20, MinFrequency},
		{199.9, MinFrequency},
		{-5, MinFrequency},
		{4000.1, MaxFrequency},
		{12000, MaxFrequency},
		{440, 440},
	}
	for _, w := range []Waveform{Sine, Triangle, Sawtooth} {
		for _, test := range tests {
			for _, tm := range []float64{0.0013, 0.25, 1.7} {
				if want, got := Sample(w, test.effective, tm), Sample(w, test.in, tm); want != got {
					t.Errorf("%v %vHz at %v: want %v, got %v", w, test.in, tm, want, got)
				}
			}
		}
	}
}

func TestClampFrequency(t *testing.T) {
	if got := ClampFrequency(math.NaN()); got != MinFrequency {
		t.Errorf("NaN: want %v, got %v", MinFrequency, got)
	}
	if got := ClampFrequency(1000); got != 1000 {
		t.Errorf("in range frequency changed: %v", got)
	}
}

func TestVibrato(t *testing.T) {
	if got := Vibrato(0, 0.01, 0.3); got != 0 {
		t.Errorf("vibrato should not warp t=0, got %v", got)
	}
	if got := Vibrato(1.5, 0, 0.3); got != 1.5 {
		t.Errorf("zero depth should not warp time, got %v", got)
	}
	// The warp never drifts by more than 2*depth/(2π*rate).
	const depth, rate = 0.008, 0.3
	bound := 2 * depth / (twoPi * rate)
	for tm := 0.0; tm < 4; tm += 0.01 {
		if d := Vibrato(tm, depth, rate) - tm; d < 0 || d > bound+1e-12 {
			t.Fatalf("warp at %v out of bounds: %v", tm, d)
		}
	}
}

func TestParseWaveform(t *testing.T) {
	for _, w := range []Waveform{Sine, Triangle, Sawtooth, Noise} {
		got, err := ParseWaveform(w.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Errorf("want %v, got %v", w, got)
		}
	}
	if _, err := ParseWaveform("square"); err == nil {
		t.Error("expected error for unknown waveform")
	}
}
