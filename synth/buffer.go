package synth

import (
	"github.com/go-audio/audio"
)

const (
	SampleRate  = 44100
	NumChannels = 2
	BitDepth    = 16
)

// Buffer is an immutable, interleaved stereo 16 bit sound. Buffers are
// produced once by the catalog and never modified afterwards.
type Buffer struct {
	Name     string
	Category Category
	Loop     bool // played looping by default
	PCM      *audio.IntBuffer
}

// Frames returns the number of stereo frames in the buffer.
func (b *Buffer) Frames() int {
	if b == nil || b.PCM == nil {
		return 0
	}
	return b.PCM.NumFrames()
}

// SampleRate returns the rate the buffer was rendered at.
func (b *Buffer) SampleRate() int {
	return b.PCM.Format.SampleRate
}

// Frame returns the left and right sample of frame i scaled to [-1, 1].
func (b *Buffer) Frame(i int) (l, r float32) {
	n := i * NumChannels
	return float32(b.PCM.Data[n]) / pcmScale, float32(b.PCM.Data[n+1]) / pcmScale
}

// Seconds returns the duration of the buffer.
func (b *Buffer) Seconds() float64 {
	return float64(b.Frames()) / float64(b.SampleRate())
}

// Peak returns the largest absolute quantized sample value.
func (b *Buffer) Peak() int {
	var peak int
	for _, v := range b.PCM.Data {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// recipe describes how a single buffer is rendered: fn produces the raw
// mono signal, which is scaled by gain, shaped by the declick fades,
// limited to the category ceiling and quantized.
type recipe struct {
	name     string
	category Category
	loop     bool
	duration float64 // seconds
	gain     float64
	fadeIn   float64 // seconds
	fadeOut  float64 // seconds
	fn       func(t float64) float64
}

func (r recipe) render(sampleRate int) *Buffer {
	frames := int(r.duration * float64(sampleRate))
	if frames < 2 {
		frames = 2
	}
	data := make([]int, frames*NumChannels)
	end := float64(frames-1) / float64(sampleRate)
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(sampleRate)
		env := Envelope(Attack(t, r.fadeIn), FadeOut(t, end, r.fadeOut))
		x := 0.0
		if env > 0 {
			x = Limit(r.category, r.fn(t)*r.gain*env)
		}
		v := Quantize(x)
		data[i*NumChannels] = v
		data[i*NumChannels+1] = v
	}
	return &Buffer{
		Name:     r.name,
		Category: r.category,
		Loop:     r.loop,
		PCM: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: NumChannels, SampleRate: sampleRate},
			Data:           data,
			SourceBitDepth: BitDepth,
		},
	}
}

// partial is one sine component of an additive voice.
type partial struct {
	ratio  float64 // frequency multiple of the fundamental
	weight float64
}

// additive sums sine partials of freq at time t.
func additive(freq, t float64, partials []partial) float64 {
	var sum float64
	for _, p := range partials {
		sum += p.weight * sine(freq*p.ratio, t)
	}
	return sum
}
