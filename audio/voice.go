package audio

import (
	"sync/atomic"

	"github.com/mrdg/garden/synth"
)

type voiceState int

const (
	stateFree voiceState = iota
	stateActive
	stateReleased
)

// Per-sample step towards the target gain, so volume changes don't click.
const gainSmoothing = 0.002

// bufferVoice plays a single pre-rendered buffer, once or looping.
type bufferVoice struct {
	state  voiceState
	gen    uint64 // playback the voice was last assigned to
	buf    *synth.Buffer
	pos    int
	loop   bool
	gain   float64
	target float64
	env    *envelope

	// finished holds the gen of the last playback that ran to completion.
	// It is the only field read outside the audio callback.
	finished atomic.Uint64
}

func (v *bufferVoice) play(gen uint64, buf *synth.Buffer, loop bool, gain float64) {
	v.gen = gen
	v.buf = buf
	v.pos = 0
	v.loop = loop
	v.gain = gain
	v.target = gain
	v.state = stateActive
	v.env.release = stopRelease
	v.env.startAttack()
}

// process adds the voice's output to left and right.
func (v *bufferVoice) process(left, right []float32) {
	frames := v.buf.Frames()
	for i := range left {
		if v.pos >= frames {
			if !v.loop {
				v.reset()
				return
			}
			v.pos = 0
		}
		v.gain += (v.target - v.gain) * gainSmoothing
		amp := float32(v.gain * v.env.value())
		l, r := v.buf.Frame(v.pos)
		left[i] += l * amp
		right[i] += r * amp
		v.pos++

		if v.state == stateReleased && v.env.done() {
			v.reset()
			return
		}
	}
}

func (v *bufferVoice) release(seconds float64) {
	if v.state != stateActive {
		return
	}
	v.state = stateReleased
	v.env.release = seconds
	v.env.startRelease()
}

func (v *bufferVoice) reset() {
	v.buf = nil
	v.pos = 0
	v.loop = false
	v.state = stateFree
	v.finished.Store(v.gen)
}
