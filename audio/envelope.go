package audio

type envelopeState int

const (
	stateInit envelopeState = iota
	stateAttack
	stateSustain
	stateRelease
)

// envelope is the per-voice amplitude ramp. Sounds are pre-shaped, so it
// only needs a short declicking attack, a sustain level of 1 and a linear
// release used for stops and fades.
type envelope struct {
	sampleRate float64
	attack     float64 // seconds
	release    float64 // seconds

	attackRate  float64
	releaseRate float64

	val   float64
	state envelopeState
}

func (e *envelope) value() float64 {
	switch e.state {
	case stateInit:
		return 0.
	case stateAttack:
		e.val += e.attackRate
		if e.val >= 1 {
			e.val = 1.0
			e.state = stateSustain
		}
	case stateSustain:
		e.val = 1.0
	case stateRelease:
		e.val -= e.releaseRate
		if e.val <= 0 {
			e.val = 0
			e.state = stateInit
		}
	}
	return e.val
}

func (e *envelope) startAttack() {
	e.val = 0
	if e.attack <= 0 {
		e.val = 1
		e.state = stateSustain
		return
	}
	e.state = stateAttack
	e.attackRate = 1.0 / (e.attack * e.sampleRate)
}

// startRelease ramps from the current level to silence over release seconds.
func (e *envelope) startRelease() {
	if e.state == stateInit {
		return
	}
	e.state = stateRelease
	samples := e.release * e.sampleRate
	if samples < 1 {
		samples = 1
	}
	e.releaseRate = e.val / samples
	if e.releaseRate <= 0 {
		e.val = 0
		e.state = stateInit
	}
}

// done reports whether a release has finished.
func (e *envelope) done() bool {
	return e.state == stateInit
}
