package garden

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mrdg/garden/synth"
)

const (
	// releaseVelocity is used for toggles caused by note-off messages.
	releaseVelocity = 64
	offToneGain     = 0.4

	BackgroundFade = 300 * time.Millisecond
	ShutdownFade   = time.Second

	pollInterval = 2 * time.Millisecond
)

// Output plays buffers. It is implemented by the audio mixer.
type Output interface {
	Play(buf *synth.Buffer, loop bool, gain float64) (Voice, error)
}

// Voice is a sound started by an Output.
type Voice interface {
	SetGain(gain float64)
	Stop()
	FadeOut(d time.Duration)
}

// Sounds looks up rendered buffers by name.
type Sounds interface {
	Get(name string) (*synth.Buffer, bool)
}

// Listener is notified after every state transition. Calls happen on the
// goroutine handling the event, after the session's lock is released.
type Listener interface {
	PadChanged(pad Pad, on bool)
	KnobChanged(role KnobRole, value float64)
}

// Listeners fans notifications out to several listeners.
type Listeners []Listener

func (ls Listeners) PadChanged(pad Pad, on bool) {
	for _, l := range ls {
		l.PadChanged(pad, on)
	}
}

func (ls Listeners) KnobChanged(role KnobRole, value float64) {
	for _, l := range ls {
		l.KnobChanged(role, value)
	}
}

type PadState map[int]bool

type KnobState map[KnobRole]float64

// Snapshot is a copy of the session state taken at one point in time.
type Snapshot struct {
	Pads   PadState
	Knobs  KnobState
	Active []Pad // pads that are on, in layout order
	Voices int   // background voices being held
}

type backgroundVoice struct {
	voice    Voice
	velocity int
}

// Session is the playback state machine: it turns controller events into
// play, fade and gain commands on its Output.
type Session struct {
	mu       sync.Mutex
	router   *Router
	pads     PadState
	voices   map[int]backgroundVoice
	knobs    *Props
	sounds   Sounds
	out      Output
	listener Listener
	logger   *slog.Logger
}

func NewSession(router *Router, sounds Sounds, out Output, logger *slog.Logger) *Session {
	if router == nil {
		router = DefaultRouter()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		router: router,
		pads:   make(PadState),
		voices: make(map[int]backgroundVoice),
		knobs:  newKnobProps(),
		sounds: sounds,
		out:    out,
		logger: logger,
	}
}

// SetListener installs l; nil removes the current listener. It must be
// called before events are handled.
func (s *Session) SetListener(l Listener) {
	s.listener = l
}

// Router returns the router currently in use.
func (s *Session) Router() *Router {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.router
}

// Handle applies a single controller event.
func (s *Session) Handle(ev Event) {
	switch ev.Kind {
	case NoteOn:
		if ev.Value > 0 {
			s.toggle(ev.ID, ev.Value)
		} else {
			s.toggle(ev.ID, releaseVelocity)
		}
	case NoteOff:
		s.toggle(ev.ID, releaseVelocity)
	case ControlChange:
		s.turn(ev.ID, ev.Value)
	}
}

func (s *Session) toggle(id, velocity int) {
	s.mu.Lock()
	pad, ok := s.router.Pad(id)
	if !ok {
		s.mu.Unlock()
		return
	}
	if _, ok := s.sounds.Get(pad.Sound); !ok {
		s.mu.Unlock()
		return
	}
	was := s.pads[id]
	if was {
		s.turnOff(pad)
	} else {
		s.turnOn(pad, velocity)
	}
	on := s.pads[id]
	s.mu.Unlock()

	if on != was && s.listener != nil {
		s.listener.PadChanged(pad, on)
	}
}

// turnOn starts the pad's sound. If no voice is available the pad stays off.
func (s *Session) turnOn(pad Pad, velocity int) {
	buf, _ := s.sounds.Get(pad.Sound)
	switch pad.Kind {
	case Background:
		if prev, ok := s.voices[pad.ID]; ok {
			prev.voice.Stop()
			delete(s.voices, pad.ID)
		}
		v, err := s.out.Play(buf, true, s.backgroundGain(velocity))
		if err != nil {
			s.dropped(pad, err)
			return
		}
		s.voices[pad.ID] = backgroundVoice{voice: v, velocity: velocity}
		s.logger.Debug("texture on", "pad", pad.ID, "sound", pad.Sound, "velocity", velocity)
	case Melodic:
		gain := VelocityGain(velocity) * s.knobs.Float(MasterVolume) * s.knobs.Float(MelodyVolume)
		if _, err := s.out.Play(buf, false, gain); err != nil {
			s.dropped(pad, err)
			return
		}
		s.logger.Debug("tone played", "pad", pad.ID, "sound", pad.Sound, "velocity", velocity)
	}
	s.pads[pad.ID] = true
}

func (s *Session) turnOff(pad Pad) {
	switch pad.Kind {
	case Background:
		if bv, ok := s.voices[pad.ID]; ok {
			bv.voice.FadeOut(BackgroundFade)
			delete(s.voices, pad.ID)
		}
		s.logger.Debug("texture off", "pad", pad.ID, "sound", pad.Sound)
	case Melodic:
		if buf, ok := s.sounds.Get(synth.OffName(pad.Sound)); ok {
			gain := offToneGain * s.knobs.Float(MasterVolume) * s.knobs.Float(MelodyVolume)
			if _, err := s.out.Play(buf, false, gain); err != nil {
				s.logger.Debug("release tone dropped", "pad", pad.ID, "err", err)
			}
		}
	}
	s.pads[pad.ID] = false
}

func (s *Session) dropped(pad Pad, err error) {
	s.logger.Debug("play dropped", "pad", pad.ID, "sound", pad.Sound, "err", err)
}

// backgroundGain must be called with the lock held.
func (s *Session) backgroundGain(velocity int) float64 {
	return VelocityGain(velocity) *
		s.knobs.Float(MasterVolume) *
		s.knobs.Float(BackgroundVolume) *
		Brightness(s.knobs.Float(TimeOfDay))
}

func (s *Session) turn(cc, value int) {
	s.mu.Lock()
	role, ok := s.router.Knob(cc)
	if !ok {
		s.mu.Unlock()
		return
	}
	v := KnobValue(value)
	if err := s.knobs.Set(role, v); err != nil {
		s.mu.Unlock()
		s.logger.Error("knob update failed", "role", role, "err", err)
		return
	}
	if role.affectsBackground() {
		for _, bv := range s.voices {
			bv.voice.SetGain(s.backgroundGain(bv.velocity))
		}
	}
	s.mu.Unlock()

	s.logger.Debug("knob", "role", role, "value", v, "label", Describe(role, v))
	if s.listener != nil {
		s.listener.KnobChanged(role, v)
	}
}

// Knob returns the current value of a knob role.
func (s *Session) Knob(role KnobRole) float64 {
	return s.knobs.Float(role)
}

// Snapshot returns a copy of the current pad and knob state. It is safe to
// call from any goroutine.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Pads:   make(PadState, len(s.pads)),
		Knobs:  s.knobs.State(),
		Voices: len(s.voices),
	}
	for id, on := range s.pads {
		snap.Pads[id] = on
	}
	for _, pad := range s.router.Pads() {
		if s.pads[pad.ID] {
			snap.Active = append(snap.Active, pad)
		}
	}
	return snap
}

// PlayOnce plays a named sound once at master volume, outside of any pad.
func (s *Session) PlayOnce(name string) error {
	buf, ok := s.sounds.Get(name)
	if !ok {
		return fmt.Errorf("unknown sound %q", name)
	}
	return s.Play(buf)
}

// Play plays buf once at master volume. buf does not have to come from the
// session's sounds.
func (s *Session) Play(buf *synth.Buffer) error {
	if buf == nil {
		return fmt.Errorf("no buffer to play")
	}
	_, err := s.out.Play(buf, false, s.knobs.Float(MasterVolume))
	return err
}

// Reset fades out every background voice, turns all pads off and installs
// router. Knob values are kept.
func (s *Session) Reset(router *Router) {
	s.mu.Lock()
	s.releaseAll(BackgroundFade)
	if router != nil {
		s.router = router
	}
	s.mu.Unlock()
}

// releaseAll must be called with the lock held.
func (s *Session) releaseAll(d time.Duration) {
	for id, bv := range s.voices {
		bv.voice.FadeOut(d)
		delete(s.voices, id)
	}
	for id := range s.pads {
		delete(s.pads, id)
	}
}

// Shutdown fades out every background voice and waits for the fade to
// finish or for ctx to be done, whichever comes first.
func (s *Session) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	n := len(s.voices)
	s.releaseAll(ShutdownFade)
	s.mu.Unlock()
	if n == 0 {
		return nil
	}

	timer := time.NewTimer(ShutdownFade)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run handles events from q until ctx is done.
func (s *Session) Run(ctx context.Context, q *EventQueue) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			q.Drain(s.Handle)
			return nil
		case <-ticker.C:
			q.Drain(s.Handle)
		}
	}
}
