package garden

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/mrdg/garden/synth"
)

var errFull = errors.New("pool exhausted")

type fakeVoice struct {
	name    string
	gain    float64
	stopped bool
	fade    time.Duration
}

func (v *fakeVoice) SetGain(g float64)       { v.gain = g }
func (v *fakeVoice) Stop()                   { v.stopped = true }
func (v *fakeVoice) FadeOut(d time.Duration) { v.fade = d }

type play struct {
	name string
	loop bool
	gain float64
}

type fakeOutput struct {
	full   bool
	plays  []play
	voices []*fakeVoice
}

func (o *fakeOutput) Play(buf *synth.Buffer, loop bool, gain float64) (Voice, error) {
	if o.full {
		return nil, errFull
	}
	o.plays = append(o.plays, play{buf.Name, loop, gain})
	v := &fakeVoice{name: buf.Name, gain: gain}
	o.voices = append(o.voices, v)
	return v, nil
}

type fakeSounds map[string]*synth.Buffer

func (s fakeSounds) Get(name string) (*synth.Buffer, bool) {
	b, ok := s[name]
	return b, ok
}

func newFakeSounds() fakeSounds {
	sounds := make(fakeSounds)
	add := func(name string) {
		sounds[name] = &synth.Buffer{Name: name}
	}
	for _, name := range synth.Textures {
		add(name)
	}
	for i := 0; i < synth.NumMelodic; i++ {
		add(synth.MelodicName(i))
		add(synth.OffName(synth.MelodicName(i)))
	}
	add(synth.Welcome)
	return sounds
}

func newTestSession() (*Session, *fakeOutput) {
	out := &fakeOutput{}
	return NewSession(DefaultRouter(), newFakeSounds(), out, nil), out
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func noteOn(id, vel int) Event { return Event{Kind: NoteOn, ID: id, Value: vel} }
func cc(id, val int) Event     { return Event{Kind: ControlChange, ID: id, Value: val} }

func TestBackgroundToggle(t *testing.T) {
	s, out := newTestSession()

	s.Handle(noteOn(36, 100))
	snap := s.Snapshot()
	if !snap.Pads[36] {
		t.Fatal("pad 36 should be on")
	}
	if len(out.plays) != 1 {
		t.Fatalf("want 1 play, got %v", out.plays)
	}
	p := out.plays[0]
	want := VelocityGain(100) * 0.8 * 0.8 * Brightness(0.5)
	if p.name != "earth" || !p.loop || !approx(p.gain, want) {
		t.Errorf("want looping earth at %v, got %+v", want, p)
	}
	if p.gain < 0.1*0.8*0.8*0.8 || p.gain > 0.8 {
		t.Errorf("gain out of bounds: %v", p.gain)
	}
	if snap.Voices != 1 {
		t.Errorf("want 1 held voice, got %v", snap.Voices)
	}

	s.Handle(noteOn(36, 100))
	snap = s.Snapshot()
	if snap.Pads[36] {
		t.Error("pad 36 should be off")
	}
	if snap.Voices != 0 {
		t.Errorf("want no held voices, got %v", snap.Voices)
	}
	if got := out.voices[0].fade; got != BackgroundFade {
		t.Errorf("want fade of %v, got %v", BackgroundFade, got)
	}
	if out.voices[0].stopped {
		t.Error("background voice should fade, not stop")
	}
}

func TestMelodicToggle(t *testing.T) {
	s, out := newTestSession()

	s.Handle(noteOn(51, 127))
	if !s.Snapshot().Pads[51] {
		t.Fatal("pad 51 should be on")
	}
	s.Handle(Event{Kind: NoteOff, ID: 51})
	snap := s.Snapshot()
	if snap.Pads[51] {
		t.Error("pad 51 should be off")
	}
	if snap.Voices != 0 {
		t.Errorf("melodic pads must not hold voices, got %v", snap.Voices)
	}

	if len(out.plays) != 2 {
		t.Fatalf("want 2 plays, got %v", out.plays)
	}
	on, off := out.plays[0], out.plays[1]
	if on.name != "seed_1" || on.loop || !approx(on.gain, VelocityGain(127)*0.8*0.8) {
		t.Errorf("unexpected on tone: %+v", on)
	}
	if off.name != "seed_1_off" || off.loop || !approx(off.gain, 0.4*0.8*0.8) {
		t.Errorf("unexpected off tone: %+v", off)
	}
	if off.gain >= on.gain {
		t.Errorf("off tone should be quieter: %v >= %v", off.gain, on.gain)
	}
}

func TestReleaseEventsToggle(t *testing.T) {
	s, out := newTestSession()
	s.Handle(Event{Kind: NoteOff, ID: 38})
	s.Handle(noteOn(42, 0))

	snap := s.Snapshot()
	if !snap.Pads[38] || !snap.Pads[42] {
		t.Errorf("note-off and zero velocity should toggle on: %v", snap.Pads)
	}
	want := VelocityGain(releaseVelocity) * 0.8 * 0.8 * Brightness(0.5)
	for _, p := range out.plays {
		if !approx(p.gain, want) {
			t.Errorf("%s: want gain %v, got %v", p.name, want, p.gain)
		}
	}
}

func TestToggleEvenTimes(t *testing.T) {
	s, out := newTestSession()
	for _, pad := range s.Router().Pads() {
		for n := 0; n < 4; n++ {
			s.Handle(noteOn(pad.ID, 90))
		}
	}
	snap := s.Snapshot()
	for id, on := range snap.Pads {
		if on {
			t.Errorf("pad %d should be off", id)
		}
	}
	if len(snap.Active) != 0 || snap.Voices != 0 {
		t.Errorf("want nothing active, got %v and %d voices", snap.Active, snap.Voices)
	}
	for _, v := range out.voices {
		if synth.IsTexture(v.name) && v.fade == 0 {
			t.Errorf("%s voice was never faded", v.name)
		}
	}
}

func TestUnknownIdentifier(t *testing.T) {
	s, out := newTestSession()
	s.Handle(noteOn(99, 100))
	s.Handle(cc(99, 127))
	if len(out.plays) != 0 {
		t.Errorf("expected no plays, got %v", out.plays)
	}
	snap := s.Snapshot()
	if len(snap.Pads) != 0 {
		t.Errorf("expected no pad state, got %v", snap.Pads)
	}
	if !reflect.DeepEqual(snap.Knobs, KnobState(knobDefaults)) {
		t.Errorf("knobs should be unchanged: %v", snap.Knobs)
	}
}

func TestMissingSound(t *testing.T) {
	out := &fakeOutput{}
	sounds := newFakeSounds()
	delete(sounds, "rain")
	s := NewSession(DefaultRouter(), sounds, out, nil)
	s.Handle(noteOn(38, 100))
	if s.Snapshot().Pads[38] || len(out.plays) != 0 {
		t.Error("pad without a sound should be ignored")
	}
}

func TestPoolExhaustion(t *testing.T) {
	s, out := newTestSession()
	out.full = true
	s.Handle(noteOn(36, 100))
	s.Handle(noteOn(51, 100))
	snap := s.Snapshot()
	if snap.Pads[36] || snap.Pads[51] {
		t.Errorf("dropped plays should leave pads off: %v", snap.Pads)
	}

	out.full = false
	s.Handle(noteOn(36, 100))
	if !s.Snapshot().Pads[36] {
		t.Error("pad should turn on once a voice is free")
	}
}

func TestMasterVolume(t *testing.T) {
	s, out := newTestSession()
	s.Handle(noteOn(36, 100))
	s.Handle(noteOn(38, 50))
	s.Handle(cc(20, 127))

	if got := s.Knob(MasterVolume); got != 1 {
		t.Errorf("want master volume 1, got %v", got)
	}
	for i, vel := range []int{100, 50} {
		want := VelocityGain(vel) * 1 * 0.8 * Brightness(0.5)
		if got := out.voices[i].gain; !approx(got, want) {
			t.Errorf("%s: want gain %v, got %v", out.voices[i].name, want, got)
		}
	}
}

func TestKnobsApplied(t *testing.T) {
	tests := []struct {
		cc      int
		value   int
		role    KnobRole
		reapply bool
	}{
		{21, 0, BackgroundVolume, true},
		{18, 127, TimeOfDay, true},
		{22, 64, MelodyVolume, false},
		{16, 127, Temperature, false},
		{17, 10, Water, false},
		{7, 100, Seasons, false},
	}
	for _, test := range tests {
		s, out := newTestSession()
		s.Handle(noteOn(36, 100))
		before := out.voices[0].gain
		s.Handle(cc(test.cc, test.value))

		if got, want := s.Knob(test.role), KnobValue(test.value); got != want {
			t.Errorf("%s: want %v, got %v", test.role, want, got)
		}
		after := out.voices[0].gain
		if want := s.backgroundGain(100); !approx(after, want) {
			t.Errorf("%s: want background gain %v, got %v", test.role, want, after)
		}
		if changed := !approx(before, after); changed != test.reapply {
			t.Errorf("%s: gain changed %v, want %v", test.role, changed, test.reapply)
		}
	}
}

func TestMelodyVolumeAtNextTrigger(t *testing.T) {
	s, out := newTestSession()
	s.Handle(cc(22, 0))
	s.Handle(noteOn(60, 100))
	if got := out.plays[0].gain; got != 0 {
		t.Errorf("want silent tone with melody volume 0, got %v", got)
	}
}

type recorder struct {
	pads  []string
	knobs []KnobRole
}

func (r *recorder) PadChanged(p Pad, on bool) {
	state := "off"
	if on {
		state = "on"
	}
	r.pads = append(r.pads, p.Sound+" "+state)
}

func (r *recorder) KnobChanged(role KnobRole, value float64) {
	r.knobs = append(r.knobs, role)
}

func TestListener(t *testing.T) {
	s, out := newTestSession()
	a, b := &recorder{}, &recorder{}
	s.SetListener(Listeners{a, b})

	s.Handle(noteOn(36, 100))
	s.Handle(noteOn(51, 100))
	s.Handle(noteOn(36, 100))
	out.full = true
	s.Handle(noteOn(38, 100))
	s.Handle(noteOn(99, 100))
	s.Handle(cc(20, 10))

	wantPads := []string{"earth on", "seed_1 on", "earth off"}
	wantKnobs := []KnobRole{MasterVolume}
	for _, r := range []*recorder{a, b} {
		if !reflect.DeepEqual(wantPads, r.pads) {
			t.Errorf("want pad changes %v, got %v", wantPads, r.pads)
		}
		if !reflect.DeepEqual(wantKnobs, r.knobs) {
			t.Errorf("want knob changes %v, got %v", wantKnobs, r.knobs)
		}
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s, _ := newTestSession()
	s.Handle(noteOn(38, 100))
	s.Handle(noteOn(36, 100))

	snap := s.Snapshot()
	snap.Pads[36] = false
	snap.Knobs[MasterVolume] = 0
	if !s.Snapshot().Pads[36] || s.Knob(MasterVolume) != 0.8 {
		t.Error("modifying a snapshot changed the session")
	}

	var got []string
	for _, p := range snap.Active {
		got = append(got, p.Sound)
	}
	if want := []string{"earth", "rain"}; !reflect.DeepEqual(want, got) {
		t.Errorf("want active pads in layout order %v, got %v", want, got)
	}
}

func TestReset(t *testing.T) {
	s, out := newTestSession()
	s.Handle(noteOn(36, 100))
	s.Handle(noteOn(51, 100))
	s.Handle(cc(20, 127))

	m := &Mapping{Groups: Groups{{Name: groupBigPads, Entries: []Entry{
		{Type: "button", MIDIType: midiNoteOn, MIDINote: 70},
	}}}}
	s.Reset(NewRouter(m))

	snap := s.Snapshot()
	if len(snap.Active) != 0 || snap.Voices != 0 {
		t.Errorf("reset should turn everything off: %+v", snap)
	}
	if out.voices[0].fade != BackgroundFade {
		t.Error("reset should fade background voices")
	}
	if s.Knob(MasterVolume) != 1 {
		t.Error("reset should keep knob values")
	}
	s.Handle(noteOn(70, 100))
	if !s.Snapshot().Pads[70] {
		t.Error("new router should be in use after reset")
	}
}

func TestShutdown(t *testing.T) {
	s, out := newTestSession()
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown without voices should return at once: %v", err)
	}

	s.Handle(noteOn(36, 100))
	s.Handle(noteOn(38, 100))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("want deadline exceeded, got %v", err)
	}
	for _, v := range out.voices {
		if v.fade != ShutdownFade {
			t.Errorf("%s: want fade %v, got %v", v.name, ShutdownFade, v.fade)
		}
	}
	if snap := s.Snapshot(); len(snap.Active) != 0 {
		t.Errorf("want nothing active after shutdown, got %v", snap.Active)
	}
}

func TestRun(t *testing.T) {
	s, out := newTestSession()
	q := NewEventQueue(16)
	q.Push(noteOn(36, 100))
	q.Push(noteOn(51, 100))
	q.Push(cc(20, 127))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, q); err != nil {
		t.Fatal(err)
	}
	if q.Len() != 0 {
		t.Errorf("queue should be drained, %d left", q.Len())
	}
	if len(out.plays) != 2 || s.Knob(MasterVolume) != 1 {
		t.Errorf("events were not handled: plays %v", out.plays)
	}
}

func TestPlayOnce(t *testing.T) {
	s, out := newTestSession()
	if err := s.PlayOnce(synth.Welcome); err != nil {
		t.Fatal(err)
	}
	if err := s.PlayOnce("nope"); err == nil {
		t.Error("expected error for unknown sound")
	}
	if want := []play{{synth.Welcome, false, 0.8}}; !reflect.DeepEqual(want, out.plays) {
		t.Errorf("want %v, got %v", want, out.plays)
	}
}

func TestPlay(t *testing.T) {
	s, out := newTestSession()
	s.Handle(cc(20, 127))
	if err := s.Play(&synth.Buffer{Name: "tone"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Play(nil); err == nil {
		t.Error("expected error for nil buffer")
	}
	if want := []play{{"tone", false, 1}}; !reflect.DeepEqual(want, out.plays) {
		t.Errorf("want %v, got %v", want, out.plays)
	}
}
