package garden

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/mrdg/garden/synth"
)

const (
	groupBigPads = "big_pads"
	groupNumbers = "numbers"
)

var (
	defaultBigPads = []int{36, 38, 42, 46, 50, 47, 43, 49}
	defaultKnobs   = map[KnobRole]int{
		MasterVolume:     20,
		BackgroundVolume: 21,
		MelodyVolume:     22,
		Temperature:      16,
		Water:            17,
		TimeOfDay:        18,
		Seasons:          7,
	}
)

const defaultFirstNumber = 51

type PadKind int

const (
	Background PadKind = iota
	Melodic
)

func (k PadKind) String() string {
	if k == Background {
		return "background"
	}
	return "melodic"
}

// Pad is a note identifier bound to a catalog sound.
type Pad struct {
	ID    int
	Sound string
	Kind  PadKind
}

// Label is the friendly name shown to the person playing.
func (p Pad) Label() string {
	return ElementName(p.Sound)
}

// Router resolves controller identifiers to pads and knob roles. It is
// immutable once built.
type Router struct {
	source string
	pads   map[int]Pad
	order  []int
	knobs  map[int]KnobRole
	ccs    map[KnobRole]int
}

func newRouter(source string) *Router {
	return &Router{
		source: source,
		pads:   make(map[int]Pad),
		knobs:  make(map[int]KnobRole),
		ccs:    make(map[KnobRole]int),
	}
}

// DefaultRouter returns the built-in layout of the SparkLE controller.
func DefaultRouter() *Router {
	r := newRouter("defaults")
	r.assignBackground(defaultBigPads)
	r.assignMelodic(defaultNumbers())
	r.assignKnobs(nil)
	return r
}

func defaultNumbers() []int {
	ids := make([]int, synth.NumMelodic)
	for i := range ids {
		ids[i] = defaultFirstNumber + i
	}
	return ids
}

// NewRouter derives the layout from a mapping. Families the mapping does
// not cover use the built-in table.
func NewRouter(m *Mapping) *Router {
	r := newRouter(m.DeviceName)
	if r.source == "" {
		r.source = "mapping"
	}

	bigPads := noteIDs(m, groupBigPads)
	if len(bigPads) == 0 {
		bigPads = defaultBigPads
	}
	r.assignBackground(bigPads)

	numbers := noteIDs(m, groupNumbers)
	if len(numbers) == 0 {
		numbers = defaultNumbers()
	} else {
		sort.Ints(numbers)
	}
	r.assignMelodic(numbers)

	var knobs []Entry
	for _, g := range m.Groups {
		for _, e := range g.Entries {
			if e.MIDIType == midiControlChange {
				knobs = append(knobs, e)
			}
		}
	}
	r.assignKnobs(knobs)
	return r
}

// LoadRouter builds a router from the mapping file at path, falling back to
// the defaults if the file is missing or malformed.
func LoadRouter(path string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	m, err := LoadMapping(path)
	switch {
	case errors.Is(err, ErrNoMapping):
		logger.Warn("mapping file not found, using default layout", "path", path)
		return DefaultRouter()
	case err != nil:
		logger.Warn("could not read mapping file, using default layout", "err", err)
		return DefaultRouter()
	}
	r := NewRouter(m)
	logger.Info("loaded mapping", "path", path, "device", m.DeviceName, "pads", len(r.pads), "knobs", len(r.knobs))
	return r
}

// noteIDs returns the note_on identifiers of a group in recorded order,
// without duplicates.
func noteIDs(m *Mapping, group string) []int {
	entries, ok := m.Group(group)
	if !ok {
		return nil
	}
	var ids []int
	seen := make(map[int]bool)
	for _, e := range entries {
		if e.MIDIType != midiNoteOn || seen[e.MIDINote] {
			continue
		}
		seen[e.MIDINote] = true
		ids = append(ids, e.MIDINote)
	}
	return ids
}

func (r *Router) assign(id int, sound string, kind PadKind) {
	if _, ok := r.pads[id]; ok {
		return
	}
	r.pads[id] = Pad{ID: id, Sound: sound, Kind: kind}
	r.order = append(r.order, id)
}

func (r *Router) assignBackground(ids []int) {
	for i, id := range ids {
		if i >= len(synth.Textures) {
			break
		}
		r.assign(id, synth.Textures[i], Background)
	}
}

// assignMelodic binds ids in the given order, four per register.
func (r *Router) assignMelodic(ids []int) {
	for i, id := range ids {
		if i >= synth.NumMelodic {
			break
		}
		r.assign(id, synth.MelodicName(i), Melodic)
	}
}

// assignKnobs gives named knobs their role first, then hands the remaining
// roles to the other knobs in recorded order. Roles still unassigned keep
// their default controller if it is free.
func (r *Router) assignKnobs(entries []Entry) {
	bind := func(cc int, role KnobRole) bool {
		if _, taken := r.knobs[cc]; taken {
			return false
		}
		if _, bound := r.ccs[role]; bound {
			return false
		}
		r.knobs[cc] = role
		r.ccs[role] = cc
		return true
	}

	var unnamed []int
	for _, e := range entries {
		role, ok := knobRoleOf(e)
		if !ok || !bind(e.MIDIControl, role) {
			unnamed = append(unnamed, e.MIDIControl)
		}
	}
	for _, cc := range unnamed {
		if _, taken := r.knobs[cc]; taken {
			continue
		}
		for _, role := range KnobRoles {
			if bind(cc, role) {
				break
			}
		}
	}
	for _, role := range KnobRoles {
		bind(defaultKnobs[role], role)
	}
}

func knobRoleOf(e Entry) (KnobRole, bool) {
	for _, name := range []string{e.CustomName, e.Name} {
		if name == "" {
			continue
		}
		if role, ok := ParseKnobRole(name); ok {
			return role, true
		}
	}
	return "", false
}

func (r *Router) Pad(id int) (Pad, bool) {
	p, ok := r.pads[id]
	return p, ok
}

func (r *Router) Knob(cc int) (KnobRole, bool) {
	role, ok := r.knobs[cc]
	return role, ok
}

// KnobCC returns the controller number bound to role.
func (r *Router) KnobCC(role KnobRole) (int, bool) {
	cc, ok := r.ccs[role]
	return cc, ok
}

// Pads returns every pad, background pads first, in layout order.
func (r *Router) Pads() []Pad {
	pads := make([]Pad, 0, len(r.order))
	for _, id := range r.order {
		pads = append(pads, r.pads[id])
	}
	return pads
}

// Source names where the layout came from.
func (r *Router) Source() string {
	return r.source
}

var elementNames = map[string]string{
	"earth":   "Earth",
	"rain":    "Rain",
	"wind":    "Wind",
	"thunder": "Thunder",
	"trees":   "Trees",
	"birds":   "Birds",
	"insects": "Insects",
	"sun":     "Sun",
}

// ElementName turns a sound name into a display name: "trees" becomes
// "Trees" and "sprout_6" becomes "Sprout 6".
func ElementName(sound string) string {
	if name, ok := elementNames[sound]; ok {
		return name
	}
	base, num, ok := strings.Cut(sound, "_")
	if !ok || base == "" {
		return sound
	}
	return strings.ToUpper(base[:1]) + base[1:] + " " + num
}
