package garden

import "fmt"

type EventKind int

const (
	NoteOn EventKind = iota
	NoteOff
	ControlChange
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "note_on"
	case NoteOff:
		return "note_off"
	case ControlChange:
		return "control_change"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a controller message. ID is the note number for note events and
// the controller number for control changes; Value is the velocity or the
// controller value (0-127).
type Event struct {
	Kind  EventKind
	ID    int
	Value int
}

func (e Event) String() string {
	return fmt.Sprintf("%s %d %d", e.Kind, e.ID, e.Value)
}
