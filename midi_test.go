package main

import (
	"testing"

	"github.com/mrdg/garden/garden"
	"gitlab.com/gomidi/midi/v2"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		msg  midi.Message
		want garden.Event
		ok   bool
	}{
		{midi.NoteOn(9, 36, 100), garden.Event{Kind: garden.NoteOn, ID: 36, Value: 100}, true},
		{midi.NoteOn(0, 51, 0), garden.Event{Kind: garden.NoteOff, ID: 51}, true},
		{midi.NoteOff(9, 40), garden.Event{Kind: garden.NoteOff, ID: 40}, true},
		{midi.ControlChange(0, 20, 127), garden.Event{Kind: garden.ControlChange, ID: 20, Value: 127}, true},
		{midi.ProgramChange(0, 3), garden.Event{}, false},
	}
	for _, test := range tests {
		got, ok := translate(test.msg)
		if ok != test.ok || got != test.want {
			t.Errorf("%v: want %v %v, got %v %v", test.msg, test.want, test.ok, got, ok)
		}
	}
}

func TestChoosePort(t *testing.T) {
	ports := []string{"Midi Through Port-0", "Arturia SparkLE MIDI 1", "USB Keys"}
	tests := []struct {
		names []string
		want  string
		idx   int
		ok    bool
	}{
		{ports, "", 1, true},
		{ports, "usb", 2, true},
		{ports, "nothing", 1, true},
		{[]string{"Midi Through", "USB Keys"}, "", 0, true},
		{nil, "", 0, false},
	}
	for _, test := range tests {
		idx, ok := choosePort(test.names, test.want)
		if idx != test.idx || ok != test.ok {
			t.Errorf("%v %q: want %d %v, got %d %v", test.names, test.want, test.idx, test.ok, idx, ok)
		}
	}
}
