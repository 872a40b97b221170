package garden

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ErrNoMapping is returned by LoadMapping when the mapping file does not exist.
var ErrNoMapping = errors.New("no mapping file")

const (
	midiNoteOn        = "note_on"
	midiNoteOff       = "note_off"
	midiControlChange = "control_change"
)

// Entry is one recorded control of a mapping file.
type Entry struct {
	Type        string `json:"type"` // button or knob
	ID          int    `json:"id"`
	MIDIType    string `json:"midi_type"`
	MIDIChannel int    `json:"midi_channel"`
	MIDINote    int    `json:"midi_note,omitempty"`
	MIDIControl int    `json:"midi_control,omitempty"`
	Name        string `json:"name,omitempty"`
	CustomName  string `json:"custom_name,omitempty"`
}

type Group struct {
	Name    string
	Entries []Entry
}

// Groups keeps the groups of a mapping in the order they appear in the file.
type Groups []Group

func (g *Groups) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*g = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("groups: expected object, got %v", tok)
	}
	var groups Groups
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string)
		var entries []Entry
		if err := dec.Decode(&entries); err != nil {
			return fmt.Errorf("group %s: %w", name, err)
		}
		groups = append(groups, Group{Name: name, Entries: entries})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*g = groups
	return nil
}

func (g Groups) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, group := range g {
		if i > 0 {
			buf = append(buf, ',')
		}
		name, err := json.Marshal(group.Name)
		if err != nil {
			return nil, err
		}
		entries := group.Entries
		if entries == nil {
			entries = []Entry{}
		}
		data, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		buf = append(buf, name...)
		buf = append(buf, ':')
		buf = append(buf, data...)
	}
	return append(buf, '}'), nil
}

// Mapping is a controller layout recorded by the mapping tool.
type Mapping struct {
	DeviceName string `json:"device_name"`
	CreatedAt  string `json:"created_at"`
	Groups     Groups `json:"groups"`
}

// Group returns the entries of the named group.
func (m *Mapping) Group(name string) ([]Entry, bool) {
	for _, g := range m.Groups {
		if g.Name == name {
			return g.Entries, true
		}
	}
	return nil, false
}

func ParseMapping(r io.Reader) (*Mapping, error) {
	var m Mapping
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	return &m, nil
}

// LoadMapping reads a mapping file. A missing file yields an error matching
// both ErrNoMapping and fs.ErrNotExist.
func LoadMapping(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrNoMapping, err)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ParseMapping(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
