package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrdg/garden/garden"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var errNoDevice = errors.New("no MIDI input ports found")

// preferredPorts are matched against port names when no port is requested.
var preferredPorts = []string{"SparkLE", "Arturia"}

// midiInput feeds controller messages from one input port into an event queue.
type midiInput struct {
	drv  *rtmididrv.Driver
	in   drivers.In
	stop func()
}

func openMIDI(port string, queue *garden.EventQueue, logger *slog.Logger) (*midiInput, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("open MIDI driver: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("list MIDI inputs: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	idx, ok := choosePort(names, port)
	if !ok {
		drv.Close()
		return nil, errNoDevice
	}
	in := ins[idx]
	if port != "" && !containsFold(names[idx], port) {
		logger.Warn("requested MIDI port not found", "port", port, "using", names[idx])
	}
	if err := in.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("open MIDI port %s: %w", names[idx], err)
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		if ev, ok := translate(msg); ok {
			if !queue.Push(ev) {
				logger.Debug("event queue full, message dropped", "event", ev.Kind, "id", ev.ID)
			}
			return
		}
		logger.Debug("unhandled MIDI message", "msg", msg.String())
	}, midi.HandleError(func(err error) {
		logger.Warn("MIDI listener error, device likely disconnected", "device", names[idx], "err", err)
	}))
	if err != nil {
		in.Close()
		drv.Close()
		return nil, fmt.Errorf("listen on %s: %w", names[idx], err)
	}
	logger.Info("connected to MIDI device", "device", names[idx])
	return &midiInput{drv: drv, in: in, stop: stop}, nil
}

// Close stops listening and releases the driver. It gives up when ctx is
// done so an unresponsive device cannot block shutdown.
func (m *midiInput) Close(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		m.stop()
		done <- errors.Join(m.in.Close(), m.drv.Close())
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("close MIDI input: %w", ctx.Err())
	}
}

// choosePort picks the requested port, then a known controller, then the
// first port.
func choosePort(names []string, want string) (int, bool) {
	if len(names) == 0 {
		return 0, false
	}
	if want != "" {
		for i, name := range names {
			if containsFold(name, want) {
				return i, true
			}
		}
	}
	for _, preferred := range preferredPorts {
		for i, name := range names {
			if containsFold(name, preferred) {
				return i, true
			}
		}
	}
	return 0, true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// translate converts a MIDI message into a controller event. A note-on with
// velocity 0 is reported as a note-off.
func translate(msg midi.Message) (garden.Event, bool) {
	var ch, key, vel, cc, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return garden.Event{Kind: garden.NoteOn, ID: int(key), Value: int(vel)}, true
	case msg.GetNoteEnd(&ch, &key):
		return garden.Event{Kind: garden.NoteOff, ID: int(key)}, true
	case msg.GetControlChange(&ch, &cc, &val):
		return garden.Event{Kind: garden.ControlChange, ID: int(cc), Value: int(val)}, true
	}
	return garden.Event{}, false
}
