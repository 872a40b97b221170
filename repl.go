package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mrdg/garden/dub"
	"github.com/mrdg/garden/garden"
	"github.com/mrdg/garden/synth"
)

const defaultVelocity = 100

// simulator is a virtual controller driven by typed commands.
type simulator struct {
	session *garden.Session
	send    func(garden.Event)
	catalog *synth.Catalog
	mapping string
	logger  *slog.Logger
}

// eval runs every command on the line and returns their joined output.
func (s *simulator) eval(input string) (string, error) {
	cmds, err := dub.ParseAll(input)
	if err != nil {
		return "", err
	}
	var out []string
	for _, command := range cmds {
		result, err := s.run(command)
		if err != nil {
			return strings.Join(out, "\n"), err
		}
		if result != "" {
			out = append(out, result)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (s *simulator) run(command dub.Command) (string, error) {
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if n := len(command.Args); n < cmd.minArgs || n > cmd.maxArgs {
			if cmd.minArgs == cmd.maxArgs {
				return "", fmt.Errorf("%s: wrong number of arguments: want %v, got %v", name, cmd.minArgs, n)
			}
			return "", fmt.Errorf("%s: wrong number of arguments: want %v to %v, got %v",
				name, cmd.minArgs, cmd.maxArgs, n)
		}
		result, err := cmd.run(s, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", name, err)
		}
		return result, nil
	}
	return "", fmt.Errorf("unknown command: %s (try help)", name)
}

func repl(ctx context.Context, sim *simulator) error {
	rl, err := readline.New("garden> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			rl.Close()
		case <-done:
		}
	}()

	fmt.Fprintln(rl.Stdout(), "Virtual controller ready. Type help for a list of commands.")
	for {
		line, err := rl.Readline()
		if err == io.EOF || errors.Is(err, readline.ErrInterrupt) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		result, err := sim.eval(line)
		if result != "" {
			fmt.Fprintln(rl.Stdout(), result)
		}
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
		}
	}
}

type command struct {
	name    string
	usage   string
	run     func(*simulator, []dub.Node) (string, error)
	minArgs int
	maxArgs int
}

var commands []command

func init() {
	commands = []command{
		{"pad", "pad <id|sound|'positions> [velocity]  press pads", padCommand, 1, 2},
		{"off", "off <id|sound|'positions>  release pads", offCommand, 1, 1},
		{"knob", "knob <cc|role> <0-127|0.0-1.0>  turn a knob", knobCommand, 2, 2},
		{"status", "status  show what is playing", statusCommand, 0, 0},
		{"pads", "pads  list the pad layout", padsCommand, 0, 0},
		{"reload", "reload [file]  reload the mapping and turn everything off", reloadCommand, 0, 1},
		{"tone", "tone <freq> [sine|triangle|saw|noise] [soft|sustain|flat]  play a test tone", toneCommand, 1, 3},
		{"export", "export <dir>  write every sound as a WAV file", exportCommand, 1, 1},
		{"help", "help  show this list", helpCommand, 0, 0},
	}
}

func padCommand(s *simulator, args []dub.Node) (string, error) {
	ids, err := s.resolvePads(args[0])
	if err != nil {
		return "", err
	}
	velocity := defaultVelocity
	if len(args) == 2 {
		if err := readArgs(args[1:], &velocity); err != nil {
			return "", err
		}
		if velocity < 1 || velocity > 127 {
			return "", fmt.Errorf("velocity out of range 1-127: %d", velocity)
		}
	}
	for _, id := range ids {
		s.send(garden.Event{Kind: garden.NoteOn, ID: id, Value: velocity})
	}
	return "", nil
}

func offCommand(s *simulator, args []dub.Node) (string, error) {
	ids, err := s.resolvePads(args[0])
	if err != nil {
		return "", err
	}
	for _, id := range ids {
		s.send(garden.Event{Kind: garden.NoteOff, ID: id})
	}
	return "", nil
}

func knobCommand(s *simulator, args []dub.Node) (string, error) {
	var cc int
	switch v := args[0].(type) {
	case dub.Int:
		cc = int(v)
	case dub.Identifier, dub.String:
		var name string
		if err := readArgs(args[:1], &name); err != nil {
			return "", err
		}
		role, ok := garden.ParseKnobRole(name)
		if !ok {
			return "", fmt.Errorf("unknown knob: %s", name)
		}
		if cc, ok = s.session.Router().KnobCC(role); !ok {
			return "", fmt.Errorf("knob %s is not mapped", role)
		}
	default:
		return "", fmt.Errorf("argument error: expected a controller number or knob name")
	}

	var value int
	switch v := args[1].(type) {
	case dub.Int:
		value = int(v)
	case dub.Float:
		if v < 0 || v > 1 {
			return "", fmt.Errorf("value out of range 0.0-1.0: %v", float64(v))
		}
		value = int(math.Round(float64(v) * 127))
	default:
		return "", fmt.Errorf("argument error: expected a number")
	}
	if value < 0 || value > 127 {
		return "", fmt.Errorf("value out of range 0-127: %d", value)
	}
	s.send(garden.Event{Kind: garden.ControlChange, ID: cc, Value: value})
	return "", nil
}

func statusCommand(s *simulator, args []dub.Node) (string, error) {
	snap := s.session.Snapshot()
	return renderActive(snap) + "\n" + renderEnvironment(snap.Knobs), nil
}

func padsCommand(s *simulator, args []dub.Node) (string, error) {
	snap := s.session.Snapshot()
	var b strings.Builder
	for i, pad := range s.session.Router().Pads() {
		state := "off"
		if snap.Pads[pad.ID] {
			state = "on"
		}
		fmt.Fprintf(&b, "%2d  note %-3d %-10s %-10s %s\n", i+1, pad.ID, pad.Kind, pad.Label(), state)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func reloadCommand(s *simulator, args []dub.Node) (string, error) {
	file := s.mapping
	if len(args) == 1 {
		if err := readArgs(args, &file); err != nil {
			return "", err
		}
	}
	router := garden.LoadRouter(file, s.logger)
	s.session.Reset(router)
	return fmt.Sprintf("layout: %s (%d pads)", router.Source(), len(router.Pads())), nil
}

const toneLength = 1.0

func toneCommand(s *simulator, args []dub.Node) (string, error) {
	var freq float64
	if err := readArgs(args[:1], &freq); err != nil {
		return "", err
	}
	if freq <= 0 {
		return "", fmt.Errorf("frequency must be positive: %v", freq)
	}
	wave, shape := synth.Sine, synth.ShapeSoft
	if len(args) > 1 {
		var name string
		if err := readArgs(args[1:2], &name); err != nil {
			return "", err
		}
		w, err := synth.ParseWaveform(name)
		if err != nil {
			return "", err
		}
		wave = w
	}
	if len(args) > 2 {
		var name string
		if err := readArgs(args[2:3], &name); err != nil {
			return "", err
		}
		sh, err := synth.ParseShape(name)
		if err != nil {
			return "", err
		}
		shape = sh
	}
	played := synth.ClampFrequency(freq)
	buf := synth.Tone("tone", played, toneLength, wave, shape, s.catalog.SampleRate())
	if err := s.session.Play(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %.2f Hz (%s)", wave, played, shape), nil
}

func exportCommand(s *simulator, args []dub.Node) (string, error) {
	var dir string
	if err := readArgs(args, &dir); err != nil {
		return "", err
	}
	if err := exportCatalog(s.catalog, dir); err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %d sounds to %s", s.catalog.Len(), dir), nil
}

func helpCommand(s *simulator, args []dub.Node) (string, error) {
	usage := make([]string, len(commands))
	for i, cmd := range commands {
		usage[i] = "  " + cmd.usage
	}
	return strings.Join(usage, "\n"), nil
}

// resolvePads turns a note number, a sound name or a position selector into
// note identifiers.
func (s *simulator) resolvePads(arg dub.Node) ([]int, error) {
	pads := s.session.Router().Pads()
	switch v := arg.(type) {
	case dub.Int:
		return []int{int(v)}, nil
	case dub.Identifier, dub.String:
		var name string
		if err := readArgs([]dub.Node{arg}, &name); err != nil {
			return nil, err
		}
		for _, pad := range pads {
			if strings.EqualFold(pad.Sound, name) {
				return []int{pad.ID}, nil
			}
		}
		return nil, fmt.Errorf("unknown pad: %s", name)
	case dub.Selector:
		var ids []int
		for _, pos := range v.Select(len(pads)) {
			ids = append(ids, pads[pos-1].ID)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("no pads selected")
		}
		return ids, nil
	}
	return nil, fmt.Errorf("argument error: expected a note, sound name or selector")
}

func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("not enough arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			switch n := arg.(type) {
			case dub.Float:
				*p = float64(n)
			case dub.Int:
				*p = float64(n)
			default:
				return fmt.Errorf("argument error: expected a number")
			}
		case *int:
			n, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(n)
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}
