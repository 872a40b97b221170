package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mrdg/garden/garden"
	"golang.org/x/term"
)

const (
	refreshInterval = 200 * time.Millisecond
	statusInterval  = 10 * time.Second
	envInterval     = 30 * time.Second

	clearScreen = "\033[H\033[2J"
	barWidth    = 10
)

// reporter periodically samples the session and prints what is playing,
// either as log-style lines or as a full screen dashboard.
type reporter struct {
	session   *garden.Session
	out       io.Writer
	dashboard bool
	color     bool

	lastCount  int
	lastStatus time.Time
	lastEnv    time.Time
}

func newReporter(session *garden.Session, out io.Writer, dashboard, color bool) *reporter {
	return &reporter{
		session:   session,
		out:       out,
		dashboard: dashboard,
		color:     color,
		lastCount: -1,
	}
}

func useColor(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (r *reporter) run(ctx context.Context) error {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			r.tick(now)
		}
	}
}

func (r *reporter) tick(now time.Time) {
	snap := r.session.Snapshot()
	if r.dashboard {
		fmt.Fprint(r.out, clearScreen)
		r.renderDashboard(r.out, snap)
		return
	}
	if n := len(snap.Active); n != r.lastCount || now.Sub(r.lastStatus) >= statusInterval {
		fmt.Fprintln(r.out, renderActive(snap))
		r.lastCount = n
		r.lastStatus = now
	}
	if now.Sub(r.lastEnv) >= envInterval {
		fmt.Fprintln(r.out, renderEnvironment(snap.Knobs))
		r.lastEnv = now
	}
}

func renderActive(snap garden.Snapshot) string {
	if len(snap.Active) == 0 {
		return "Garden is quiet... (press any pad to start)"
	}
	names := make([]string, len(snap.Active))
	for i, pad := range snap.Active {
		names[i] = pad.Label()
	}
	return fmt.Sprintf("Active: %s (%d elements)", strings.Join(names, ", "), len(names))
}

func renderEnvironment(knobs garden.KnobState) string {
	return fmt.Sprintf("Environment: %s, %s, %s, %s",
		garden.Describe(garden.Temperature, knobs[garden.Temperature]),
		garden.Describe(garden.Water, knobs[garden.Water]),
		garden.Describe(garden.TimeOfDay, knobs[garden.TimeOfDay]),
		garden.Describe(garden.Seasons, knobs[garden.Seasons]),
	)
}

func (r *reporter) renderDashboard(w io.Writer, snap garden.Snapshot) {
	router := r.session.Router()
	fmt.Fprintf(w, "%s  (layout: %s)\n\n", r.colorize("Musical Garden", colorMagenta), router.Source())

	var background, melodic []garden.Pad
	for _, pad := range router.Pads() {
		if pad.Kind == garden.Background {
			background = append(background, pad)
		} else {
			melodic = append(melodic, pad)
		}
	}
	fmt.Fprintln(w, "Background")
	r.renderPads(w, background, snap.Pads, colorGreen)
	fmt.Fprintln(w, "Melodic")
	r.renderPads(w, melodic, snap.Pads, colorYellow)

	fmt.Fprintln(w, "Knobs")
	for _, role := range garden.KnobRoles {
		v := snap.Knobs[role]
		filled := int(v*barWidth + 0.5)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(w, "  %-18s %s %s\n", role, r.colorize(bar, colorBlue), garden.Describe(role, v))
	}
	fmt.Fprintf(w, "\nBackground voices: %d\n", snap.Voices)
}

const padsPerRow = 4

func (r *reporter) renderPads(w io.Writer, pads []garden.Pad, state garden.PadState, color int) {
	for i, pad := range pads {
		if i%padsPerRow == 0 {
			fmt.Fprint(w, " ")
		}
		cell := fmt.Sprintf("○ %-10s", pad.Label())
		if state[pad.ID] {
			cell = r.colorize(fmt.Sprintf("● %-10s", pad.Label()), color)
		}
		fmt.Fprint(w, " "+cell)
		if i%padsPerRow == padsPerRow-1 || i == len(pads)-1 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

func (r *reporter) colorize(text string, color int) string {
	if !r.color {
		return text
	}
	return colorize(text, color)
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}

// activityLog logs every pad and knob change.
type activityLog struct {
	logger *slog.Logger
}

func (a activityLog) PadChanged(pad garden.Pad, on bool) {
	switch {
	case pad.Kind == garden.Background && on:
		a.logger.Info("texture on (looping)", "element", pad.Label())
	case pad.Kind == garden.Background:
		a.logger.Info("texture off", "element", pad.Label())
	case on:
		a.logger.Info("note played", "element", pad.Label())
	default:
		a.logger.Info("note ready to play again", "element", pad.Label())
	}
}

func (a activityLog) KnobChanged(role garden.KnobRole, value float64) {
	a.logger.Info("knob turned", "role", role, "value", garden.Describe(role, value))
}
