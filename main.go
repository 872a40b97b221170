package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrdg/garden/audio"
	"github.com/mrdg/garden/garden"
	"github.com/mrdg/garden/synth"
	"golang.org/x/sync/errgroup"
)

const (
	modePlain     = "plain"
	modeDashboard = "dashboard"
	modeSimulator = "simulator"

	queueSize       = 256
	shutdownTimeout = 5 * time.Second
	goodnightStep   = 800 * time.Millisecond
)

var logger = slog.Default()

// initLogger configures the shared slog logger and routes the stdlib log
// package through it.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

type config struct {
	mode         string
	mapping      string
	port         string
	voices       int
	exportDir    string
	quietRituals bool
}

func main() {
	var (
		mode      = flag.String("mode", modePlain, "run mode: plain, dashboard or simulator")
		mapping   = flag.String("mapping", "sparkle_mapping.json", "controller mapping file")
		port      = flag.String("port", "", "MIDI input port to use (defaults to a SparkLE or the first port)")
		voices    = flag.Int("voices", audio.DefaultVoices, "number of sounds that can play at once")
		debug     = flag.Bool("debug", false, "enable debug logging")
		exportDir = flag.String("export", "", "write every sound as a WAV file to this directory and exit")
		quiet     = flag.Bool("quiet-rituals", false, "skip the welcome and goodnight sounds")
	)
	flag.Parse()
	initLogger(*debug)

	cfg := config{
		mode:         *mode,
		mapping:      *mapping,
		port:         *port,
		voices:       *voices,
		exportDir:    *exportDir,
		quietRituals: *quiet,
	}
	if err := run(cfg); err != nil {
		logger.Error("garden stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	switch cfg.mode {
	case modePlain, modeDashboard, modeSimulator:
	default:
		return fmt.Errorf("unknown mode %q", cfg.mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	catalog, err := synth.NewCatalog(ctx, synth.SampleRate)
	if err != nil {
		return err
	}
	logger.Info("sounds ready", "count", catalog.Len(), "took", time.Since(start).Round(time.Millisecond))

	if cfg.exportDir != "" {
		return exportCatalog(catalog, cfg.exportDir)
	}

	mixer := audio.NewMixer(cfg.voices, synth.SampleRate, logger)
	sink, err := audio.NewSink(synth.SampleRate, mixer)
	if err != nil {
		return err
	}
	if err := sink.Start(); err != nil {
		return errors.Join(fmt.Errorf("start audio: %w", err), sink.Stop())
	}
	defer func() {
		if err := sink.Stop(); err != nil {
			logger.Warn("stop audio", "err", err)
		}
	}()

	router := garden.LoadRouter(cfg.mapping, logger)
	session := garden.NewSession(router, catalog, mixerOutput{mixer}, logger)
	if cfg.mode != modeDashboard {
		session.SetListener(activityLog{logger})
	}
	queue := garden.NewEventQueue(queueSize)
	rep := newReporter(session, os.Stdout, cfg.mode == modeDashboard, useColor(os.Stdout))

	logger.Info("garden is waking up", "mode", cfg.mode, "layout", router.Source())
	if !cfg.quietRituals {
		if err := session.PlayOnce(synth.Welcome); err != nil {
			logger.Warn("welcome sound", "err", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Run(gctx, queue)
	})
	g.Go(func() error {
		return rep.run(gctx)
	})

	var input *midiInput
	if cfg.mode == modeSimulator {
		sim := &simulator{
			session: session,
			send: func(ev garden.Event) {
				if !queue.Push(ev) {
					logger.Warn("event queue full, command dropped", "event", ev.Kind, "id", ev.ID)
				}
			},
			catalog: catalog,
			mapping: cfg.mapping,
			logger:  logger,
		}
		g.Go(func() error {
			defer stop()
			return repl(gctx, sim)
		})
	} else {
		input, err = openMIDI(cfg.port, queue, logger)
		if err != nil {
			logger.Warn("no MIDI input, connect a controller and restart", "err", err)
		}
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	logger.Info("garden is going to sleep")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(sctx, session, input, cfg.quietRituals); err != nil {
		logger.Warn("shutdown", "err", err)
	}
	// Whatever is still sounding, including voices the session no longer
	// tracks, fades before the stream closes.
	if mixer.Active() > 0 {
		mixer.FadeAll(garden.BackgroundFade)
		time.Sleep(garden.BackgroundFade)
	}
	logger.Info("garden is sleeping")
	return err
}

// shutdown plays the goodnight tones while the background fades out, then
// releases the MIDI input. Every step is bounded by ctx.
func shutdown(ctx context.Context, session *garden.Session, input *midiInput, quiet bool) error {
	g, gctx := errgroup.WithContext(ctx)
	if !quiet {
		g.Go(func() error {
			return goodnight(gctx, session)
		})
	}
	g.Go(func() error {
		return session.Shutdown(gctx)
	})
	err := g.Wait()
	if input != nil {
		err = errors.Join(err, input.Close(ctx))
	}
	return err
}

func goodnight(ctx context.Context, session *garden.Session) error {
	for i := 0; i < synth.NumGoodnight(); i++ {
		if err := session.PlayOnce(synth.GoodnightName(i)); err != nil {
			logger.Debug("goodnight tone", "err", err)
		}
		select {
		case <-time.After(goodnightStep):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// mixerOutput adapts the mixer to the session's Output.
type mixerOutput struct {
	mixer *audio.Mixer
}

func (o mixerOutput) Play(buf *synth.Buffer, loop bool, gain float64) (garden.Voice, error) {
	h, err := o.mixer.Play(buf, loop, gain)
	if err != nil {
		return nil, err
	}
	return h, nil
}
