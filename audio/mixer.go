package audio

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mrdg/garden/synth"
)

// ErrNoVoice is returned by Play when every voice in the pool is busy.
var ErrNoVoice = errors.New("no free voice available")

// ErrBusy is returned by Play when the audio callback has fallen behind and
// cannot take more commands.
var ErrBusy = errors.New("mixer command queue full")

// DefaultVoices is the size of the voice pool unless configured otherwise.
const DefaultVoices = 16

const (
	// stopRelease is the release used by Stop: short enough to be
	// immediate, long enough not to click.
	stopRelease = 0.005

	commandBufferSize = 1024
)

// slot is the control side's view of one voice.
type slot struct {
	gen    uint64
	target float64
}

// Mixer is a bounded pool of voices playing pre-rendered buffers. Control
// methods may be called from any goroutine; they only touch the control
// side and hand changes to the audio callback through a lock-free queue,
// so Process never waits on a lock.
type Mixer struct {
	mu       sync.Mutex // guards slots, nextGen and pushes to commands
	slots    []slot
	nextGen  uint64
	commands *commandBuffer

	// owned by the audio callback
	voices []*bufferVoice
	left   []float32
	right  []float32

	logger *slog.Logger
}

func NewMixer(numVoices, sampleRate int, logger *slog.Logger) *Mixer {
	if numVoices <= 0 {
		numVoices = DefaultVoices
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Mixer{
		slots:    make([]slot, numVoices),
		commands: newCommandBuffer(commandBufferSize),
		logger:   logger,
	}
	for n := 0; n < numVoices; n++ {
		m.voices = append(m.voices, &bufferVoice{
			state: stateFree,
			env:   &envelope{sampleRate: float64(sampleRate), attack: 0.002},
		})
	}
	return m
}

// Play starts buf on a free voice. It returns ErrNoVoice when the pool is
// exhausted; nothing is stolen.
func (m *Mixer) Play(buf *synth.Buffer, loop bool, gain float64) (*Handle, error) {
	if buf == nil || buf.Frames() == 0 {
		return nil, errors.New("empty buffer")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.findFreeVoice()
	if index < 0 {
		m.logger.Debug("mixer: no free voice available", "sound", buf.Name)
		return nil, ErrNoVoice
	}
	gen := m.nextGen + 1
	gain = clampGain(gain)
	if !m.commands.push(command{kind: cmdPlay, index: index, gen: gen, buf: buf, loop: loop, gain: gain}) {
		return nil, ErrBusy
	}
	m.nextGen = gen
	m.slots[index] = slot{gen: gen, target: gain}
	return &Handle{m: m, index: index, gen: gen}, nil
}

// busy reports whether voice i is assigned to a playback that has not
// finished yet. The mixer lock must be held.
func (m *Mixer) busy(i int) bool {
	return m.slots[i].gen != m.voices[i].finished.Load()
}

func (m *Mixer) findFreeVoice() int {
	for i := range m.slots {
		if !m.busy(i) {
			return i
		}
	}
	return -1
}

// send queues cmd for the audio callback. The mixer lock must be held.
func (m *Mixer) send(cmd command) {
	if !m.commands.push(cmd) {
		m.logger.Warn("mixer: command queue full, command dropped", "command", cmd.kind, "voice", cmd.index)
	}
}

// Active returns the number of voices currently sounding.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for i := range m.slots {
		if m.busy(i) {
			n++
		}
	}
	return n
}

// FadeAll releases every sounding voice over d.
func (m *Mixer) FadeAll(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.slots {
		if m.busy(i) {
			m.send(command{kind: cmdRelease, index: i, gen: s.gen, release: d.Seconds()})
		}
	}
}

// apply runs on the audio callback. Commands for a playback the voice no
// longer carries are ignored.
func (m *Mixer) apply(cmd command) {
	v := m.voices[cmd.index]
	switch cmd.kind {
	case cmdPlay:
		v.play(cmd.gen, cmd.buf, cmd.loop, cmd.gain)
	case cmdGain:
		if v.gen == cmd.gen && v.state != stateFree {
			v.target = cmd.gain
		}
	case cmdRelease:
		if v.gen == cmd.gen {
			v.release(cmd.release)
		}
	}
}

// Process mixes all active voices into samples, a pair of non-interleaved
// stereo channels. It adds to whatever is already in samples.
func (m *Mixer) Process(samples [][]float32) {
	m.commands.drain(m.apply)

	n := len(samples[0])
	if cap(m.left) < n {
		m.left = make([]float32, n)
		m.right = make([]float32, n)
	}
	left, right := m.left[:n], m.right[:n]
	for i := range left {
		left[i] = 0
		right[i] = 0
	}

	for _, v := range m.voices {
		if v.state == stateFree {
			continue
		}
		v.process(left, right)
	}

	r := samples[0]
	if len(samples) > 1 {
		r = samples[1]
	}
	for i := range left {
		samples[0][i] += left[i]
		r[i] += right[i]
	}
}

// Handle refers to one playback started by Play. Once the playback has
// finished, or the voice has been reassigned to another sound, the handle
// becomes inert.
type Handle struct {
	m     *Mixer
	index int
	gen   uint64
}

// owns reports whether the handle's playback is still sounding. The mixer
// lock must be held.
func (h *Handle) owns() bool {
	return h.m.slots[h.index].gen == h.gen && h.m.busy(h.index)
}

func (h *Handle) SetGain(gain float64) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if !h.owns() {
		return
	}
	gain = clampGain(gain)
	h.m.slots[h.index].target = gain
	h.m.send(command{kind: cmdGain, index: h.index, gen: h.gen, gain: gain})
}

// Stop silences the voice almost immediately.
func (h *Handle) Stop() {
	h.FadeOut(stopRelease * time.Second)
}

// FadeOut ramps the voice to silence over d and then frees it.
func (h *Handle) FadeOut(d time.Duration) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.owns() {
		h.m.send(command{kind: cmdRelease, index: h.index, gen: h.gen, release: d.Seconds()})
	}
}

// Playing reports whether the voice is still sounding for this handle,
// including while it fades out.
func (h *Handle) Playing() bool {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return h.owns()
}

// Gain returns the gain the voice is moving towards.
func (h *Handle) Gain() float64 {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.owns() {
		return h.m.slots[h.index].target
	}
	return 0
}

func clampGain(g float64) float64 {
	if g < 0 {
		return 0
	}
	if g > 1 {
		return 1
	}
	return g
}
