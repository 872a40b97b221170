package audio

import (
	"sync/atomic"

	"github.com/mrdg/garden/synth"
)

type commandKind int

const (
	cmdPlay commandKind = iota
	cmdGain
	cmdRelease
)

func (k commandKind) String() string {
	switch k {
	case cmdPlay:
		return "play"
	case cmdGain:
		return "gain"
	case cmdRelease:
		return "release"
	}
	return "unknown"
}

// command is a control change for one voice, applied by the audio callback.
type command struct {
	kind    commandKind
	index   int
	gen     uint64
	buf     *synth.Buffer
	loop    bool
	gain    float64
	release float64 // seconds
}

// commandBuffer is a lock-free spsc queue from the control side of the
// mixer to the audio callback.
type commandBuffer struct {
	commands    []command
	read, write *uint32
}

func newCommandBuffer(size int) *commandBuffer {
	if size <= 0 || size&(size-1) != 0 {
		panic("command buffer size must be a power of 2")
	}
	return &commandBuffer{
		commands: make([]command, size),
		read:     new(uint32),
		write:    new(uint32),
	}
}

// push queues cmd and reports false when the buffer is full.
func (b *commandBuffer) push(cmd command) bool {
	write := atomic.LoadUint32(b.write)
	if write-atomic.LoadUint32(b.read) == uint32(len(b.commands)) {
		return false
	}
	b.commands[write%uint32(len(b.commands))] = cmd
	atomic.StoreUint32(b.write, write+1)
	return true
}

func (b *commandBuffer) drain(f func(command)) {
	read := atomic.LoadUint32(b.read)
	write := atomic.LoadUint32(b.write)
	for read != write {
		i := read % uint32(len(b.commands))
		f(b.commands[i])
		b.commands[i].buf = nil
		read++
	}
	atomic.StoreUint32(b.read, read)
}
