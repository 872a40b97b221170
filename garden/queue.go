package garden

import "sync/atomic"

// EventQueue is a lock-free spsc queue carrying events from the controller
// callback to the session's event loop.
type EventQueue struct {
	events      []Event
	read, write *uint32
}

func NewEventQueue(size int) *EventQueue {
	if size <= 0 || size&(size-1) != 0 {
		panic("event queue size must be a power of 2")
	}
	return &EventQueue{
		events: make([]Event, size),
		read:   new(uint32),
		write:  new(uint32),
	}
}

// Push appends ev and reports whether it was queued. It never blocks: when
// the queue is full the event is dropped and Push returns false.
func (q *EventQueue) Push(ev Event) bool {
	write := atomic.LoadUint32(q.write)
	if write-atomic.LoadUint32(q.read) == uint32(len(q.events)) {
		return false
	}
	q.events[write%uint32(len(q.events))] = ev
	atomic.StoreUint32(q.write, write+1)
	return true
}

// Drain calls f for every queued event in arrival order and returns the
// number of events consumed.
func (q *EventQueue) Drain(f func(Event)) int {
	read := atomic.LoadUint32(q.read)
	write := atomic.LoadUint32(q.write)
	n := 0
	for read != write {
		f(q.events[read%uint32(len(q.events))])
		read++
		n++
	}
	atomic.StoreUint32(q.read, read)
	return n
}

// Len returns the number of events waiting to be drained.
func (q *EventQueue) Len() int {
	return int(atomic.LoadUint32(q.write) - atomic.LoadUint32(q.read))
}
