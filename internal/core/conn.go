package core

import "sync/atomic"

// ConnState tracks where a connection is in its lifecycle.
type ConnState int32

const (
	// StateConnected means the socket is open but the connection is in no room.
	StateConnected ConnState = iota
	// StateInRoom means the connection is a member of exactly one room.
	StateInRoom
	// StateClosed is terminal, reached on socket termination.
	StateClosed
)

// Conn is one client session as seen by the relay core. It is the unit of
// room membership and of backpressure isolation: Events is a bounded queue
// private to this connection, and overflow on it never affects any other
// connection.
type Conn struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	// name and room are owned by the hub goroutine.
	name string
	room *Room

	state    atomic.Int32
	degraded atomic.Bool
}

// NewConn constructs a connection with a bounded outbound queue.
func NewConn(id string, queueCapacity int) *Conn {
	if queueCapacity <= 0 {
		queueCapacity = 1
	}
	return &Conn{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, queueCapacity),
	}
}

// State reports the connection's current lifecycle state.
func (c *Conn) State() ConnState {
	return ConnState(c.state.Load())
}

// Degraded reports whether this connection has ever overflowed its outbound
// queue and lost an event.
func (c *Conn) Degraded() bool {
	return c.degraded.Load()
}

func (c *Conn) setState(s ConnState) {
	c.state.Store(int32(s))
}

// enqueue places ev on the outbound queue without ever blocking. When the
// queue is full the oldest unsent event is dropped to make room. Returns
// true if this call dropped anything.
func (c *Conn) enqueue(ev *Event) bool {
	dropped := false
	for {
		select {
		case c.Events <- ev:
			return dropped
		default:
		}
		// Queue full: evict the oldest unsent event and retry. The writer
		// may drain concurrently, in which case the retry just succeeds.
		select {
		case <-c.Events:
			dropped = true
		default:
		}
	}
}

// markDegraded flips the degraded flag, returning true on the first
// transition so the caller can log it exactly once.
func (c *Conn) markDegraded() bool {
	return c.degraded.CompareAndSwap(false, true)
}
