package core

import "github.com/rs/zerolog"

// Dispatcher fans an event out to every current member of a room. Delivery
// to one member never blocks or fails delivery to another: each connection's
// queue is independent and overflow is resolved by dropping that
// connection's oldest unsent event.
type Dispatcher struct {
	log *zerolog.Logger
}

// NewDispatcher builds a dispatcher logging drops through logger.
func NewDispatcher(logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{log: logger}
}

// Dispatch delivers ev to every member in room's current snapshot, sender
// included. Events reach each member's queue in submission order; the hub
// calls Dispatch from a single goroutine, which makes that order total per
// room.
func (d *Dispatcher) Dispatch(room *Room, ev *Event) {
	for _, member := range room.Snapshot() {
		if member.enqueue(ev) {
			if member.markDegraded() {
				d.log.Warn().
					Str("conn_id", member.ID).
					Str("room", room.Name()).
					Msg("outbound queue overflow, connection degraded")
			}
		}
	}
}

// Notify delivers a private event to a single connection, bypassing room
// membership. Used for error notices to the offending sender.
func (d *Dispatcher) Notify(c *Conn, ev *Event) {
	if c.enqueue(ev) && c.markDegraded() {
		d.log.Warn().Str("conn_id", c.ID).Msg("outbound queue overflow, connection degraded")
	}
}
