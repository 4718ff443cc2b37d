package core

import (
	"fmt"
	"time"
)

// StatusKind distinguishes join from leave announcements.
type StatusKind int

const (
	// StatusJoined announces a connection entering a room.
	StatusJoined StatusKind = iota
	// StatusLeft announces a connection leaving a room.
	StatusLeft
)

// StatusEvent is a synthesized presence announcement.
type StatusEvent struct {
	Kind      StatusKind
	User      string
	Room      string
	Timestamp time.Time
}

// Text renders the announcement as the human-readable line clients display.
func (s *StatusEvent) Text() string {
	switch s.Kind {
	case StatusJoined:
		return fmt.Sprintf("%s has entered the room.", s.User)
	case StatusLeft:
		return fmt.Sprintf("%s has left the room.", s.User)
	default:
		return ""
	}
}

// Presence generates join/leave announcements. The hub invokes it right
// after a membership mutation commits, so status events hold their place in
// the room's event order.
type Presence struct {
	now func() time.Time
}

// NewPresence builds an emitter stamping events with now.
func NewPresence(now func() time.Time) *Presence {
	if now == nil {
		now = time.Now
	}
	return &Presence{now: now}
}

// Joined produces the announcement for user entering room.
func (p *Presence) Joined(user, room string) *Event {
	return p.announce(StatusJoined, user, room)
}

// Left produces the announcement for user leaving room.
func (p *Presence) Left(user, room string) *Event {
	return p.announce(StatusLeft, user, room)
}

func (p *Presence) announce(kind StatusKind, user, room string) *Event {
	return &Event{
		Kind: EventRoomStatus,
		Room: room,
		Status: &StatusEvent{
			Kind:      kind,
			User:      user,
			Room:      room,
			Timestamp: p.now(),
		},
	}
}
