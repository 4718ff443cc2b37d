package core

// EventKind is a notification the relay emits to connections.
type EventKind int

const (
	// EventRoomMessage delivers a chat message to room members.
	EventRoomMessage EventKind = iota
	// EventRoomAttachment delivers a decoded file upload to room members.
	EventRoomAttachment
	// EventRoomStatus delivers a presence announcement to room members.
	EventRoomStatus
	// EventNotice delivers a private error notice to a single connection.
	// Notices are never broadcast.
	EventNotice
)

// Event is sent to connections to describe what happened in a room.
// Exactly one of the payload fields is non-nil, matching Kind.
type Event struct {
	Kind       EventKind
	Room       string
	Message    *Message
	Attachment *Attachment
	Status     *StatusEvent
	Error      *RelayError
}
