package core

import "time"

// Message is the domain model for a chat message. Immutable once created;
// the timestamp is assigned by the relay at dispatch time, never by the
// sender.
type Message struct {
	Room      string
	From      string
	Text      string
	Timestamp time.Time
}

// Attachment is a fully decoded file upload, dispatched to a room exactly
// like a Message.
type Attachment struct {
	Room      string
	From      string
	Filename  string
	Data      []byte
	Size      int64
	Timestamp time.Time
}
