package proto

import "encoding/json"

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin    = "join"
	InboundTypeMessage = "message"
	InboundTypeUpload  = "upload"
	InboundTypeLeave   = "leave"

	OutboundTypeMessage    = "message"
	OutboundTypeAttachment = "attachment"
	OutboundTypeStatus     = "status"
	OutboundTypeError      = "error"
)

// JoinData requests to join a room under a display name.
type JoinData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// MessageData is a chat message from the client.
type MessageData struct {
	Msg string `json:"msg"`
}

// UploadData carries a complete base64-encoded file payload.
type UploadData struct {
	Filename string `json:"filename"`
	Filedata string `json:"filedata"`
}

// LeaveData requests to leave the current room. The fields duplicate state
// the relay already tracks; they are kept for logging only.
type LeaveData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage is a chat message broadcast to room members, sender included.
type EventMessage struct {
	Username  string `json:"username"`
	Msg       string `json:"msg"`
	Timestamp string `json:"timestamp"`
}

// EventAttachment delivers a decoded upload to room members.
type EventAttachment struct {
	Username  string `json:"username"`
	Filename  string `json:"filename"`
	Filedata  string `json:"filedata"`
	Size      int64  `json:"size"`
	Timestamp string `json:"timestamp"`
}

// EventStatus is a human-readable presence line.
type EventStatus struct {
	Msg string `json:"msg"`
}

// Error describes a protocol-level error notice, sent only to the offending
// client, never broadcast.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
