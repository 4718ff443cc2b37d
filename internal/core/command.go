package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin subscribes the connection to a room under a display name.
	CommandJoin CommandKind = iota
	// CommandSendMessage delivers a chat message to room members.
	CommandSendMessage
	// CommandSendUpload decodes and delivers a file upload to room members.
	CommandSendUpload
	// CommandLeave unsubscribes the connection from its current room.
	CommandLeave
)

// Command represents an action requested by a connection. Upload payloads
// stay base64-encoded until the hub runs them through the attachment decoder.
type Command struct {
	Kind     CommandKind
	Username string
	Room     string
	Text     string
	Filename string
	Filedata string
}
