package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options bound the relay's per-connection resources.
type Options struct {
	// QueueCapacity is each connection's outbound event queue size.
	QueueCapacity int
	// MaxAttachmentBytes bounds the decoded size of an upload.
	MaxAttachmentBytes int64
	// MaxMessageBytes bounds the length of a chat message.
	MaxMessageBytes int
}

// DefaultOptions mirror the config defaults.
func DefaultOptions() Options {
	return Options{
		QueueCapacity:      64,
		MaxAttachmentBytes: 5 << 20,
		MaxMessageBytes:    4096,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = def.QueueCapacity
	}
	if o.MaxAttachmentBytes <= 0 {
		o.MaxAttachmentBytes = def.MaxAttachmentBytes
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = def.MaxMessageBytes
	}
	return o
}

type submission struct {
	conn *Conn
	cmd  *Command
}

// Hub is the relay's coordination actor. A single goroutine (Run) owns the
// room registry, the connection table and all membership mutation, which
// serializes admits/evicts per room and gives every room a total event
// order without per-room locking.
type Hub struct {
	opts       Options
	registry   *Registry
	dispatcher *Dispatcher
	presence   *Presence
	decoder    *Decoder

	register   chan *Conn
	unregister chan *Conn
	commands   chan submission
	done       chan struct{}

	conns map[*Conn]struct{}
	now   func() time.Time
	log   *zerolog.Logger
}

// NewHub constructs a hub with the given resource bounds.
func NewHub(opts Options, logger *zerolog.Logger) *Hub {
	opts = opts.withDefaults()
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		opts:       opts,
		registry:   NewRegistry(),
		dispatcher: NewDispatcher(logger),
		presence:   NewPresence(time.Now),
		decoder:    NewDecoder(opts.MaxAttachmentBytes),
		register:   make(chan *Conn),
		unregister: make(chan *Conn),
		commands:   make(chan submission, 256),
		done:       make(chan struct{}),
		conns:      make(map[*Conn]struct{}),
		now:        time.Now,
		log:        logger,
	}
}

// MaxAttachmentBytes reports the decoded-size bound the hub enforces on
// uploads. The transport sizes its socket read limit from it.
func (h *Hub) MaxAttachmentBytes() int64 {
	return h.opts.MaxAttachmentBytes
}

// NewConn builds a connection sized to this hub's queue capacity.
func (h *Hub) NewConn() *Conn {
	return NewConn(uuid.NewString(), h.opts.QueueCapacity)
}

// Register hands a new connection to the hub.
func (h *Hub) Register(c *Conn) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister tells the hub a connection's socket is gone. Idempotent; if
// the connection is in a room it is evicted and its departure announced.
func (h *Hub) Unregister(c *Conn) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run processes registrations and commands until ctx is cancelled. Commands
// from all connections funnel through one channel, so each connection's
// commands apply in the order it sent them and every room observes a single
// total order.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.handleRegister(ctx, c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case sub := <-h.commands:
			h.handleCommand(sub.conn, sub.cmd)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleRegister(ctx context.Context, c *Conn) {
	if _, ok := h.conns[c]; ok {
		return
	}
	h.conns[c] = struct{}{}
	h.log.Debug().Str("conn_id", c.ID).Msg("connection registered")

	// Forward this connection's commands into the shared channel, keeping
	// per-connection FIFO order.
	go func() {
		for {
			select {
			case cmd, ok := <-c.Commands:
				if !ok {
					return
				}
				select {
				case h.commands <- submission{conn: c, cmd: cmd}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (h *Hub) handleUnregister(c *Conn) {
	if _, ok := h.conns[c]; !ok {
		return
	}
	if c.room != nil {
		h.evictAndAnnounce(c)
	}
	c.setState(StateClosed)
	delete(h.conns, c)
	close(c.Events)
	h.log.Debug().Str("conn_id", c.ID).Msg("connection closed")
}

func (h *Hub) handleCommand(c *Conn, cmd *Command) {
	if _, ok := h.conns[c]; !ok {
		return
	}
	switch cmd.Kind {
	case CommandJoin:
		h.handleJoin(c, cmd)
	case CommandSendMessage:
		h.handleMessage(c, cmd)
	case CommandSendUpload:
		h.handleUpload(c, cmd)
	case CommandLeave:
		h.handleLeave(c, cmd)
	default:
		h.notify(c, ErrCodeBadRequest, "unknown command")
	}
}

func (h *Hub) handleJoin(c *Conn, cmd *Command) {
	if cmd.Username == "" || cmd.Room == "" {
		h.notify(c, ErrCodeBadRequest, "username and room are required")
		return
	}
	if c.State() == StateInRoom {
		h.log.Warn().Str("conn_id", c.ID).Str("room", cmd.Room).Msg("join while already in a room")
		h.notify(c, ErrCodeAlreadyInRoom, ErrAlreadyInRoom.Error())
		return
	}

	room, created := h.registry.GetOrCreate(cmd.Room)
	if created {
		h.log.Info().Str("room", room.Name()).Msg("room created")
	}

	c.name = cmd.Username
	room.Admit(c)
	c.room = room
	c.setState(StateInRoom)

	h.log.Info().
		Str("conn_id", c.ID).
		Str("user", c.name).
		Str("room", room.Name()).
		Int("members", room.Len()).
		Msg("joined room")

	h.dispatcher.Dispatch(room, h.presence.Joined(c.name, room.Name()))
}

func (h *Hub) handleMessage(c *Conn, cmd *Command) {
	if c.State() != StateInRoom {
		h.log.Warn().Str("conn_id", c.ID).Msg("message before join")
		h.notify(c, ErrCodeNotInRoom, ErrNotInRoom.Error())
		return
	}
	if cmd.Text == "" {
		// Matches the client's own non-empty check; not an error.
		return
	}
	if len(cmd.Text) > h.opts.MaxMessageBytes {
		h.notify(c, ErrCodeMessageTooLong, "message exceeds size limit")
		return
	}

	room := c.room
	msg := &Message{
		Room:      room.Name(),
		From:      c.name,
		Text:      cmd.Text,
		Timestamp: h.now(),
	}
	h.dispatcher.Dispatch(room, &Event{
		Kind:    EventRoomMessage,
		Room:    room.Name(),
		Message: msg,
	})
}

func (h *Hub) handleUpload(c *Conn, cmd *Command) {
	if c.State() != StateInRoom {
		h.log.Warn().Str("conn_id", c.ID).Msg("upload before join")
		h.notify(c, ErrCodeNotInRoom, ErrNotInRoom.Error())
		return
	}

	att, err := h.decoder.Decode(cmd.Filename, cmd.Filedata)
	if err != nil {
		h.log.Warn().
			Err(err).
			Str("conn_id", c.ID).
			Str("filename", cmd.Filename).
			Msg("attachment rejected")
		h.notify(c, ErrCodeDecodeFailed, err.Error())
		return
	}

	room := c.room
	att.Room = room.Name()
	att.From = c.name
	att.Timestamp = h.now()

	h.log.Info().
		Str("conn_id", c.ID).
		Str("room", room.Name()).
		Str("filename", att.Filename).
		Int64("size", att.Size).
		Msg("attachment dispatched")

	h.dispatcher.Dispatch(room, &Event{
		Kind:       EventRoomAttachment,
		Room:       room.Name(),
		Attachment: att,
	})
}

func (h *Hub) handleLeave(c *Conn, cmd *Command) {
	if c.State() != StateInRoom {
		h.log.Warn().Str("conn_id", c.ID).Msg("leave while not in a room")
		h.notify(c, ErrCodeNotInRoom, ErrNotInRoom.Error())
		return
	}
	// The leave payload repeats state the relay tracks; log it, trust ours.
	h.log.Info().
		Str("conn_id", c.ID).
		Str("user", c.name).
		Str("claimed_user", cmd.Username).
		Str("claimed_room", cmd.Room).
		Msg("leaving room")

	h.evictAndAnnounce(c)
	c.setState(StateConnected)
}

// evictAndAnnounce removes c from its room, announces the departure to the
// remaining members, and releases the room if it emptied. Runs on the hub
// goroutine so no join can slip between the evict and the release check.
func (h *Hub) evictAndAnnounce(c *Conn) {
	room := c.room
	if room == nil {
		return
	}
	room.Evict(c)
	c.room = nil

	h.dispatcher.Dispatch(room, h.presence.Left(c.name, room.Name()))

	if h.registry.ReleaseIfEmpty(room) {
		h.log.Info().Str("room", room.Name()).Msg("room released")
	}
}

func (h *Hub) notify(c *Conn, code, msg string) {
	h.dispatcher.Notify(c, &Event{
		Kind:  EventNotice,
		Error: relayError(code, msg),
	})
}
