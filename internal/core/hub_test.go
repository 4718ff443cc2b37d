package core

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"
)

func startHub(t *testing.T, opts Options) *Hub {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	hub := NewHub(opts, nil)
	go hub.Run(ctx)
	return hub
}

func TestHubJoinBroadcastAndLeave(t *testing.T) {
	hub := startHub(t, Options{})

	alice := hub.NewConn()
	bob := hub.NewConn()
	hub.Register(alice)
	hub.Register(bob)

	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "lobby"}
	bob.Commands <- &Command{Kind: CommandJoin, Username: "bob", Room: "lobby"}

	// Bob joined after Alice, so his first status is his own join.
	joinEv := mustEvent(t, bob.Events, EventRoomStatus)
	if joinEv.Status.Kind != StatusJoined || joinEv.Status.User != "bob" || joinEv.Status.Room != "lobby" {
		t.Fatalf("unexpected join status: %+v", joinEv.Status)
	}
	if got := joinEv.Status.Text(); got != "bob has entered the room." {
		t.Fatalf("unexpected status text: %q", got)
	}

	alice.Commands <- &Command{Kind: CommandSendMessage, Text: "hi"}

	msgEv := mustEvent(t, bob.Events, EventRoomMessage)
	if msgEv.Message.Text != "hi" || msgEv.Message.Room != "lobby" || msgEv.Message.From != "alice" {
		t.Fatalf("unexpected message event: %+v", msgEv.Message)
	}

	// The sender receives her own message too (local echo), with the same
	// relay-assigned timestamp.
	echoEv := mustEvent(t, alice.Events, EventRoomMessage)
	if echoEv.Message.From != "alice" || echoEv.Message.Text != "hi" {
		t.Fatalf("unexpected echo event: %+v", echoEv.Message)
	}
	if !echoEv.Message.Timestamp.Equal(msgEv.Message.Timestamp) {
		t.Fatalf("timestamps differ between recipients: %v vs %v",
			echoEv.Message.Timestamp, msgEv.Message.Timestamp)
	}

	alice.Commands <- &Command{Kind: CommandLeave}
	leftEv := mustEvent(t, bob.Events, EventRoomStatus)
	if leftEv.Status.Kind != StatusLeft || leftEv.Status.User != "alice" {
		t.Fatalf("unexpected leave status: %+v", leftEv.Status)
	}
}

func TestHubJoinWhileInRoomRejected(t *testing.T) {
	hub := startHub(t, Options{})

	alice := hub.NewConn()
	bob := hub.NewConn()
	hub.Register(alice)
	hub.Register(bob)

	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "r1"}
	bob.Commands <- &Command{Kind: CommandJoin, Username: "bob", Room: "r1"}
	mustEvent(t, bob.Events, EventRoomStatus)

	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "r2"}

	ev := mustEvent(t, alice.Events, EventNotice)
	if ev.Error == nil || ev.Error.Code != ErrCodeAlreadyInRoom {
		t.Fatalf("expected already_in_room notice, got %+v", ev)
	}

	// Membership in r1 is untouched: Alice still receives r1 traffic.
	bob.Commands <- &Command{Kind: CommandSendMessage, Text: "still here?"}
	msgEv := mustEvent(t, alice.Events, EventRoomMessage)
	if msgEv.Message.Room != "r1" || msgEv.Message.From != "bob" {
		t.Fatalf("unexpected message after rejected join: %+v", msgEv.Message)
	}
}

func TestHubMessageBeforeJoinProducesNotice(t *testing.T) {
	hub := startHub(t, Options{})

	alice := hub.NewConn()
	hub.Register(alice)

	alice.Commands <- &Command{Kind: CommandSendMessage, Text: "hi"}

	ev := mustEvent(t, alice.Events, EventNotice)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room notice, got %+v", ev)
	}
}

func TestHubEmptyMessageIgnored(t *testing.T) {
	hub := startHub(t, Options{})

	alice := hub.NewConn()
	hub.Register(alice)
	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "lobby"}
	mustEvent(t, alice.Events, EventRoomStatus)

	alice.Commands <- &Command{Kind: CommandSendMessage, Text: ""}
	alice.Commands <- &Command{Kind: CommandSendMessage, Text: "real"}

	msgEv := mustEvent(t, alice.Events, EventRoomMessage)
	if msgEv.Message.Text != "real" {
		t.Fatalf("empty message was dispatched: %+v", msgEv.Message)
	}
}

func TestHubMessageTooLongRejected(t *testing.T) {
	hub := startHub(t, Options{MaxMessageBytes: 8})

	alice := hub.NewConn()
	hub.Register(alice)
	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "lobby"}
	mustEvent(t, alice.Events, EventRoomStatus)

	alice.Commands <- &Command{Kind: CommandSendMessage, Text: "far too long for the limit"}

	ev := mustEvent(t, alice.Events, EventNotice)
	if ev.Error == nil || ev.Error.Code != ErrCodeMessageTooLong {
		t.Fatalf("expected message_too_long notice, got %+v", ev)
	}
}

func TestHubLeaveAndRejoinAnotherRoom(t *testing.T) {
	hub := startHub(t, Options{})

	alice := hub.NewConn()
	hub.Register(alice)

	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "r1"}
	mustEvent(t, alice.Events, EventRoomStatus)

	// The leave payload fields are informational only and are not
	// re-validated against tracked state.
	alice.Commands <- &Command{Kind: CommandLeave, Username: "mallory", Room: "other"}

	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "r2"}
	joinEv := mustEvent(t, alice.Events, EventRoomStatus)
	for joinEv.Status.Kind != StatusJoined || joinEv.Status.Room != "r2" {
		joinEv = mustEvent(t, alice.Events, EventRoomStatus)
	}
	if alice.State() != StateInRoom {
		t.Fatalf("expected InRoom after rejoin, got %v", alice.State())
	}
}

func TestHubLeaveWithoutJoinProducesNotice(t *testing.T) {
	hub := startHub(t, Options{})

	alice := hub.NewConn()
	hub.Register(alice)

	alice.Commands <- &Command{Kind: CommandLeave}

	ev := mustEvent(t, alice.Events, EventNotice)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room notice, got %+v", ev)
	}
}

func TestHubUnregisterAnnouncesDeparture(t *testing.T) {
	hub := startHub(t, Options{})

	alice := hub.NewConn()
	bob := hub.NewConn()
	hub.Register(alice)
	hub.Register(bob)

	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "lobby"}
	bob.Commands <- &Command{Kind: CommandJoin, Username: "bob", Room: "lobby"}
	mustEvent(t, bob.Events, EventRoomStatus)

	hub.Unregister(alice)

	leftEv := mustEvent(t, bob.Events, EventRoomStatus)
	for leftEv.Status.Kind != StatusLeft {
		leftEv = mustEvent(t, bob.Events, EventRoomStatus)
	}
	if leftEv.Status.User != "alice" {
		t.Fatalf("unexpected departure status: %+v", leftEv.Status)
	}

	// The closed connection's queue is released.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if alice.State() == StateClosed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("connection never reached Closed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubPerRoomOrdering(t *testing.T) {
	hub := startHub(t, Options{QueueCapacity: 128})

	alice := hub.NewConn()
	bob := hub.NewConn()
	carol := hub.NewConn()
	hub.Register(alice)
	hub.Register(bob)
	hub.Register(carol)

	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "ordered"}
	bob.Commands <- &Command{Kind: CommandJoin, Username: "bob", Room: "ordered"}
	carol.Commands <- &Command{Kind: CommandJoin, Username: "carol", Room: "ordered"}
	mustEvent(t, carol.Events, EventRoomStatus)

	const n = 20
	for i := 0; i < n; i++ {
		alice.Commands <- &Command{Kind: CommandSendMessage, Text: fmt.Sprintf("m%d", i)}
	}

	for _, member := range []*Conn{alice, bob, carol} {
		for i := 0; i < n; i++ {
			ev := mustEvent(t, member.Events, EventRoomMessage)
			if want := fmt.Sprintf("m%d", i); ev.Message.Text != want {
				t.Fatalf("out of order: got %q, want %q", ev.Message.Text, want)
			}
		}
	}
}

func TestHubStatusOrderedWithMessages(t *testing.T) {
	hub := startHub(t, Options{})

	alice := hub.NewConn()
	hub.Register(alice)
	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "mixed"}
	alice.Commands <- &Command{Kind: CommandSendMessage, Text: "after join"}

	// Alice's own join status must precede her message in her queue.
	first := mustEvent(t, alice.Events, EventRoomStatus)
	if first.Status.Kind != StatusJoined {
		t.Fatalf("expected join status first, got %+v", first)
	}
	second := mustEvent(t, alice.Events, EventRoomMessage)
	if second.Message.Text != "after join" {
		t.Fatalf("unexpected message: %+v", second.Message)
	}
}

func TestHubUploadRoundTrip(t *testing.T) {
	hub := startHub(t, Options{})

	alice := hub.NewConn()
	bob := hub.NewConn()
	hub.Register(alice)
	hub.Register(bob)

	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "files"}
	bob.Commands <- &Command{Kind: CommandJoin, Username: "bob", Room: "files"}
	mustEvent(t, bob.Events, EventRoomStatus)

	payload := []byte("ten bytes!")
	alice.Commands <- &Command{
		Kind:     CommandSendUpload,
		Filename: "notes.txt",
		Filedata: base64.StdEncoding.EncodeToString(payload),
	}

	ev := mustEvent(t, bob.Events, EventRoomAttachment)
	if ev.Attachment.Filename != "notes.txt" || ev.Attachment.From != "alice" {
		t.Fatalf("unexpected attachment: %+v", ev.Attachment)
	}
	if string(ev.Attachment.Data) != string(payload) || ev.Attachment.Size != int64(len(payload)) {
		t.Fatalf("attachment bytes corrupted: %q", ev.Attachment.Data)
	}
}

func TestHubUploadRejectedNotBroadcast(t *testing.T) {
	hub := startHub(t, Options{MaxAttachmentBytes: 4})

	alice := hub.NewConn()
	bob := hub.NewConn()
	hub.Register(alice)
	hub.Register(bob)

	alice.Commands <- &Command{Kind: CommandJoin, Username: "alice", Room: "files"}
	bob.Commands <- &Command{Kind: CommandJoin, Username: "bob", Room: "files"}
	mustEvent(t, bob.Events, EventRoomStatus)

	alice.Commands <- &Command{
		Kind:     CommandSendUpload,
		Filename: "big.bin",
		Filedata: base64.StdEncoding.EncodeToString([]byte("way past the limit")),
	}

	ev := mustEvent(t, alice.Events, EventNotice)
	if ev.Error == nil || ev.Error.Code != ErrCodeDecodeFailed {
		t.Fatalf("expected decode_failed notice, got %+v", ev)
	}

	// The failure is private to the sender.
	noEvent(t, bob.Events, EventRoomAttachment, 200*time.Millisecond)
	noEvent(t, bob.Events, EventNotice, 50*time.Millisecond)
}
