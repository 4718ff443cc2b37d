package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/chatterlink/relay/internal/core"
	"github.com/chatterlink/relay/internal/proto"
)

func rawInbound(t *testing.T, eventType string, data any) proto.Inbound {
	t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	return proto.Inbound{Type: eventType, Data: payload}
}

func TestInboundToCommandJoin(t *testing.T) {
	cmd, protoErr, err := inboundToCommand(rawInbound(t, proto.InboundTypeJoin, proto.JoinData{Username: "a", Room: "r"}))
	if err != nil || protoErr != nil {
		t.Fatalf("unexpected errors: %v %v", err, protoErr)
	}
	if cmd.Kind != core.CommandJoin || cmd.Username != "a" || cmd.Room != "r" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestInboundToCommandJoinMissingFields(t *testing.T) {
	_, protoErr, err := inboundToCommand(rawInbound(t, proto.InboundTypeJoin, proto.JoinData{Username: "a"}))
	if err != nil {
		t.Fatalf("unexpected hard error: %v", err)
	}
	if protoErr == nil || protoErr.Code != core.ErrCodeBadRequest {
		t.Fatalf("expected bad_request, got %+v", protoErr)
	}
}

func TestInboundToCommandUnknownType(t *testing.T) {
	_, protoErr, err := inboundToCommand(proto.Inbound{Type: "typing", Data: []byte(`{}`)})
	if err != nil {
		t.Fatalf("unexpected hard error: %v", err)
	}
	if protoErr == nil || protoErr.Code != core.ErrCodeBadRequest {
		t.Fatalf("expected bad_request for unknown type, got %+v", protoErr)
	}
}

func TestInboundToCommandMalformedJSON(t *testing.T) {
	_, _, err := inboundToCommand(proto.Inbound{Type: proto.InboundTypeMessage, Data: []byte(`{"msg":`)})
	if err == nil {
		t.Fatal("malformed payload should be a hard error")
	}
}

func TestOutboundFromMessageEvent(t *testing.T) {
	ts := time.Date(2026, 8, 31, 14, 5, 9, 0, time.UTC)
	out := outboundFromEvent(&core.Event{
		Kind: core.EventRoomMessage,
		Room: "r",
		Message: &core.Message{
			Room:      "r",
			From:      "alice",
			Text:      "hi",
			Timestamp: ts,
		},
	})

	if out.Type != proto.OutboundTypeMessage {
		t.Fatalf("unexpected type: %s", out.Type)
	}
	data, ok := out.Data.(proto.EventMessage)
	if !ok {
		t.Fatalf("unexpected data type: %T", out.Data)
	}
	if data.Username != "alice" || data.Msg != "hi" || data.Timestamp != "14:05:09" {
		t.Fatalf("unexpected payload: %+v", data)
	}
}

func TestOutboundFromStatusEvent(t *testing.T) {
	out := outboundFromEvent(&core.Event{
		Kind:   core.EventRoomStatus,
		Room:   "r",
		Status: &core.StatusEvent{Kind: core.StatusLeft, User: "bob", Room: "r"},
	})

	data, ok := out.Data.(proto.EventStatus)
	if !ok || out.Type != proto.OutboundTypeStatus {
		t.Fatalf("unexpected outbound: %+v", out)
	}
	if data.Msg != "bob has left the room." {
		t.Fatalf("unexpected status line: %q", data.Msg)
	}
}
