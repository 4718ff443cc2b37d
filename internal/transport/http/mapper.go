package http

import (
	"encoding/base64"
	"encoding/json"

	"github.com/chatterlink/relay/internal/core"
	"github.com/chatterlink/relay/internal/proto"
)

// timestampLayout is the wall-clock format clients display.
const timestampLayout = "15:04:05"

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Username == "" || join.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "username and room are required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandJoin,
			Username: join.Username,
			Room:     join.Room,
		}, nil, nil
	case proto.InboundTypeMessage:
		var msg proto.MessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Text: msg.Msg,
		}, nil, nil
	case proto.InboundTypeUpload:
		var up proto.UploadData
		if err := json.Unmarshal(inbound.Data, &up); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:     core.CommandSendUpload,
			Filename: up.Filename,
			Filedata: up.Filedata,
		}, nil, nil
	case proto.InboundTypeLeave:
		var leave proto.LeaveData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:     core.CommandLeave,
			Username: leave.Username,
			Room:     leave.Room,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unknown event type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeMessage,
			Data: proto.EventMessage{
				Username:  event.Message.From,
				Msg:       event.Message.Text,
				Timestamp: event.Message.Timestamp.Format(timestampLayout),
			},
		}
	case core.EventRoomAttachment:
		return proto.Outbound{
			Type: proto.OutboundTypeAttachment,
			Data: proto.EventAttachment{
				Username:  event.Attachment.From,
				Filename:  event.Attachment.Filename,
				Filedata:  base64.StdEncoding.EncodeToString(event.Attachment.Data),
				Size:      event.Attachment.Size,
				Timestamp: event.Attachment.Timestamp.Format(timestampLayout),
			},
		}
	case core.EventRoomStatus:
		return proto.Outbound{
			Type: proto.OutboundTypeStatus,
			Data: proto.EventStatus{Msg: event.Status.Text()},
		}
	case core.EventNotice:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event kind"}}
	}
}
