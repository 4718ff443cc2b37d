package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/chatterlink/relay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("relay-client: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "display name")
	room := flag.String("room", "lobby", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	// Incoming attachment frames can be several MiB of base64.
	conn.SetReadLimit(8 << 20)

	if err := send(ctx, conn, proto.InboundTypeJoin, proto.JoinData{Username: *user, Room: *room}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println("Type to chat. /file <path> uploads a file, /leave leaves the room, /quit exits.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *user, *room)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: eventType, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", eventType, err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound struct {
			Type  string          `json:"type"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch outbound.Type {
		case proto.OutboundTypeMessage:
			var evt proto.EventMessage
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			fmt.Printf("%s [%s]: %s\n", evt.Username, evt.Timestamp, evt.Msg)
		case proto.OutboundTypeAttachment:
			var evt proto.EventAttachment
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal attachment: %v", err)
				continue
			}
			fmt.Printf("%s [%s] sent a file: %s (%d bytes)\n", evt.Username, evt.Timestamp, evt.Filename, evt.Size)
		case proto.OutboundTypeStatus:
			var evt proto.EventStatus
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal status: %v", err)
				continue
			}
			fmt.Printf("* %s\n", evt.Msg)
		case proto.OutboundTypeError:
			if outbound.Error != nil {
				fmt.Printf("! %s: %s\n", outbound.Error.Code, outbound.Error.Msg)
			}
		default:
			fmt.Printf("type=%s data=%s\n", outbound.Type, outbound.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, user, room string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			switch {
			case text == "":
				continue
			case text == "/quit":
				return
			case text == "/leave":
				if err := send(ctx, conn, proto.InboundTypeLeave, proto.LeaveData{Username: user, Room: room}); err != nil {
					log.Printf("%v", err)
					return
				}
			case strings.HasPrefix(text, "/file "):
				path := strings.TrimSpace(strings.TrimPrefix(text, "/file "))
				if err := sendFile(ctx, conn, path); err != nil {
					log.Printf("upload: %v", err)
				}
			default:
				if err := send(ctx, conn, proto.InboundTypeMessage, proto.MessageData{Msg: text}); err != nil {
					log.Printf("%v", err)
					return
				}
			}
		}
	}
}

func sendFile(ctx context.Context, conn *websocket.Conn, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return send(ctx, conn, proto.InboundTypeUpload, proto.UploadData{
		Filename: filepath.Base(path),
		Filedata: base64.StdEncoding.EncodeToString(data),
	})
}
