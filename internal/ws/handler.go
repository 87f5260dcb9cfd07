package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pkelleher/live-poll-backend/internal/hub"
	"github.com/pkelleher/live-poll-backend/internal/poll"
	"github.com/pkelleher/live-poll-backend/internal/room"
	"github.com/pkelleher/live-poll-backend/internal/types"
)

// Handler upgrades the connection and runs the command loop for one
// participant. Room-wide broadcasts flow through the outbox and the
// writer goroutine; command replies and errors go straight back on the
// connection.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		out := make(chan room.Event, 8)

		log.Debug("client connected", zap.String("conn", connID))

		// A disconnect sweeps this connection out of every room it
		// joined; rooms it leaves empty get deleted.
		defer func() { h.Inbox() <- hub.Disconnect{ConnID: connID} }()

		// Writer goroutine: broadcasts only. The handler owns out for
		// the connection's lifetime; rooms only ever drop their
		// reference to it, so the one channel safely fans in events
		// from every room this connection joins, and the goroutine
		// exits with the handler rather than on a channel close.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case <-writeCtx.Done():
					return
				case ev := <-out:
					p := ev.Poll
					msg := types.ServerMessage{Type: ev.Type, Poll: &p}
					payload, _ := json.Marshal(msg)
					ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
					_ = conn.Write(ctx, websocket.MessageText, payload)
					cancel()
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (hub.Disconnect in defer):
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				reply(r.Context(), conn, types.ServerMessage{Type: "error", Error: "bad json"})
				continue
			}

			switch cm.Type {
			case "create-room":
				creply := make(chan hub.Created, 1)
				h.Inbox() <- hub.CreateRoom{ConnID: connID, Name: cm.Name, Outbox: out, Reply: creply}
				created := <-creply
				reply(r.Context(), conn, types.ServerMessage{
					Type:     "room-created",
					RoomCode: created.Code,
					Poll:     &created.Poll,
				})

			case "join-room":
				rm := lookup(h, cm.RoomCode)
				if rm == nil {
					reply(r.Context(), conn, types.ServerMessage{Type: "error", Error: "Room not found"})
					continue
				}
				jreply := make(chan room.JoinInfo, 1)
				rm.Inbox() <- room.Join{ConnID: connID, Name: cm.Name, Outbox: out, Reply: jreply}
				info := <-jreply
				reply(r.Context(), conn, types.ServerMessage{
					Type:          "room-joined",
					RoomCode:      rm.Code(),
					Poll:          &info.Poll,
					TimeRemaining: info.TimeRemaining,
				})

			case "submit-vote":
				rm := lookup(h, cm.RoomCode)
				if rm == nil {
					reply(r.Context(), conn, types.ServerMessage{Type: "error", Error: "Room not found"})
					continue
				}
				vreply := make(chan error, 1)
				rm.Inbox() <- room.SubmitVote{ConnID: connID, OptionID: cm.OptionID, Reply: vreply}
				if err := <-vreply; err != nil {
					reply(r.Context(), conn, types.ServerMessage{Type: "error", Error: errorText(err)})
				}
				// Success reaches this client as the vote-update broadcast.

			default:
				reply(r.Context(), conn, types.ServerMessage{Type: "error", Error: "unknown type"})
			}
		}
	}
}

// errorText maps internal sentinel errors to the strings clients see.
func errorText(err error) string {
	switch {
	case errors.Is(err, poll.ErrPollClosed):
		return "Poll has ended"
	case errors.Is(err, poll.ErrAlreadyVoted):
		return "You have already voted"
	case errors.Is(err, poll.ErrInvalidOption):
		return "Invalid option"
	}
	return err.Error()
}

func lookup(h *hub.Hub, code string) *room.Room {
	gr := make(chan *room.Room, 1)
	h.Inbox() <- hub.GetRoom{Code: code, Reply: gr}
	return <-gr
}

func reply(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, _ := json.Marshal(msg)
	_ = conn.Write(ctx, websocket.MessageText, payload)
}
