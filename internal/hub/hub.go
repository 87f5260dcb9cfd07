package hub

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"go.uber.org/zap"

	"github.com/pkelleher/live-poll-backend/internal/poll"
	"github.com/pkelleher/live-poll-backend/internal/room"
)

var ErrRoomNotFound = errors.New("room not found")

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	ConnID string
	Name   string
	Outbox chan room.Event
	Reply  chan Created
}

type Created struct {
	Code string
	Room *room.Room
	Poll poll.Snapshot
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

// Disconnect sweeps connID out of every room; rooms left empty are
// shut down and removed so their codes become reusable.
type Disconnect struct {
	ConnID string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (Disconnect) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox   chan HubMsg
	rooms   map[string]*room.Room
	newPoll func() *poll.Poll
	codeLen int
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
}

func NewHub(parent context.Context, codeLen int, newPoll func() *poll.Poll, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		rooms:   make(map[string]*room.Room),
		newPoll: newPoll,
		codeLen: codeLen,
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				code := h.uniqueCode()
				rm := room.NewRoom(h.ctx, code, msg.ConnID, h.newPoll(), h.log)
				h.rooms[code] = rm

				// Register the creator as the first participant. The
				// room loop is already draining its inbox, so waiting
				// on the reply here cannot deadlock.
				jreply := make(chan room.JoinInfo, 1)
				rm.Inbox() <- room.Join{ConnID: msg.ConnID, Name: msg.Name, Outbox: msg.Outbox, Reply: jreply}
				info := <-jreply

				msg.Reply <- Created{Code: code, Room: rm, Poll: info.Poll}
				h.log.Info("room created",
					zap.String("room", code), zap.String("host", msg.Name))

			case GetRoom:
				msg.Reply <- h.rooms[canonical(msg.Code)] // May be nil

			case Disconnect:
				for code, rm := range h.rooms {
					reply := make(chan bool, 1)
					rm.Inbox() <- room.Leave{ConnID: msg.ConnID, Reply: reply}
					if empty := <-reply; empty {
						rm.Inbox() <- room.Shutdown{}
						delete(h.rooms, code)
						h.log.Info("room deleted (empty)", zap.String("room", code))
					}
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, rm := range h.rooms {
		rm.Inbox() <- room.Shutdown{}
	}
	clear(h.rooms)
	h.cancel()
}

// uniqueCode keeps generating until it finds a code no live room holds.
// Codes freed by room deletion may be handed out again.
func (h *Hub) uniqueCode() string {
	for {
		code, err := generateCode(h.codeLen)
		if err != nil {
			continue // crypto/rand failure is transient
		}
		if _, taken := h.rooms[code]; !taken {
			return code
		}
		h.log.Debug("collision on code, regenerating", zap.String("room", code))
	}
}

func generateCode(length int) (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, length)
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// Room codes are case-insensitive at the boundary.
func canonical(code string) string { return strings.ToUpper(code) }
