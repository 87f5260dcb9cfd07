package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pkelleher/live-poll-backend/internal/poll"
)

type Msg interface{ isRoomMsg() }

type Join struct {
	ConnID string
	Name   string
	Outbox chan Event // where this client receives broadcasts; the handler owns it, the room never closes it
	Reply  chan JoinInfo
}

func (Join) isRoomMsg() {}

type JoinInfo struct {
	Poll          poll.Snapshot
	TimeRemaining int
}

type Leave struct {
	ConnID string
	Reply  chan bool // true if the room is now empty
}

func (Leave) isRoomMsg() {}

type SubmitVote struct {
	ConnID   string
	OptionID int
	Reply    chan error
}

func (SubmitVote) isRoomMsg() {}

type CloseReason string

const (
	ReasonTimeout CloseReason = "timeout"
	ReasonManual  CloseReason = "manual"
)

type ClosePoll struct {
	Reason CloseReason
}

func (ClosePoll) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type View struct {
	NumParticipants int
	NumClients      int
	Poll            poll.Snapshot
	TimeRemaining   int
}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// Event is a room-wide broadcast fanned out to every connected client.
type Event struct {
	Type string // "vote-update" | "poll-ended"
	Poll poll.Snapshot
}

const (
	EventVoteUpdate = "vote-update"
	EventPollEnded  = "poll-ended"
)

type Room struct {
	code         string
	hostID       string
	inbox        chan Msg
	poll         *poll.Poll
	participants map[string]string // connID -> display name
	clients      map[string]chan Event
	expiry       *time.Timer
	ctx          context.Context
	cancel       context.CancelFunc
	log          *zap.Logger
}

// NewRoom starts the room's loop and arms the poll's expiry timer.
// All room state is owned by the loop goroutine; callers interact
// through Inbox only.
func NewRoom(parent context.Context, code, hostID string, p *poll.Poll, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		code:         code,
		hostID:       hostID,
		inbox:        make(chan Msg, 64),
		poll:         p,
		participants: make(map[string]string),
		clients:      make(map[string]chan Event),
		ctx:          ctx,
		cancel:       cancel,
		log:          log,
	}

	r.expiry = time.AfterFunc(p.TimeLimit, func() {
		// A fire after shutdown parks the message in the buffer of a
		// loop that already exited; nothing processes it.
		select {
		case r.inbox <- ClosePoll{Reason: ReasonTimeout}:
		case <-r.ctx.Done():
		}
	})

	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) Code() string { return r.code }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				// Re-join by the same connection just overwrites the name.
				r.participants[msg.ConnID] = msg.Name
				r.clients[msg.ConnID] = msg.Outbox
				msg.Reply <- JoinInfo{
					Poll:          r.poll.Snapshot(),
					TimeRemaining: r.poll.TimeRemaining(time.Now()),
				}
				r.log.Info("participant joined",
					zap.String("room", r.code), zap.String("name", msg.Name))

			case Leave:
				delete(r.participants, msg.ConnID)
				delete(r.clients, msg.ConnID)
				msg.Reply <- len(r.participants) == 0

			case SubmitVote:
				err := r.poll.Vote(msg.ConnID, msg.OptionID)
				msg.Reply <- err
				if err != nil {
					break
				}
				r.broadcast(Event{Type: EventVoteUpdate, Poll: r.poll.Snapshot()})
				r.log.Info("vote registered",
					zap.String("room", r.code), zap.Int("option", msg.OptionID))

			case ClosePoll:
				if !r.poll.Close() {
					break // already closed
				}
				r.expiry.Stop()
				r.broadcast(Event{Type: EventPollEnded, Poll: r.poll.Snapshot()})
				r.log.Info("poll ended",
					zap.String("room", r.code), zap.String("reason", string(msg.Reason)))

			case GetState:
				msg.Reply <- View{
					NumParticipants: len(r.participants),
					NumClients:      len(r.clients),
					Poll:            r.poll.Snapshot(),
					TimeRemaining:   r.poll.TimeRemaining(time.Now()),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	r.expiry.Stop()
	// Outbox channels belong to their connection handlers, which may
	// still be feeding them from other rooms; only drop the references.
	clear(r.clients)
	r.cancel()
}

func (r *Room) broadcast(ev Event) {
	for id, ch := range r.clients {
		select {
		case ch <- ev:
			// ok
		default:
			// Client is slow/full - drop them.
			delete(r.clients, id)
		}
	}
}
