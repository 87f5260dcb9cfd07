package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pkelleher/live-poll-backend/internal/hub"
	"github.com/pkelleher/live-poll-backend/internal/poll"
	"github.com/pkelleher/live-poll-backend/internal/room"
)

func newTestServer(t *testing.T) (*hub.Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	newPoll := func() *poll.Poll {
		return poll.New("Which do you prefer?", []string{"Cats", "Dogs"}, 60*time.Second, time.Now())
	}
	h := hub.NewHub(ctx, 6, newPoll, zap.NewNop())
	srv := httptest.NewServer(SetupRoutes(h, zap.NewNop()))
	t.Cleanup(srv.Close)
	return h, srv
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
}

func TestRoomStats_NotFound(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/rooms/NOPE99")
	if err != nil {
		t.Fatalf("rooms: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}

func TestRoomStats_ReturnsView(t *testing.T) {
	h, srv := newTestServer(t)

	out := make(chan room.Event, 4)
	reply := make(chan hub.Created, 1)
	h.Inbox() <- hub.CreateRoom{ConnID: "c1", Name: "alice", Outbox: out, Reply: reply}
	created := <-reply

	resp, err := http.Get(srv.URL + "/rooms/" + created.Code)
	if err != nil {
		t.Fatalf("rooms: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}

	var body struct {
		Code          string        `json:"code"`
		Participants  int           `json:"participants"`
		Poll          poll.Snapshot `json:"poll"`
		TimeRemaining int           `json:"time_remaining"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != created.Code {
		t.Fatalf("want code %q, got %q", created.Code, body.Code)
	}
	if body.Participants != 1 {
		t.Fatalf("want 1 participant, got %d", body.Participants)
	}
	if !body.Poll.Active {
		t.Fatalf("expected active poll")
	}
	if body.TimeRemaining <= 0 || body.TimeRemaining > 60 {
		t.Fatalf("remaining time out of range: %d", body.TimeRemaining)
	}
}
