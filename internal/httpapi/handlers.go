package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkelleher/live-poll-backend/internal/hub"
	"github.com/pkelleher/live-poll-backend/internal/poll"
	"github.com/pkelleher/live-poll-backend/internal/room"
)

// RoomStats is a read-only view for dashboards/debugging; the live
// protocol runs over the websocket.
func RoomStats(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, hub.ErrRoomNotFound.Error(), http.StatusNotFound)
			return
		}

		vreply := make(chan room.View, 1)
		rm.Inbox() <- room.GetState{Reply: vreply}
		view := <-vreply

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Code          string        `json:"code"`
			Participants  int           `json:"participants"`
			Poll          poll.Snapshot `json:"poll"`
			TimeRemaining int           `json:"time_remaining"`
		}{
			Code:          rm.Code(),
			Participants:  view.NumParticipants,
			Poll:          view.Poll,
			TimeRemaining: view.TimeRemaining,
		})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
