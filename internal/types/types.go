package types

import "github.com/pkelleher/live-poll-backend/internal/poll"

type ClientMessage struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	RoomCode string `json:"room_code,omitempty"`
	OptionID int    `json:"option_id,omitempty"`
}

type ServerMessage struct {
	Type          string         `json:"type"` // "room-created" | "room-joined" | "vote-update" | "poll-ended" | "error"
	RoomCode      string         `json:"room_code,omitempty"`
	Poll          *poll.Snapshot `json:"poll,omitempty"`
	TimeRemaining int            `json:"time_remaining,omitempty"`
	Error         string         `json:"error,omitempty"`
}
