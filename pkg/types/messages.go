package types

// Client -> Server
// create-room:
//   name: string
//
// join-room:
//   room_code: string
//   name: string
//
// submit-vote:
//   room_code: string
//   option_id: number

// Server -> Client
// room-created (reply to originator):
//   room_code: string
//   poll: Poll
//
// room-joined (reply to originator):
//   room_code: string
//   poll: Poll
//   time_remaining: number // seconds, floored at 0
//
// vote-update (room-wide broadcast):
//   poll: Poll
//
// poll-ended (room-wide broadcast, once per poll):
//   poll: Poll
//
// error (reply to originator only):
//   error: string // "Room not found" | "Poll has ended" | "You have already voted" | "Invalid option"
