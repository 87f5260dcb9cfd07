package poll

import (
	"errors"
	"time"
)

var ErrPollClosed = errors.New("poll has ended")
var ErrAlreadyVoted = errors.New("you have already voted")
var ErrInvalidOption = errors.New("invalid option")

type Option struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Snapshot is a copy of the poll safe to hand to other goroutines
// and to JSON-encode for clients.
type Snapshot struct {
	Question  string   `json:"question"`
	Options   []Option `json:"options"`
	TimeLimit int      `json:"time_limit"` // seconds
	Active    bool     `json:"active"`
}

type Poll struct {
	Question  string
	Options   []Option
	TimeLimit time.Duration
	StartedAt time.Time
	Active    bool
	ballots   map[string]int // connID -> chosen option ID
}

func New(question string, options []string, limit time.Duration, startedAt time.Time) *Poll {
	opts := make([]Option, len(options))
	for i, text := range options {
		opts[i] = Option{ID: i + 1, Text: text}
	}
	return &Poll{
		Question:  question,
		Options:   opts,
		TimeLimit: limit,
		StartedAt: startedAt,
		Active:    true,
		ballots:   map[string]int{},
	}
}

// Vote records connID's ballot for optionID and bumps the matching count.
// Guards are checked in order: closed, duplicate voter, unknown option.
// The first failing guard returns its error with nothing mutated.
func (p *Poll) Vote(connID string, optionID int) error {
	if !p.Active {
		return ErrPollClosed
	}
	if _, voted := p.ballots[connID]; voted {
		return ErrAlreadyVoted
	}
	idx := -1
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrInvalidOption
	}

	p.Options[idx].Votes++
	p.ballots[connID] = optionID
	return nil
}

// Close marks the poll inactive. It reports whether this call did the
// transition; closing an already-closed poll is a no-op.
func (p *Poll) Close() bool {
	if !p.Active {
		return false
	}
	p.Active = false
	return true
}

// TimeRemaining is max(0, limit - elapsed) in whole seconds.
func (p *Poll) TimeRemaining(now time.Time) int {
	elapsed := int(now.Sub(p.StartedAt).Seconds())
	limit := int(p.TimeLimit.Seconds())
	if remaining := limit - elapsed; remaining > 0 {
		return remaining
	}
	return 0
}

func (p *Poll) Snapshot() Snapshot {
	opts := make([]Option, len(p.Options))
	copy(opts, p.Options)
	return Snapshot{
		Question:  p.Question,
		Options:   opts,
		TimeLimit: int(p.TimeLimit.Seconds()),
		Active:    p.Active,
	}
}

// BallotCount is the number of connections that have successfully voted.
func (p *Poll) BallotCount() int { return len(p.ballots) }
