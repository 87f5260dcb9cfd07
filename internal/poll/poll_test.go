package poll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestPoll() *Poll {
	return New("Which do you prefer?", []string{"Cats", "Dogs"}, 60*time.Second, time.Now())
}

func TestVote_Rules(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(p *Poll)
		connID  string
		option  int
		wantErr error
	}{
		{
			name:   "legal first vote",
			setup:  func(p *Poll) {},
			connID: "c1", option: 1,
			wantErr: nil,
		},
		{
			name:   "closed poll rejects vote",
			setup:  func(p *Poll) { p.Close() },
			connID: "c1", option: 1,
			wantErr: ErrPollClosed,
		},
		{
			name:   "second vote by same connection",
			setup:  func(p *Poll) { require.NoError(t, p.Vote("c1", 1)) },
			connID: "c1", option: 2,
			wantErr: ErrAlreadyVoted,
		},
		{
			name:   "unknown option id",
			setup:  func(p *Poll) {},
			connID: "c1", option: 99,
			wantErr: ErrInvalidOption,
		},
		{
			name:   "closed wins over duplicate and invalid",
			setup:  func(p *Poll) { require.NoError(t, p.Vote("c1", 1)); p.Close() },
			connID: "c1", option: 99,
			wantErr: ErrPollClosed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPoll()
			tc.setup(p)
			err := p.Vote(tc.connID, tc.option)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestVote_FailedVoteDoesNotMutate(t *testing.T) {
	p := newTestPoll()
	require.NoError(t, p.Vote("c1", 1))

	require.ErrorIs(t, p.Vote("c1", 2), ErrAlreadyVoted)
	require.ErrorIs(t, p.Vote("c2", 99), ErrInvalidOption)

	require.Equal(t, 1, p.Options[0].Votes)
	require.Equal(t, 0, p.Options[1].Votes)
	require.Equal(t, 1, p.BallotCount())
}

func TestVote_CountsMatchBallots(t *testing.T) {
	p := newTestPoll()

	voters := []struct {
		connID string
		option int
	}{
		{"c1", 1}, {"c2", 2}, {"c3", 1}, {"c4", 1}, {"c5", 2},
	}
	for _, v := range voters {
		require.NoError(t, p.Vote(v.connID, v.option))

		total := 0
		for _, opt := range p.Options {
			total += opt.Votes
		}
		require.Equal(t, p.BallotCount(), total)
	}

	require.Equal(t, 3, p.Options[0].Votes)
	require.Equal(t, 2, p.Options[1].Votes)
}

func TestClose_Idempotent(t *testing.T) {
	p := newTestPoll()
	require.True(t, p.Close())
	require.False(t, p.Close())
	require.False(t, p.Active)
}

func TestTimeRemaining(t *testing.T) {
	start := time.Now()
	p := New("q", []string{"a", "b"}, 60*time.Second, start)

	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 60},
		{10 * time.Second, 50},
		{59 * time.Second, 1},
		{60 * time.Second, 0},
		{75 * time.Second, 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, p.TimeRemaining(start.Add(tc.elapsed)), "elapsed %v", tc.elapsed)
	}
}

func TestTimeRemaining_NonIncreasing(t *testing.T) {
	start := time.Now()
	p := New("q", []string{"a"}, 30*time.Second, start)

	prev := p.TimeRemaining(start)
	for elapsed := time.Second; elapsed <= 40*time.Second; elapsed += time.Second {
		cur := p.TimeRemaining(start.Add(elapsed))
		require.LessOrEqual(t, cur, prev)
		require.GreaterOrEqual(t, cur, 0)
		prev = cur
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	p := newTestPoll()
	snap := p.Snapshot()
	snap.Options[0].Votes = 42

	require.Equal(t, 0, p.Options[0].Votes)
	require.True(t, snap.Active)
	require.Equal(t, 60, snap.TimeLimit)
}
