package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsdice/internal/randutil"
)

func testRoom(t *testing.T, seed int64) *Room {
	t.Helper()
	return NewRoom("room-1", "Amber Fox", time.Unix(1700000000, 0), randutil.New(seed))
}

// seatPlayers seats the given hands directly, bypassing Start so tests control
// the dice exactly.
func seatPlayers(r *Room, hands ...[]int) []*Player {
	players := make([]*Player, len(hands))
	for i, hand := range hands {
		p := &Player{
			ID:          []string{"p1", "p2", "p3", "p4"}[i],
			Name:        []string{"Alice", "Bob", "Carol", "Dave"}[i],
			Dice:        hand,
			IsConnected: true,
		}
		r.seat(p)
		players[i] = p
	}
	return players
}

func TestResolveChallengeWildcardTally(t *testing.T) {
	r := testRoom(t, 1)
	players := seatPlayers(r, []int{1, 2, 2, 5, 6}, []int{3, 4, 1, 2, 2})
	r.Status = StatusPlaying
	r.CurrentBet = &Bet{Count: 4, Face: 2, UserID: "p1"}
	players[1].IsMyTurn = true

	result := ResolveChallenge(r, players[1])

	// Each hand holds three 2-or-wildcard dice, six total, so the bid of four
	// was true and the challenge fails.
	assert.Equal(t, 6, result.ActualCount)
	assert.Equal(t, 4, result.ExpectedCount)
	assert.Equal(t, 2, result.Face)
	assert.False(t, result.Success)
	assert.Equal(t, "p1", result.RaisedUserID)
	assert.Equal(t, "p2", result.ChallengerID)
	assert.Equal(t, "Bob", result.ChallengerName)
}

func TestResolveChallengeDetectsLie(t *testing.T) {
	r := testRoom(t, 1)
	players := seatPlayers(r, []int{2, 3, 4, 5, 6}, []int{3, 3, 4, 5, 6})
	r.Status = StatusPlaying
	r.CurrentBet = &Bet{Count: 4, Face: 2, UserID: "p1"}
	players[1].IsMyTurn = true

	result := ResolveChallenge(r, players[1])

	assert.Equal(t, 1, result.ActualCount)
	assert.True(t, result.Success)
}

func TestResolveChallengeSnapshotsDice(t *testing.T) {
	r := testRoom(t, 1)
	players := seatPlayers(r, []int{1, 2, 3, 4, 5}, []int{2, 2, 2, 2, 2})
	r.Status = StatusPlaying
	r.CurrentBet = &Bet{Count: 2, Face: 2, UserID: "p1"}
	players[1].IsMyTurn = true

	result := ResolveChallenge(r, players[1])

	require.Len(t, result.AllDice, 2)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, result.AllDice["p1"].Dice)
	assert.Equal(t, "Alice", result.AllDice["p1"].Name)

	// The snapshot must be a copy, not an alias of the live hand.
	players[0].Dice[0] = 6
	assert.Equal(t, 1, result.AllDice["p1"].Dice[0])
}

func TestResolveChallengeSkipsEliminatedPlayers(t *testing.T) {
	r := testRoom(t, 1)
	players := seatPlayers(r, []int{2, 2}, []int{}, []int{2})
	r.Status = StatusPlaying
	r.CurrentBet = &Bet{Count: 1, Face: 2, UserID: "p1"}
	players[2].IsMyTurn = true

	result := ResolveChallenge(r, players[2])

	assert.Equal(t, 3, result.ActualCount)
	assert.NotContains(t, result.AllDice, "p2")
}
