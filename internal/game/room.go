package game

import (
	rand "math/rand/v2"
	"time"
)

// Status is the lifecycle state of a room. Transitions are waiting→playing
// (start) and playing→finished (one player left); never back to waiting.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// StartingDice is the hand size dealt to every player at game start.
const StartingDice = 5

// Bet is a claim that at least Count dice across all players show Face,
// counting wildcards.
type Bet struct {
	Count  int    `json:"count"`
	Face   int    `json:"face"`
	UserID string `json:"userId"`
}

// Beats reports whether b is a strictly higher bet than prev: same face with
// more dice, or a higher face with at least as many dice.
func (b Bet) Beats(prev Bet) bool {
	if b.Face == prev.Face {
		return b.Count > prev.Count
	}
	return b.Face > prev.Face && b.Count >= prev.Count
}

// Player is a seat in a room. Zero dice means eliminated; elimination is
// permanent and independent of connectivity.
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Dice        []int  `json:"dice"`
	IsMyTurn    bool   `json:"isMyTurn"`
	IsConnected bool   `json:"isConnected"`
	IsCPU       bool   `json:"isCpu"`
}

// Alive reports whether the player still holds dice.
func (p *Player) Alive() bool {
	return len(p.Dice) > 0
}

// PlayerDice is a frozen view of one player's hand inside a ChallengeResult.
type PlayerDice struct {
	Name string `json:"name"`
	Dice []int  `json:"dice"`
}

// ChallengeResult is the snapshot produced when a bet is challenged. AllDice
// is captured before the post-challenge reroll so clients can show the hands
// that decided the round.
type ChallengeResult struct {
	RaisedUserID   string                `json:"raisedUserId"`
	ChallengerID   string                `json:"challengedUserId"`
	ChallengerName string                `json:"challengedUserName"`
	Success        bool                  `json:"success"`
	ActualCount    int                   `json:"actualCount"`
	ExpectedCount  int                   `json:"expectedCount"`
	Face           int                   `json:"face"`
	AllDice        map[string]PlayerDice `json:"allUsersDice"`
}

// Room is the aggregate root. Seats holds user IDs in seating order; the order
// is shuffled once at game start and fixed afterward, even though seats may be
// removed while waiting.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Status    Status

	Seats []string
	Users map[string]*Player

	CurrentBet          *Bet
	LastChallengeResult *ChallengeResult

	rng *rand.Rand
}

// NewRoom creates an empty waiting room. The rng drives every roll and
// shuffle in this room and must not be shared with other rooms.
func NewRoom(id, name string, createdAt time.Time, rng *rand.Rand) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
		Status:    StatusWaiting,
		Users:     make(map[string]*Player),
		rng:       rng,
	}
}

// Player returns the seated player for the given user ID.
func (r *Room) Player(userID string) (*Player, bool) {
	p, ok := r.Users[userID]
	return p, ok
}

// SeatCount returns the number of seated players.
func (r *Room) SeatCount() int {
	return len(r.Seats)
}

// AlivePlayerIDs returns the IDs of players still holding dice, in seating
// order.
func (r *Room) AlivePlayerIDs() []string {
	var alive []string
	for _, id := range r.Seats {
		if p, ok := r.Users[id]; ok && p.Alive() {
			alive = append(alive, id)
		}
	}
	return alive
}

// AlivePlayers returns the players still holding dice, in seating order.
func (r *Room) AlivePlayers() []*Player {
	var alive []*Player
	for _, id := range r.Seats {
		if p, ok := r.Users[id]; ok && p.Alive() {
			alive = append(alive, p)
		}
	}
	return alive
}

// CurrentTurn returns the player whose turn it is, if any.
func (r *Room) CurrentTurn() (*Player, bool) {
	for _, id := range r.Seats {
		if p, ok := r.Users[id]; ok && p.IsMyTurn {
			return p, true
		}
	}
	return nil, false
}

// resetTurns clears every IsMyTurn flag.
func (r *Room) resetTurns() {
	for _, p := range r.Users {
		p.IsMyTurn = false
	}
}

// seat appends a player to the seating order.
func (r *Room) seat(p *Player) {
	r.Users[p.ID] = p
	r.Seats = append(r.Seats, p.ID)
}

// unseat removes a player and their seat. Only legal while waiting.
func (r *Room) unseat(userID string) {
	delete(r.Users, userID)
	for i, id := range r.Seats {
		if id == userID {
			r.Seats = append(r.Seats[:i], r.Seats[i+1:]...)
			break
		}
	}
}
