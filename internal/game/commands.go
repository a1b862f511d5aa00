package game

import "fmt"

// CPU seat names, in order of addition. Past the list the seat is "CPU n".
var cpuNames = []string{"CPU Alice", "CPU Bob", "CPU Charlie"}

// Join seats a new player while the room is waiting. Reconnection of an
// existing identity is handled by the caller; Join is only for identities the
// room has never seen.
func (r *Room) Join(userID, name string) error {
	if r.Status != StatusWaiting {
		return ErrGameInProgress
	}
	if _, ok := r.Users[userID]; ok {
		// Re-seat with a clean slate; the room is still waiting so no game
		// state is attached to the seat yet.
		r.unseat(userID)
	}
	r.seat(&Player{
		ID:          userID,
		Name:        name,
		IsConnected: true,
	})
	return nil
}

// AddCPUs seats count CPU players. Only legal while waiting, bounded by
// maxSeats. newSuffix supplies the random portion of each CPU's ID.
func (r *Room) AddCPUs(count, maxSeats int, newSuffix func() string) error {
	if r.Status != StatusWaiting {
		return ErrInvalidState
	}
	if len(r.Seats)+count > maxSeats {
		return ErrCapacityExceeded
	}

	existing := 0
	for _, p := range r.Users {
		if p.IsCPU {
			existing++
		}
	}

	for i := 0; i < count; i++ {
		index := existing + i
		name := fmt.Sprintf("CPU %d", index+1)
		if index < len(cpuNames) {
			name = cpuNames[index]
		}
		r.seat(&Player{
			ID:          name + "@cpu" + newSuffix(),
			Name:        name,
			IsConnected: true,
			IsCPU:       true,
		})
	}
	return nil
}

// Start shuffles the seating order, deals five dice to every player, clears
// any open bet or challenge result, and gives the first seat the turn.
func (r *Room) Start() error {
	if r.Status != StatusWaiting {
		return ErrInvalidState
	}
	if len(r.Seats) < 2 {
		return ErrNotEnoughPlayers
	}

	// Seat order is decided once here and never reordered afterward.
	r.Seats = ShuffleStrings(r.rng, r.Seats)

	r.Status = StatusPlaying
	r.CurrentBet = nil
	r.LastChallengeResult = nil

	for i, id := range r.Seats {
		p := r.Users[id]
		p.Dice = RollDice(r.rng, StartingDice)
		p.IsMyTurn = i == 0
	}
	return nil
}

// PlaceBet records a strictly-higher bet for the turn-holding player and
// advances the turn.
func (r *Room) PlaceBet(userID string, count, face int) error {
	_, err := r.turnHolder(userID)
	if err != nil {
		return err
	}

	bet := Bet{Count: count, Face: face, UserID: userID}
	if r.CurrentBet != nil && !bet.Beats(*r.CurrentBet) {
		return ErrInvalidBet
	}

	r.CurrentBet = &bet
	r.LastChallengeResult = nil
	AdvanceTurn(r)
	return nil
}

// Challenge resolves the current bet against all hands, takes a die from the
// loser, rerolls every surviving hand and gives the loser the next turn (or
// advances past their seat when the loss eliminated them).
func (r *Room) Challenge(userID string) (*ChallengeResult, error) {
	challenger, err := r.turnHolder(userID)
	if err != nil {
		return nil, err
	}
	if r.CurrentBet == nil {
		return nil, ErrNoBetToChallenge
	}

	currentBet := *r.CurrentBet

	// Resolve before any reroll; the result freezes the deciding hands.
	result := ResolveChallenge(r, challenger)
	r.LastChallengeResult = &result

	loserID := userID
	if result.Success {
		loserID = currentBet.UserID
	}
	loser, ok := r.Users[loserID]
	if !ok {
		// The bet always names a seated player, so this is a defect, not a
		// user error. Callers abort the room's processing loudly.
		return nil, fmt.Errorf("challenge loser %q not seated in room %s", loserID, r.ID)
	}
	if loser.Alive() {
		loser.Dice = loser.Dice[:len(loser.Dice)-1]
	}

	// New round: clear the bet and reroll every surviving hand.
	r.CurrentBet = nil
	for _, p := range r.Users {
		if p.Alive() {
			p.Dice = RollDice(r.rng, len(p.Dice))
		}
	}

	if loser.Alive() {
		r.resetTurns()
		loser.IsMyTurn = true
		// Finishing is still possible when the loser is the only survivor.
		if len(r.AlivePlayerIDs()) <= 1 {
			r.Status = StatusFinished
			r.resetTurns()
		}
	} else {
		// Loser eliminated: next round starts from the seat after theirs.
		r.resetTurns()
		loser.IsMyTurn = true
		AdvanceTurn(r)
	}
	return &result, nil
}

// Disconnect removes the seat while waiting, or flags the player unreachable
// while the game is running. Elimination and turn state are untouched.
func (r *Room) Disconnect(userID string) error {
	p, ok := r.Users[userID]
	if !ok {
		return ErrPlayerNotFound
	}
	if r.Status == StatusWaiting {
		r.unseat(userID)
		return nil
	}
	p.IsConnected = false
	return nil
}

// Reconnect marks a seated player reachable again.
func (r *Room) Reconnect(userID string) error {
	p, ok := r.Users[userID]
	if !ok {
		return ErrPlayerNotFound
	}
	p.IsConnected = true
	return nil
}

// turnHolder validates the common bet/challenge guards: room playing, player
// seated, alive, and holding the turn.
func (r *Room) turnHolder(userID string) (*Player, error) {
	if r.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	p, ok := r.Users[userID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if !p.Alive() {
		return nil, ErrPlayerEliminated
	}
	if !p.IsMyTurn {
		return nil, ErrNotYourTurn
	}
	return p, nil
}
