package game

// AdvanceTurn moves the turn to the next living player in seating order, or
// finishes the game when one or zero players remain. It is a no-op on rooms
// that are already finished.
func AdvanceTurn(r *Room) {
	if r.Status == StatusFinished {
		return
	}

	alive := r.AlivePlayerIDs()
	if len(alive) <= 1 {
		r.Status = StatusFinished
		r.resetTurns()
		return
	}

	// Locate the current turn-holder's seat; -1 means start of round.
	currentIndex := -1
	for i, id := range r.Seats {
		if p, ok := r.Users[id]; ok && p.IsMyTurn {
			currentIndex = i
			break
		}
	}

	r.resetTurns()

	// Scan forward circularly for the next living player. The ≤1-alive check
	// above guarantees termination, but the scan is bounded one lap anyway.
	next := (currentIndex + 1) % len(r.Seats)
	for attempts := 0; attempts < len(r.Seats); attempts++ {
		if p, ok := r.Users[r.Seats[next]]; ok && p.Alive() {
			p.IsMyTurn = true
			return
		}
		next = (next + 1) % len(r.Seats)
	}
}
