package game

// ResolveChallenge computes whether the current bet was a lie, tallying every
// living player's dice with 1s as wildcards. The result freezes each living
// player's hand as it was at challenge time; callers reroll immediately after,
// so the snapshot must be taken here.
//
// Pure function: preconditions (playing, bet present, challenger alive and
// holding the turn) are enforced by the caller.
func ResolveChallenge(r *Room, challenger *Player) ChallengeResult {
	if r.CurrentBet == nil {
		return ChallengeResult{AllDice: map[string]PlayerDice{}}
	}

	bet := *r.CurrentBet
	actualCount := 0
	allDice := make(map[string]PlayerDice)

	for _, id := range r.Seats {
		p, ok := r.Users[id]
		if !ok || !p.Alive() {
			continue
		}
		frozen := make([]int, len(p.Dice))
		copy(frozen, p.Dice)
		allDice[id] = PlayerDice{Name: p.Name, Dice: frozen}

		actualCount += CountMatching(p.Dice, bet.Face)
	}

	return ChallengeResult{
		RaisedUserID:   bet.UserID,
		ChallengerID:   challenger.ID,
		ChallengerName: challenger.Name,
		Success:        actualCount < bet.Count,
		ActualCount:    actualCount,
		ExpectedCount:  bet.Count,
		Face:           bet.Face,
		AllDice:        allDice,
	}
}
