package game

import rand "math/rand/v2"

// Difficulty controls how aggressively a CPU player bids and how readily it
// challenges.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty maps a config string onto a Difficulty, defaulting to
// Medium for anything unrecognised.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case Easy, Medium, Hard:
		return Difficulty(s)
	default:
		return Medium
	}
}

// CPUAction is what a CPU player decided to do on its turn.
type CPUAction string

const (
	ActionBet       CPUAction = "bet"
	ActionChallenge CPUAction = "challenge"
)

// CPUDecision is the outcome of DecideCPUAction. Bet is set when Action is
// ActionBet.
type CPUDecision struct {
	Action CPUAction
	Bet    Bet
}

// challengeThreshold is the believability floor per difficulty: estimates
// below it trigger a challenge.
func challengeThreshold(d Difficulty) float64 {
	switch d {
	case Easy:
		return 0.2
	case Hard:
		return 0.6
	default:
		return 0.4
	}
}

// DecideCPU runs the decision engine with the room's own generator.
func (r *Room) DecideCPU(cpu *Player, difficulty Difficulty) CPUDecision {
	return DecideCPUAction(r.rng, r, cpu, difficulty)
}

// DecideCPUAction decides bet-or-challenge for a CPU player. Pure computation:
// the caller applies the decision through the normal room commands.
//
// If the room state is not actually this player's valid turn the engine
// degenerates to a minimal safe bet rather than failing; the stale decision is
// rejected by the command guards anyway.
func DecideCPUAction(rng *rand.Rand, r *Room, cpu *Player, difficulty Difficulty) CPUDecision {
	if r.Status != StatusPlaying || !cpu.IsMyTurn || !cpu.Alive() {
		return CPUDecision{Action: ActionBet, Bet: Bet{Count: 1, Face: 2}}
	}

	// An empty round cannot be challenged, so the opening bet is mandatory.
	if r.CurrentBet == nil {
		return CPUDecision{Action: ActionBet, Bet: generateBet(rng, nil, cpu.Dice, difficulty)}
	}

	probability := betProbability(*r.CurrentBet, cpu.Dice, r.AlivePlayers())

	// Symmetric jitter so the CPU is not perfectly predictable.
	adjusted := probability + (rng.Float64()-0.5)*0.2

	if adjusted < challengeThreshold(difficulty) {
		return CPUDecision{Action: ActionChallenge}
	}
	return CPUDecision{Action: ActionBet, Bet: generateBet(rng, r.CurrentBet, cpu.Dice, difficulty)}
}

// betProbability estimates how believable the current bet is. The CPU's own
// wildcard matches reduce the count still needed; each unknown die matches
// with probability ~1/3 (target face or wildcard). Enough expected matches
// among the unknowns classifies the bet likely-true (0.7), else likely-false
// (0.3).
func betProbability(bet Bet, ownDice []int, alive []*Player) float64 {
	ownCount := CountMatching(ownDice, bet.Face)
	remainingNeeded := bet.Count - ownCount
	if remainingNeeded < 0 {
		remainingNeeded = 0
	}

	totalDice := 0
	for _, p := range alive {
		totalDice += len(p.Dice)
	}
	avgDicePerPlayer := float64(totalDice) / float64(len(alive))
	otherTotalDice := float64(len(alive)-1) * avgDicePerPlayer

	expectedOtherCount := otherTotalDice / 3

	if expectedOtherCount >= float64(remainingNeeded) {
		return 0.7
	}
	return 0.3
}

// generateBet produces the CPU's next bet: the opening bet from its own
// strongest face plus a difficulty margin, otherwise a strictly-higher raise
// chosen from the enumerated candidates.
func generateBet(rng *rand.Rand, current *Bet, ownDice []int, difficulty Difficulty) Bet {
	// Strongest face in hand, wildcards included. Face 1 is never bid
	// directly since it already counts everywhere.
	bestFace := 2
	bestCount := 0
	for face := 2; face <= DiceFaces; face++ {
		if count := CountMatching(ownDice, face); count > bestCount {
			bestCount = count
			bestFace = face
		}
	}

	if current == nil {
		count := bestCount
		switch difficulty {
		case Easy:
			count = max(1, bestCount)
		case Medium:
			count = max(1, bestCount+1)
		case Hard:
			count = max(2, bestCount+2)
		}
		return Bet{Count: count, Face: bestFace}
	}

	// Candidates: same face with 1-3 more dice, then each higher face at the
	// same count up to count+2.
	var options []Bet
	for count := current.Count + 1; count <= current.Count+3; count++ {
		options = append(options, Bet{Count: count, Face: current.Face})
	}
	for face := current.Face + 1; face <= DiceFaces; face++ {
		for count := current.Count; count <= current.Count+2; count++ {
			options = append(options, Bet{Count: count, Face: face})
		}
	}

	if len(options) == 0 {
		// Known boundary kept from the original rules: with no candidates
		// left, re-issue the same face one higher even though that can break
		// the ordering rule.
		return Bet{Count: current.Count + 1, Face: current.Face}
	}

	switch difficulty {
	case Easy:
		return options[0]
	case Hard:
		return options[rng.IntN(min(3, len(options)))]
	default:
		return options[len(options)/2]
	}
}
