package game

import rand "math/rand/v2"

const (
	// DiceFaces is the number of faces on a die.
	DiceFaces = 6

	// Wildcard is the face that counts toward any bet face when tallying.
	Wildcard = 1
)

// RollDice returns n fresh dice with faces in [1,6].
func RollDice(rng *rand.Rand, n int) []int {
	dice := make([]int, n)
	for i := range dice {
		dice[i] = rng.IntN(DiceFaces) + 1
	}
	return dice
}

// CountMatching returns the number of dice showing face, counting wildcards.
func CountMatching(dice []int, face int) int {
	count := 0
	for _, die := range dice {
		if die == face || die == Wildcard {
			count++
		}
	}
	return count
}

// ShuffleStrings returns a shuffled copy of ids, leaving the input untouched.
func ShuffleStrings(rng *rand.Rand, ids []string) []string {
	shuffled := make([]string, len(ids))
	copy(shuffled, ids)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
