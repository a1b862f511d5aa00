package game

import (
	"testing"

	"github.com/lox/liarsdice/internal/randutil"
)

func TestRollDice(t *testing.T) {
	rng := randutil.New(42)

	dice := RollDice(rng, 100)
	if len(dice) != 100 {
		t.Fatalf("expected 100 dice, got %d", len(dice))
	}

	for i, die := range dice {
		if die < 1 || die > 6 {
			t.Errorf("die %d out of range: %d", i, die)
		}
	}
}

func TestShuffleStringsPreservesElements(t *testing.T) {
	rng := randutil.New(7)
	ids := []string{"a", "b", "c", "d", "e"}

	shuffled := ShuffleStrings(rng, ids)
	if len(shuffled) != len(ids) {
		t.Fatalf("expected %d ids, got %d", len(ids), len(shuffled))
	}

	seen := make(map[string]bool)
	for _, id := range shuffled {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Errorf("id %s missing after shuffle", id)
		}
	}

	// Input order untouched
	if ids[0] != "a" || ids[4] != "e" {
		t.Error("ShuffleStrings mutated its input")
	}
}
