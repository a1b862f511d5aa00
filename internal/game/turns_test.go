package game

import "testing"

func TestAdvanceTurnRotatesInSeatOrder(t *testing.T) {
	r := testRoom(t, 1)
	players := seatPlayers(r, []int{2}, []int{3}, []int{4})
	r.Status = StatusPlaying
	players[0].IsMyTurn = true

	AdvanceTurn(r)

	if players[0].IsMyTurn || !players[1].IsMyTurn || players[2].IsMyTurn {
		t.Errorf("expected p2's turn, got p1=%v p2=%v p3=%v",
			players[0].IsMyTurn, players[1].IsMyTurn, players[2].IsMyTurn)
	}
}

func TestAdvanceTurnWrapsAround(t *testing.T) {
	r := testRoom(t, 1)
	players := seatPlayers(r, []int{2}, []int{3}, []int{4})
	r.Status = StatusPlaying
	players[2].IsMyTurn = true

	AdvanceTurn(r)

	if !players[0].IsMyTurn {
		t.Error("expected turn to wrap to the first seat")
	}
}

func TestAdvanceTurnSkipsEliminatedPlayers(t *testing.T) {
	r := testRoom(t, 1)
	players := seatPlayers(r, []int{2}, []int{}, []int{4})
	r.Status = StatusPlaying
	players[0].IsMyTurn = true

	AdvanceTurn(r)

	if players[1].IsMyTurn {
		t.Error("eliminated player must never regain the turn")
	}
	if !players[2].IsMyTurn {
		t.Error("expected turn to skip to the next living player")
	}
}

func TestAdvanceTurnWithNoCurrentHolderStartsAtFirstSeat(t *testing.T) {
	r := testRoom(t, 1)
	players := seatPlayers(r, []int{2}, []int{3})
	r.Status = StatusPlaying

	AdvanceTurn(r)

	if !players[0].IsMyTurn {
		t.Error("expected the round to start at the first seat")
	}
}

func TestAdvanceTurnFinishesGameAtOneSurvivor(t *testing.T) {
	r := testRoom(t, 1)
	players := seatPlayers(r, []int{2}, []int{})
	r.Status = StatusPlaying
	players[0].IsMyTurn = true

	AdvanceTurn(r)

	if r.Status != StatusFinished {
		t.Errorf("expected finished, got %s", r.Status)
	}
	if players[0].IsMyTurn || players[1].IsMyTurn {
		t.Error("finished rooms must have no turn-holder")
	}
}

func TestAdvanceTurnIdempotentOnFinishedRoom(t *testing.T) {
	r := testRoom(t, 1)
	players := seatPlayers(r, []int{2}, []int{3})
	r.Status = StatusFinished

	AdvanceTurn(r)

	if r.Status != StatusFinished {
		t.Errorf("expected finished, got %s", r.Status)
	}
	if players[0].IsMyTurn || players[1].IsMyTurn {
		t.Error("advancing a finished room must not assign a turn")
	}
}

func TestGameNeverRevertsFromFinished(t *testing.T) {
	r := testRoom(t, 1)
	seatPlayers(r, []int{2}, []int{})
	r.Status = StatusPlaying

	AdvanceTurn(r)
	AdvanceTurn(r)
	AdvanceTurn(r)

	if r.Status != StatusFinished {
		t.Errorf("expected finished, got %s", r.Status)
	}
}
