package game

// Rejection is a typed command rejection. Commands that fail a guard return a
// rejection and leave the room unmutated; the transport maps the code onto its
// error message.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

var (
	ErrRoomNotFound     = &Rejection{Code: "room_not_found", Message: "room not found"}
	ErrNotPlaying       = &Rejection{Code: "not_playing", Message: "game is not in playing state"}
	ErrPlayerNotFound   = &Rejection{Code: "player_not_found", Message: "player not found"}
	ErrPlayerEliminated = &Rejection{Code: "player_eliminated", Message: "player has no dice left"}
	ErrNotYourTurn      = &Rejection{Code: "not_your_turn", Message: "not your turn"}
	ErrInvalidBet       = &Rejection{Code: "invalid_bet", Message: "bet must raise the current bet"}
	ErrNoBetToChallenge = &Rejection{Code: "no_bet_to_challenge", Message: "no bet to challenge"}
	ErrNotEnoughPlayers = &Rejection{Code: "not_enough_players", Message: "at least 2 players are required to start"}
	ErrGameInProgress   = &Rejection{Code: "game_in_progress", Message: "cannot join a game in progress"}
	ErrCapacityExceeded = &Rejection{Code: "capacity_exceeded", Message: "room is full"}
	ErrInvalidState     = &Rejection{Code: "invalid_state", Message: "command not valid in current room state"}
)
