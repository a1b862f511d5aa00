package server

import (
	"time"

	"github.com/lox/liarsdice/internal/game"
)

// PlayerSnapshot is the public view of one seat. Transport handles never
// appear here.
type PlayerSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Dice        []int  `json:"dice"`
	IsMyTurn    bool   `json:"isMyTurn"`
	IsConnected bool   `json:"isConnected"`
	IsCPU       bool   `json:"isCpu"`
}

// RoomSnapshot is the full authoritative room state pushed to every connected
// client after each mutation. Users is keyed by user ID.
type RoomSnapshot struct {
	ID                  string                    `json:"id"`
	Name                string                    `json:"name"`
	CreatedAt           time.Time                 `json:"createdAt"`
	Status              game.Status               `json:"status"`
	CurrentBet          *game.Bet                 `json:"currentBet"`
	LastChallengeResult *game.ChallengeResult     `json:"lastChallengeResult"`
	Users               map[string]PlayerSnapshot `json:"users"`
}

// SnapshotRoom converts a room into its wire form. Dice slices are copied so
// later rerolls cannot race a marshal in flight.
func SnapshotRoom(r *game.Room) *RoomSnapshot {
	users := make(map[string]PlayerSnapshot, len(r.Users))
	for id, p := range r.Users {
		dice := make([]int, len(p.Dice))
		copy(dice, p.Dice)
		users[id] = PlayerSnapshot{
			ID:          p.ID,
			Name:        p.Name,
			Dice:        dice,
			IsMyTurn:    p.IsMyTurn,
			IsConnected: p.IsConnected,
			IsCPU:       p.IsCPU,
		}
	}

	return &RoomSnapshot{
		ID:                  r.ID,
		Name:                r.Name,
		CreatedAt:           r.CreatedAt,
		Status:              r.Status,
		CurrentBet:          r.CurrentBet,
		LastChallengeResult: r.LastChallengeResult,
		Users:               users,
	}
}

// SummarizeRoom converts a room into its lobby listing form.
func SummarizeRoom(r *game.Room) RoomSummary {
	return RoomSummary{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		Status:    string(r.Status),
		UserCount: r.SeatCount(),
	}
}
