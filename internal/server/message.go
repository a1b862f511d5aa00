package server

import (
	"encoding/json"
	"time"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	var dataBytes json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		dataBytes = b
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type JoinRoomData struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
	// UserID is set when reconnecting as an existing identity; empty for a
	// first join.
	UserID string `json:"userId,omitempty"`
}

type AddCPUData struct {
	RoomID string `json:"roomId"`
	Count  int    `json:"count,omitempty"` // Number of CPUs to add, default 1
}

type StartGameData struct {
	RoomID string `json:"roomId"`
}

type PlaceBetData struct {
	RoomID string `json:"roomId"`
	Count  int    `json:"count"`
	Face   int    `json:"face"`
}

type ChallengeData struct {
	RoomID string `json:"roomId"`
}

type LeaveRoomData struct {
	RoomID string `json:"roomId"`
}

// Server → Client Messages

type RoomSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status"`
	UserCount int       `json:"userCount"`
}

type RoomCreatedData struct {
	Room RoomSummary `json:"room"`
}

type RoomListData struct {
	Rooms []RoomSummary `json:"rooms"`
}

type RoomJoinedData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type CloseData struct {
	Reason string `json:"reason"`
}

type NotFoundData struct {
	RoomID string `json:"roomId"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
