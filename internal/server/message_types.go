package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeCreateRoom MessageType = "create_room"
	MessageTypeListRooms  MessageType = "list_rooms"
	MessageTypeJoinRoom   MessageType = "join_room"
	MessageTypeAddCPU     MessageType = "add_cpu"
	MessageTypeStartGame  MessageType = "start_game"
	MessageTypePlaceBet   MessageType = "place_bet"
	MessageTypeChallenge  MessageType = "challenge"
	MessageTypeLeaveRoom  MessageType = "leave_room"

	// Server to client messages
	MessageTypeRoomCreated MessageType = "room_created"
	MessageTypeRoomList    MessageType = "room_list"
	MessageTypeRoomJoined  MessageType = "room_joined"
	MessageTypeUpdate      MessageType = "update"
	MessageTypeHeartbeat   MessageType = "heartbeat"
	MessageTypeClose       MessageType = "close"
	MessageTypeNotFound    MessageType = "not_found"
	MessageTypeError       MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
