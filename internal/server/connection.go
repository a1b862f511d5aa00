package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/liarsdice/internal/game"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	userID    string
	roomID    string
	heartbeat time.Duration
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	service   *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, service *GameService, heartbeat time.Duration) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:      conn,
		send:      make(chan *Message, 256),
		heartbeat: heartbeat,
		logger:    logger.WithPrefix("conn"),
		ctx:       ctx,
		cancel:    cancel,
		service:   service,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Kick tells the client to drop and closes the connection. Used when a newer
// connection supersedes this identity, or when a room goes away.
func (c *Connection) Kick(reason string) {
	msg, err := NewMessage(MessageTypeClose, CloseData{Reason: reason})
	if err == nil {
		_ = c.SendMessage(msg)
	}
	// Detach before closing so teardown does not disconnect the seat the
	// newer connection now owns.
	c.SetIdentity("", "")
	_ = c.Close()
}

// SetIdentity associates this connection with a room and player.
func (c *Connection) SetIdentity(roomID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
	c.userID = userID
}

// Identity returns the associated room and player IDs.
func (c *Connection) Identity() (roomID, userID string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID, c.userID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.teardown()
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client. The heartbeat ticker is
// liveness only, no payload semantics.
func (c *Connection) writePump() {
	pingTicker := time.NewTicker(pingPeriod)
	heartbeatTicker := time.NewTicker(c.heartbeat)
	defer func() {
		pingTicker.Stop()
		heartbeatTicker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-heartbeatTicker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			msg, err := NewMessage(MessageTypeHeartbeat, nil)
			if err != nil {
				continue
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-pingTicker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// teardown releases the seat (or flags it unreachable) when the socket goes
// away without a leave_room.
func (c *Connection) teardown() {
	roomID, userID := c.Identity()
	if roomID == "" || userID == "" {
		return
	}
	c.service.Leave(roomID, userID, c)
	c.SetIdentity("", "")
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	_, userID := c.Identity()
	c.logger.Debug("Received message", "type", msg.Type, "userId", userID)

	switch msg.Type {
	case MessageTypeCreateRoom:
		c.handleCreateRoom()

	case MessageTypeListRooms:
		c.handleListRooms()

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("malformed_input", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeAddCPU:
		var data AddCPUData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("malformed_input", "Failed to parse add cpu data")
			return
		}
		c.handleAddCPU(data)

	case MessageTypeStartGame:
		var data StartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("malformed_input", "Failed to parse start game data")
			return
		}
		c.handleStartGame(data)

	case MessageTypePlaceBet:
		var data PlaceBetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("malformed_input", "Failed to parse bet data")
			return
		}
		c.handlePlaceBet(data)

	case MessageTypeChallenge:
		var data ChallengeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("malformed_input", "Failed to parse challenge data")
			return
		}
		c.handleChallenge(data)

	case MessageTypeLeaveRoom:
		c.teardown()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

// sendRejection maps a command error onto the wire: room_not_found becomes
// the dedicated not_found event, typed rejections carry their code, anything
// else is an internal error.
func (c *Connection) sendRejection(roomID string, err error) {
	if errors.Is(err, game.ErrRoomNotFound) {
		msg, merr := NewMessage(MessageTypeNotFound, NotFoundData{RoomID: roomID})
		if merr == nil {
			_ = c.SendMessage(msg)
		}
		return
	}

	var rejection *game.Rejection
	if errors.As(err, &rejection) {
		c.sendError(rejection.Code, rejection.Message)
		return
	}
	c.sendError("internal", "Internal server error")
}

func (c *Connection) handleCreateRoom() {
	summary := c.service.CreateRoom()
	response, _ := NewMessage(MessageTypeRoomCreated, RoomCreatedData{Room: summary})
	_ = c.SendMessage(response)
}

func (c *Connection) handleListRooms() {
	response, _ := NewMessage(MessageTypeRoomList, RoomListData{Rooms: c.service.ListWaitingRooms()})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	if data.Name == "" && data.UserID == "" {
		c.sendError("malformed_input", "Player name required")
		return
	}

	userID, err := c.service.Join(data.RoomID, data.Name, data.UserID, c)
	if err != nil {
		if errors.Is(err, game.ErrGameInProgress) {
			// A fresh identity cannot enter a running game.
			msg, merr := NewMessage(MessageTypeClose, CloseData{
				Reason: "You cannot join a game in progress with a new connection.",
			})
			if merr == nil {
				_ = c.SendMessage(msg)
			}
			return
		}
		c.sendRejection(data.RoomID, err)
		return
	}

	c.SetIdentity(data.RoomID, userID)
	response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{RoomID: data.RoomID, UserID: userID})
	_ = c.SendMessage(response)
}

func (c *Connection) handleAddCPU(data AddCPUData) {
	count := data.Count
	if count == 0 {
		count = 1
	}
	if count < 1 || count > c.service.config.MaxCPUsPerAdd {
		c.sendError("malformed_input", "Invalid CPU count")
		return
	}

	if err := c.service.AddCPUs(data.RoomID, count); err != nil {
		c.sendRejection(data.RoomID, err)
	}
}

func (c *Connection) handleStartGame(data StartGameData) {
	if err := c.service.StartGame(data.RoomID); err != nil {
		c.sendRejection(data.RoomID, err)
	}
}

func (c *Connection) handlePlaceBet(data PlaceBetData) {
	if data.Count < 1 || data.Face < 1 || data.Face > game.DiceFaces {
		c.sendError("malformed_input", "Bet count must be >= 1 and face in [1,6]")
		return
	}

	_, userID := c.Identity()
	if userID == "" {
		c.sendError("not_joined", "Join a room first")
		return
	}

	if err := c.service.PlaceBet(data.RoomID, userID, data.Count, data.Face); err != nil {
		c.sendRejection(data.RoomID, err)
	}
}

func (c *Connection) handleChallenge(data ChallengeData) {
	_, userID := c.Identity()
	if userID == "" {
		c.sendError("not_joined", "Join a room first")
		return
	}

	if err := c.service.Challenge(data.RoomID, userID); err != nil {
		c.sendRejection(data.RoomID, err)
	}
}
