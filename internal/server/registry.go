package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/liarsdice/internal/game"
)

// ClientConn is an attached client transport. Connection implements it; tests
// substitute fakes.
type ClientConn interface {
	SendMessage(msg *Message) error
	Kick(reason string)
}

// roomHandle bundles a room with its serialization lock and attached clients.
// All command execution for a room happens with mu held, so the check-then-act
// turn and bet invariants never interleave.
type roomHandle struct {
	mu      sync.Mutex
	room    *game.Room
	clients map[string]ClientConn
}

// RoomRegistry is the process-wide id → room mapping. Registry access is
// guarded by its own lock; room state is only touched through each handle's
// lock.
type RoomRegistry struct {
	logger *log.Logger
	mu     sync.RWMutex
	rooms  map[string]*roomHandle
}

// NewRoomRegistry constructs an empty registry.
func NewRoomRegistry(logger *log.Logger) *RoomRegistry {
	return &RoomRegistry{
		logger: logger.WithPrefix("registry"),
		rooms:  make(map[string]*roomHandle),
	}
}

// Put registers a room and returns its handle.
func (rr *RoomRegistry) Put(room *game.Room) *roomHandle {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	handle := &roomHandle{
		room:    room,
		clients: make(map[string]ClientConn),
	}
	rr.rooms[room.ID] = handle
	rr.logger.Info("Room registered", "roomId", room.ID, "name", room.Name)
	return handle
}

// Get retrieves a room handle by ID.
func (rr *RoomRegistry) Get(id string) (*roomHandle, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	handle, ok := rr.rooms[id]
	return handle, ok
}

// List returns a snapshot of all room handles.
func (rr *RoomRegistry) List() []*roomHandle {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	handles := make([]*roomHandle, 0, len(rr.rooms))
	for _, handle := range rr.rooms {
		handles = append(handles, handle)
	}
	return handles
}

// Delete removes a room by ID.
func (rr *RoomRegistry) Delete(id string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	delete(rr.rooms, id)
}

// SweepExpired removes rooms created before the cutoff and returns their
// handles so the caller can notify attached clients.
func (rr *RoomRegistry) SweepExpired(cutoff time.Time) []*roomHandle {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	var expired []*roomHandle
	for id, handle := range rr.rooms {
		// CreatedAt is immutable after creation, so no handle lock is needed
		// here and no lock ordering with command execution is established.
		if handle.room.CreatedAt.Before(cutoff) {
			expired = append(expired, handle)
			delete(rr.rooms, id)
			rr.logger.Info("Room expired", "roomId", id)
		}
	}
	return expired
}
