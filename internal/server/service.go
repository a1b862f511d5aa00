package server

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/liarsdice/internal/game"
	"github.com/lox/liarsdice/internal/randutil"
	"github.com/lox/liarsdice/internal/roomid"
)

// GameService owns the room registry and executes every room command under
// the room's handle lock. CPU turns and broadcasts are scheduled on the
// injected clock so tests control time.
type GameService struct {
	logger   *log.Logger
	clock    quartz.Clock
	config   Config
	registry *RoomRegistry
	notifier *Notifier

	rngMu sync.Mutex
	rng   *rand.Rand
	idgen *roomid.Generator
}

// NewGameService constructs the service. The rng seeds each room's private
// generator.
func NewGameService(logger *log.Logger, clock quartz.Clock, config Config, rng *rand.Rand) *GameService {
	s := &GameService{
		logger:   logger.WithPrefix("game"),
		clock:    clock,
		config:   config,
		registry: NewRoomRegistry(logger),
		rng:      rng,
	}
	s.idgen = roomid.NewGenerator(lockedRand{s})
	s.notifier = NewNotifier(clock, config.CoalesceWindow, s.pushUpdate, logger)
	return s
}

// lockedRand adapts the service rng to roomid.RandSource under the rng lock.
type lockedRand struct{ s *GameService }

func (lr lockedRand) IntN(n int) int {
	lr.s.rngMu.Lock()
	defer lr.s.rngMu.Unlock()
	return lr.s.rng.IntN(n)
}

// forkRNG derives an independent generator for a new room.
func (s *GameService) forkRNG() *rand.Rand {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return randutil.Fork(s.rng)
}

// CreateRoom creates an empty waiting room and returns its lobby summary.
func (s *GameService) CreateRoom() RoomSummary {
	room := game.NewRoom(s.idgen.Generate(), s.idgen.Name(), s.clock.Now(), s.forkRNG())
	s.registry.Put(room)
	s.logger.Info("Room created", "roomId", room.ID, "name", room.Name)
	return SummarizeRoom(room)
}

// ListWaitingRooms returns joinable rooms, newest first.
func (s *GameService) ListWaitingRooms() []RoomSummary {
	var rooms []RoomSummary
	for _, handle := range s.registry.List() {
		handle.mu.Lock()
		if handle.room.Status == game.StatusWaiting {
			rooms = append(rooms, SummarizeRoom(handle.room))
		}
		handle.mu.Unlock()
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	return rooms
}

// Join attaches a client to a room. A fresh identity is seated while the room
// waits; an existing identity supersedes its previous transport handle and,
// mid-game, resumes its seat. A fresh identity joining a running game is
// rejected. Returns the (possibly newly generated) user ID.
func (s *GameService) Join(roomID, name, userID string, conn ClientConn) (string, error) {
	handle, ok := s.registry.Get(roomID)
	if !ok {
		return "", game.ErrRoomNotFound
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()
	room := handle.room

	if userID != "" {
		if _, seated := room.Player(userID); seated {
			// Supersede the previous handle for this identity so events are
			// never delivered twice.
			if old, attached := handle.clients[userID]; attached && old != conn {
				old.Kick("You have been disconnected due to a new connection by same userId.")
			}
			handle.clients[userID] = conn

			if room.Status == game.StatusWaiting {
				if err := room.Join(userID, name); err != nil {
					return "", err
				}
			} else if err := room.Reconnect(userID); err != nil {
				return "", err
			}
			s.markLocked(handle)
			return userID, nil
		}
	}

	if room.Status != game.StatusWaiting {
		return "", game.ErrGameInProgress
	}

	if userID == "" {
		userID = name + "@" + s.idgen.Suffix(4)
	}
	if err := room.Join(userID, name); err != nil {
		return "", err
	}
	handle.clients[userID] = conn
	s.markLocked(handle)
	s.logger.Info("Player joined", "roomId", roomID, "userId", userID)
	return userID, nil
}

// AddCPUs seats count CPU players in a waiting room.
func (s *GameService) AddCPUs(roomID string, count int) error {
	handle, ok := s.registry.Get(roomID)
	if !ok {
		return game.ErrRoomNotFound
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	err := handle.room.AddCPUs(count, s.config.MaxSeats, func() string {
		return s.idgen.Suffix(4)
	})
	if err != nil {
		return err
	}
	s.markLocked(handle)
	s.logger.Info("CPUs added", "roomId", roomID, "count", count)
	return nil
}

// StartGame starts a waiting room and kicks off the CPU pipeline when the
// first seat is a CPU.
func (s *GameService) StartGame(roomID string) error {
	handle, ok := s.registry.Get(roomID)
	if !ok {
		return game.ErrRoomNotFound
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	if err := handle.room.Start(); err != nil {
		return err
	}
	s.markLocked(handle)
	s.scheduleCPUTurnLocked(handle, s.config.CPUThinkDelay)
	s.logger.Info("Game started", "roomId", roomID, "players", handle.room.SeatCount())
	return nil
}

// PlaceBet applies a bet for a human player.
func (s *GameService) PlaceBet(roomID, userID string, count, face int) error {
	handle, ok := s.registry.Get(roomID)
	if !ok {
		return game.ErrRoomNotFound
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	if err := handle.room.PlaceBet(userID, count, face); err != nil {
		return err
	}
	s.markLocked(handle)
	s.scheduleCPUTurnLocked(handle, s.config.CPUThinkDelay)
	return nil
}

// Challenge resolves the current bet for a human challenger.
func (s *GameService) Challenge(roomID, userID string) error {
	handle, ok := s.registry.Get(roomID)
	if !ok {
		return game.ErrRoomNotFound
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	if _, err := handle.room.Challenge(userID); err != nil {
		var rejection *game.Rejection
		if !errors.As(err, &rejection) {
			// Broken invariant, not a user error. Abort this room loudly.
			s.logger.Error("Room state corrupted, aborting room", "roomId", roomID, "error", err)
			s.abortRoomLocked(handle)
		}
		return err
	}
	s.markLocked(handle)
	// The losing CPU waits out the result display before re-acting.
	s.scheduleCPUTurnLocked(handle, s.config.ChallengeDisplayDelay+s.config.CPUThinkDelay)
	return nil
}

// Leave detaches a client. While waiting the seat is removed; mid-game the
// player is only flagged unreachable. A superseded connection leaves without
// touching the newer one.
func (s *GameService) Leave(roomID, userID string, conn ClientConn) {
	handle, ok := s.registry.Get(roomID)
	if !ok {
		return
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	if current, attached := handle.clients[userID]; !attached || current != conn {
		return
	}
	delete(handle.clients, userID)

	if err := handle.room.Disconnect(userID); err != nil {
		return
	}
	s.markLocked(handle)
	s.logger.Info("Player left", "roomId", roomID, "userId", userID, "status", handle.room.Status)
}

// markLocked arms a coalesced broadcast for the handle's room. Caller holds
// the handle lock.
func (s *GameService) markLocked(handle *roomHandle) {
	s.notifier.Mark(handle.room.ID)
}

// pushUpdate is the notifier flush: one snapshot push to every attached
// client. The snapshot is built under the room lock; sends happen outside it.
func (s *GameService) pushUpdate(roomID string) {
	handle, ok := s.registry.Get(roomID)
	if !ok {
		return
	}

	handle.mu.Lock()
	snapshot := SnapshotRoom(handle.room)
	conns := make([]ClientConn, 0, len(handle.clients))
	for _, conn := range handle.clients {
		conns = append(conns, conn)
	}
	handle.mu.Unlock()

	msg, err := NewMessage(MessageTypeUpdate, snapshot)
	if err != nil {
		s.logger.Error("Failed to build update message", "roomId", roomID, "error", err)
		return
	}

	for _, conn := range conns {
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Debug("Failed to push update", "roomId", roomID, "error", err)
		}
	}
	s.logger.Debug("Pushed room update", "roomId", roomID, "recipients", len(conns))
}

// scheduleCPUTurnLocked arms a CPU action when the current turn-holder is a
// CPU. The scheduled task carries the expected turn-holder's identity and
// re-validates before acting, so stale or duplicate schedules are harmless.
// Caller holds the handle lock; the lock is NOT held during the delay.
func (s *GameService) scheduleCPUTurnLocked(handle *roomHandle, delay time.Duration) {
	room := handle.room
	if room.Status != game.StatusPlaying {
		return
	}
	current, ok := room.CurrentTurn()
	if !ok || !current.IsCPU {
		return
	}

	roomID, cpuID := room.ID, current.ID
	s.clock.AfterFunc(delay, func() {
		s.runCPUTurn(roomID, cpuID)
	}, "cpu", roomID)
	s.logger.Debug("CPU turn scheduled", "roomId", roomID, "userId", cpuID, "delay", delay)
}

// runCPUTurn applies a previously scheduled CPU action. Preconditions are
// re-checked under the room lock: if the game moved on while the CPU was
// "thinking", the action is dropped as a no-op.
func (s *GameService) runCPUTurn(roomID, cpuID string) {
	handle, ok := s.registry.Get(roomID)
	if !ok {
		return
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()
	room := handle.room

	cpu, seated := room.Player(cpuID)
	if room.Status != game.StatusPlaying || !seated || !cpu.IsCPU || !cpu.Alive() || !cpu.IsMyTurn {
		s.logger.Debug("Dropping stale CPU action", "roomId", roomID, "userId", cpuID)
		return
	}

	decision := room.DecideCPU(cpu, s.config.CPUDifficulty)

	var err error
	nextDelay := s.config.CPUThinkDelay
	switch decision.Action {
	case game.ActionChallenge:
		_, err = room.Challenge(cpuID)
		nextDelay += s.config.ChallengeDisplayDelay
	default:
		err = room.PlaceBet(cpuID, decision.Bet.Count, decision.Bet.Face)
		if errors.Is(err, game.ErrInvalidBet) && room.CurrentBet != nil {
			// The raise enumeration can produce a non-raising bet at the top
			// of the bet space; challenging is the only legal move left.
			s.logger.Warn("CPU produced invalid raise, challenging instead",
				"roomId", roomID, "userId", cpuID, "bet", decision.Bet)
			_, err = room.Challenge(cpuID)
			nextDelay += s.config.ChallengeDisplayDelay
		}
	}
	if err != nil {
		var rejection *game.Rejection
		if !errors.As(err, &rejection) {
			s.logger.Error("Room state corrupted, aborting room", "roomId", roomID, "error", err)
			s.abortRoomLocked(handle)
			return
		}
		s.logger.Warn("CPU action rejected", "roomId", roomID, "userId", cpuID, "error", err)
		return
	}

	s.markLocked(handle)
	s.scheduleCPUTurnLocked(handle, nextDelay)
}

// abortRoomLocked tears a corrupted room down: clients are told to drop and
// the room is removed from the registry. Caller holds the handle lock.
func (s *GameService) abortRoomLocked(handle *roomHandle) {
	roomID := handle.room.ID
	for _, conn := range handle.clients {
		conn.Kick("Room aborted due to a server error.")
	}
	handle.clients = make(map[string]ClientConn)
	s.notifier.Cancel(roomID)
	s.registry.Delete(roomID)
}

// RunSweeper reaps rooms older than the retention window until ctx is done.
func (s *GameService) RunSweeper(ctx context.Context) error {
	waiter := s.clock.TickerFunc(ctx, s.config.SweepInterval, func() error {
		s.sweepExpired()
		return nil
	}, "sweeper")
	return waiter.Wait()
}

// sweepExpired removes expired rooms and tells any stragglers to drop.
func (s *GameService) sweepExpired() {
	cutoff := s.clock.Now().Add(-s.config.RoomRetention)
	for _, handle := range s.registry.SweepExpired(cutoff) {
		handle.mu.Lock()
		conns := make([]ClientConn, 0, len(handle.clients))
		for _, conn := range handle.clients {
			conns = append(conns, conn)
		}
		handle.clients = make(map[string]ClientConn)
		roomID := handle.room.ID
		handle.mu.Unlock()

		s.notifier.Cancel(roomID)
		for _, conn := range conns {
			conn.Kick("Room expired.")
		}
	}
}
