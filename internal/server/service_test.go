package server

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsdice/internal/game"
	"github.com/lox/liarsdice/internal/randutil"
)

type fakeConn struct {
	mu     sync.Mutex
	msgs   []*Message
	kicked []string
}

func (f *fakeConn) SendMessage(msg *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeConn) Kick(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicked = append(f.kicked, reason)
}

func (f *fakeConn) countType(t MessageType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, msg := range f.msgs {
		if msg.Type == t {
			count++
		}
	}
	return count
}

func (f *fakeConn) kickCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.kicked)
}

func newTestService(t *testing.T) (*GameService, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	s := NewGameService(log.New(io.Discard), clock, DefaultConfig(), randutil.New(1))
	return s, clock
}

func advance(t *testing.T, clock *quartz.Mock, d time.Duration) {
	t.Helper()
	// quartz refuses to Advance past the next scheduled event, so step
	// through intermediate timers until the full duration has elapsed.
	for d > 0 {
		next, ok := clock.Peek()
		if !ok || next > d {
			clock.Advance(d).MustWait(context.Background())
			return
		}
		clock.Advance(next).MustWait(context.Background())
		d -= next
	}
}

func TestCreateRoomAndJoin(t *testing.T) {
	s, clock := newTestService(t)
	conn := &fakeConn{}

	summary := s.CreateRoom()
	require.NotEmpty(t, summary.ID)
	require.NotEmpty(t, summary.Name)
	assert.Equal(t, string(game.StatusWaiting), summary.Status)

	userID, err := s.Join(summary.ID, "alice", "", conn)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(userID, "alice@"), "userID %q should derive from the name", userID)

	// One coalesced update after the window.
	advance(t, clock, s.config.CoalesceWindow)
	assert.Equal(t, 1, conn.countType(MessageTypeUpdate))
}

func TestJoinUnknownRoom(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Join("no-such-room", "alice", "", &fakeConn{})
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestJoinBurstCoalescesIntoOneUpdate(t *testing.T) {
	s, clock := newTestService(t)
	alice, bob := &fakeConn{}, &fakeConn{}

	summary := s.CreateRoom()
	_, err := s.Join(summary.ID, "alice", "", alice)
	require.NoError(t, err)
	_, err = s.Join(summary.ID, "bob", "", bob)
	require.NoError(t, err)
	require.NoError(t, s.AddCPUs(summary.ID, 1))

	advance(t, clock, s.config.CoalesceWindow)

	// Three mutations inside one window, one push, reflecting all three.
	require.Equal(t, 1, updateCount(alice))
	require.Equal(t, 1, updateCount(bob))

	handle, ok := s.registry.Get(summary.ID)
	require.True(t, ok)
	assert.Equal(t, 3, handle.room.SeatCount())
}

func updateCount(c *fakeConn) int {
	return c.countType(MessageTypeUpdate)
}

func TestReconnectSupersedesOldConnection(t *testing.T) {
	s, clock := newTestService(t)
	oldConn, newConn := &fakeConn{}, &fakeConn{}

	summary := s.CreateRoom()
	userID, err := s.Join(summary.ID, "alice", "", oldConn)
	require.NoError(t, err)

	// Same identity from a fresh connection: the old handle is told to drop.
	sameID, err := s.Join(summary.ID, "alice", userID, newConn)
	require.NoError(t, err)
	assert.Equal(t, userID, sameID)
	assert.Equal(t, 1, oldConn.kickCount())

	// The superseded connection's teardown must not detach the new handle.
	s.Leave(summary.ID, userID, oldConn)

	handle, ok := s.registry.Get(summary.ID)
	require.True(t, ok)
	handle.mu.Lock()
	_, seated := handle.room.Player(userID)
	attached := handle.clients[userID]
	handle.mu.Unlock()
	assert.True(t, seated)
	assert.Equal(t, ClientConn(newConn), attached)

	advance(t, clock, s.config.CoalesceWindow)
	assert.GreaterOrEqual(t, updateCount(newConn), 1)
}

func TestJoinRunningGameWithFreshIdentityRejected(t *testing.T) {
	s, _ := newTestService(t)
	alice, bob := &fakeConn{}, &fakeConn{}

	summary := s.CreateRoom()
	_, err := s.Join(summary.ID, "alice", "", alice)
	require.NoError(t, err)
	_, err = s.Join(summary.ID, "bob", "", bob)
	require.NoError(t, err)
	require.NoError(t, s.StartGame(summary.ID))

	_, err = s.Join(summary.ID, "carol", "", &fakeConn{})
	assert.ErrorIs(t, err, game.ErrGameInProgress)
}

func TestReconnectMidGameResumesSeat(t *testing.T) {
	s, _ := newTestService(t)
	alice, bob := &fakeConn{}, &fakeConn{}

	summary := s.CreateRoom()
	aliceID, err := s.Join(summary.ID, "alice", "", alice)
	require.NoError(t, err)
	_, err = s.Join(summary.ID, "bob", "", bob)
	require.NoError(t, err)
	require.NoError(t, s.StartGame(summary.ID))

	// Dropping mid-game keeps the seat, only flags it unreachable.
	s.Leave(summary.ID, aliceID, alice)
	handle, _ := s.registry.Get(summary.ID)
	handle.mu.Lock()
	p, seated := handle.room.Player(aliceID)
	handle.mu.Unlock()
	require.True(t, seated)
	assert.False(t, p.IsConnected)
	assert.Len(t, p.Dice, game.StartingDice)

	// Reconnecting with the old identity resumes it.
	again := &fakeConn{}
	sameID, err := s.Join(summary.ID, "alice", aliceID, again)
	require.NoError(t, err)
	assert.Equal(t, aliceID, sameID)

	handle.mu.Lock()
	p, _ = handle.room.Player(aliceID)
	handle.mu.Unlock()
	assert.True(t, p.IsConnected)
}

func TestLeaveWhileWaitingRemovesSeat(t *testing.T) {
	s, _ := newTestService(t)
	conn := &fakeConn{}

	summary := s.CreateRoom()
	userID, err := s.Join(summary.ID, "alice", "", conn)
	require.NoError(t, err)

	s.Leave(summary.ID, userID, conn)

	handle, _ := s.registry.Get(summary.ID)
	handle.mu.Lock()
	defer handle.mu.Unlock()
	assert.Equal(t, 0, handle.room.SeatCount())
}

func TestListWaitingRoomsFiltersAndSorts(t *testing.T) {
	s, clock := newTestService(t)
	alice, bob := &fakeConn{}, &fakeConn{}

	first := s.CreateRoom()
	advance(t, clock, time.Minute)
	second := s.CreateRoom()

	// A started room disappears from the lobby.
	_, err := s.Join(first.ID, "alice", "", alice)
	require.NoError(t, err)
	_, err = s.Join(first.ID, "bob", "", bob)
	require.NoError(t, err)
	require.NoError(t, s.StartGame(first.ID))

	rooms := s.ListWaitingRooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, second.ID, rooms[0].ID)
}

func TestCPUPlaysAfterThinkDelay(t *testing.T) {
	s, clock := newTestService(t)
	conn := &fakeConn{}

	summary := s.CreateRoom()
	userID, err := s.Join(summary.ID, "alice", "", conn)
	require.NoError(t, err)
	require.NoError(t, s.AddCPUs(summary.ID, 1))
	require.NoError(t, s.StartGame(summary.ID))

	handle, _ := s.registry.Get(summary.ID)

	// If the human opens, place a bet so the CPU is on turn with a pending
	// schedule either way.
	handle.mu.Lock()
	current, ok := handle.room.CurrentTurn()
	require.True(t, ok)
	humanOpens := current.ID == userID
	handle.mu.Unlock()

	if humanOpens {
		require.NoError(t, s.PlaceBet(summary.ID, userID, 2, 3))
	}

	// After the think delay the CPU must have acted: either a (new) bet is
	// on the table or a challenge resolved.
	advance(t, clock, s.config.CPUThinkDelay+s.config.ChallengeDisplayDelay)

	handle.mu.Lock()
	defer handle.mu.Unlock()
	acted := handle.room.CurrentBet != nil || handle.room.LastChallengeResult != nil
	assert.True(t, acted, "CPU did not act after the think delay")
}

func TestStaleCPUActionDropped(t *testing.T) {
	s, clock := newTestService(t)

	summary := s.CreateRoom()
	handle, ok := s.registry.Get(summary.ID)
	require.True(t, ok)

	// Hand-build a playing room where the CPU holds the turn, then schedule
	// its action and strip the turn before the delay elapses.
	handle.mu.Lock()
	require.NoError(t, handle.room.Join("alice@aaaa", "alice"))
	require.NoError(t, handle.room.AddCPUs(1, 6, func() string { return "bbbb" }))
	require.NoError(t, handle.room.Start())
	cpu := findCPU(t, handle.room)
	human, _ := handle.room.Player("alice@aaaa")
	cpu.IsMyTurn, human.IsMyTurn = true, false
	s.scheduleCPUTurnLocked(handle, s.config.CPUThinkDelay)
	// The human beats the CPU to it; the scheduled action is now stale.
	cpu.IsMyTurn, human.IsMyTurn = false, true
	handle.mu.Unlock()

	advance(t, clock, s.config.CPUThinkDelay)

	handle.mu.Lock()
	defer handle.mu.Unlock()
	assert.Nil(t, handle.room.CurrentBet, "stale CPU action must be a no-op")
	assert.True(t, human.IsMyTurn)
}

func findCPU(t *testing.T, r *game.Room) *game.Player {
	t.Helper()
	for _, p := range r.Users {
		if p.IsCPU {
			return p
		}
	}
	t.Fatal("no CPU seated")
	return nil
}

func TestSweepRemovesOnlyExpiredRooms(t *testing.T) {
	s, clock := newTestService(t)
	conn := &fakeConn{}

	stale := s.CreateRoom()
	_, err := s.Join(stale.ID, "alice", "", conn)
	require.NoError(t, err)

	advance(t, clock, s.config.RoomRetention+time.Minute)
	fresh := s.CreateRoom()

	s.sweepExpired()

	_, staleExists := s.registry.Get(stale.ID)
	_, freshExists := s.registry.Get(fresh.ID)
	assert.False(t, staleExists)
	assert.True(t, freshExists)
	assert.Equal(t, 1, conn.kickCount())
}
