package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Notifier turns room mutations into client pushes. Every successful command
// calls Mark; marks for the same room within the coalescing window collapse
// into a single flush, so a burst of back-to-back mutations produces exactly
// one push reflecting the final state.
type Notifier struct {
	logger  *log.Logger
	clock   quartz.Clock
	window  time.Duration
	flush   func(roomID string)
	mu      sync.Mutex
	pending map[string]*quartz.Timer
}

// NewNotifier creates a notifier that calls flush once per coalesced burst.
func NewNotifier(clock quartz.Clock, window time.Duration, flush func(roomID string), logger *log.Logger) *Notifier {
	return &Notifier{
		logger:  logger.WithPrefix("notifier"),
		clock:   clock,
		window:  window,
		flush:   flush,
		pending: make(map[string]*quartz.Timer),
	}
}

// Mark records that the room mutated. The first mark arms a flush timer;
// further marks within the window ride along with it.
func (n *Notifier) Mark(roomID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, armed := n.pending[roomID]; armed {
		return
	}
	n.pending[roomID] = n.clock.AfterFunc(n.window, func() {
		n.mu.Lock()
		delete(n.pending, roomID)
		n.mu.Unlock()

		n.flush(roomID)
	}, "notifier", roomID)
	n.logger.Debug("Flush armed", "roomId", roomID, "window", n.window)
}

// Cancel drops any pending flush for the room; used when a room is reaped
// with clients already gone.
func (n *Notifier) Cancel(roomID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if timer, armed := n.pending[roomID]; armed {
		timer.Stop()
		delete(n.pending, roomID)
	}
}
