package server

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
)

type flushRecorder struct {
	mu      sync.Mutex
	flushes []string
}

func (f *flushRecorder) flush(roomID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes = append(f.flushes, roomID)
}

func (f *flushRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.flushes)
}

func TestNotifierCoalescesBurstsIntoOnePush(t *testing.T) {
	clock := quartz.NewMock(t)
	rec := &flushRecorder{}
	n := NewNotifier(clock, 50*time.Millisecond, rec.flush, log.New(io.Discard))

	// A burst of mutations within the window collapses into one flush.
	n.Mark("room-1")
	n.Mark("room-1")
	n.Mark("room-1")

	clock.Advance(50 * time.Millisecond).MustWait(context.Background())
	assert.Equal(t, 1, rec.count())

	// A mutation after the flush arms a new one.
	n.Mark("room-1")
	clock.Advance(50 * time.Millisecond).MustWait(context.Background())
	assert.Equal(t, 2, rec.count())
}

func TestNotifierFlushesRoomsIndependently(t *testing.T) {
	clock := quartz.NewMock(t)
	rec := &flushRecorder{}
	n := NewNotifier(clock, 50*time.Millisecond, rec.flush, log.New(io.Discard))

	n.Mark("room-1")
	n.Mark("room-2")
	n.Mark("room-1")

	clock.Advance(50 * time.Millisecond).MustWait(context.Background())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.flushes, 2)
	assert.ElementsMatch(t, []string{"room-1", "room-2"}, rec.flushes)
}

func TestNotifierCancelDropsPendingFlush(t *testing.T) {
	clock := quartz.NewMock(t)
	rec := &flushRecorder{}
	n := NewNotifier(clock, 50*time.Millisecond, rec.flush, log.New(io.Discard))

	n.Mark("room-1")
	n.Cancel("room-1")

	clock.Advance(time.Second).MustWait(context.Background())
	assert.Equal(t, 0, rec.count())
}
