package tui

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUITestMode(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests

	t.Run("test mode captures log entries", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		assert.True(t, tui.IsTestMode())
		assert.Empty(t, tui.GetCapturedLog())

		// Add some log entries
		tui.AddLogEntry("Alice joins the room")
		tui.AddLogEntry("Alice bets 3 × fours")
		tui.AddBoldLogEntry("=== Game started ===")

		// Check captured log
		captured := tui.GetCapturedLog()
		require.Len(t, captured, 3)

		assert.Equal(t, "Alice joins the room", captured[0])
		assert.Equal(t, "Alice bets 3 × fours", captured[1])
		assert.Equal(t, "=== Game started ===", captured[2])
	})

	t.Run("production mode does not capture logs", func(t *testing.T) {
		tui := NewTUIModel(logger) // Default is production mode

		assert.False(t, tui.IsTestMode())

		tui.AddLogEntry("Some log entry")

		// Should return nil in production mode
		assert.Nil(t, tui.GetCapturedLog())
	})

	t.Run("action injection works in test mode", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		// Inject an action
		err := tui.InjectAction("challenge", nil)
		require.NoError(t, err)

		// Wait for the action
		action, args, cont, err := tui.WaitForAction()
		require.NoError(t, err)

		assert.Equal(t, "challenge", action)
		assert.Empty(t, args)
		assert.True(t, cont)
	})

	t.Run("action injection fails in production mode", func(t *testing.T) {
		tui := NewTUIModel(logger) // Production mode

		err := tui.InjectAction("challenge", nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "test mode")
	})

	t.Run("action injection with arguments", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		// Inject action with arguments
		err := tui.InjectAction("bet", []string{"3", "4"})
		require.NoError(t, err)

		// Wait for the action
		action, args, cont, err := tui.WaitForAction()
		require.NoError(t, err)

		assert.Equal(t, "bet", action)
		assert.Equal(t, []string{"3", "4"}, args)
		assert.True(t, cont)
	})
}

func TestFaceName(t *testing.T) {
	assert.Equal(t, "ones", faceName(1))
	assert.Equal(t, "fours", faceName(4))
	assert.Equal(t, "sixes", faceName(6))
	assert.Equal(t, "9s", faceName(9))
}
