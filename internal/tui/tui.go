package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/liarsdice/internal/game"
)

// TUIModel represents the Bubble Tea model for the dice game
type TUIModel struct {
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog      []string
	actionResult chan ActionResult
	quitSignal   chan bool
	quitting     bool
	focusedPane  int // 0 = log, 1 = input

	// Display state, mirrored from server updates
	roomID     string
	roomName   string
	roomStatus string
	currentBet *BetInfo
	turnName   string
	isMyTurn   bool
	myDice     []int
	players    []PlayerInfo

	// Dimensions
	width       int
	height      int
	initialized bool // Track if viewport has been properly sized

	// Test mode
	testMode        bool
	capturedLog     []string                 // For test assertions
	messageCallback func(messageType string) // Callback for test event synchronization
}

// ActionResult represents the result of a user action
type ActionResult struct {
	Action   string
	Args     []string
	Continue bool
	Error    error
}

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

// BetInfo holds the bet currently on the table
type BetInfo struct {
	Count      int
	Face       int
	PlayerName string
}

// PlayerInfo holds basic player information for the sidebar
type PlayerInfo struct {
	Name        string
	DiceCount   int
	IsMyTurn    bool
	IsCPU       bool
	IsConnected bool
}

// NewTUIModel creates a new TUI model for network mode
func NewTUIModel(logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(logger, false)
}

// NewTUIModelWithOptions creates a new TUI model with test mode option
func NewTUIModelWithOptions(logger *log.Logger, testMode bool) *TUIModel {
	// Create viewport for game log with minimal initial size
	// Will be properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	// Create textinput for action input
	ti := textinput.New()
	ti.Placeholder = "Enter your action (bet 3 4, challenge, /list, /join <id>, etc.)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TUIModel{
		logger:       logger.WithPrefix("tui"),
		logViewport:  vp,
		actionInput:  ti,
		gameLog:      []string{},
		actionResult: make(chan ActionResult, 1),
		quitSignal:   make(chan bool, 1),
		focusedPane:  1, // Start with input focused
		testMode:     testMode,
		capturedLog:  []string{},
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenForQuit())
}

// listenForQuit returns a command that listens for quit signals
func (m *TUIModel) listenForQuit() tea.Cmd {
	return func() tea.Msg {
		<-m.quitSignal
		return QuitMsg{}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case tea.WindowSizeMsg:
		m.logger.Debug("Updating dimensions", "width", msg.Width, "height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.actionResult <- ActionResult{Action: "quit", Continue: false}
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			// Switch focus between log and input
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 { // Only process enter in input pane
				action := strings.TrimSpace(m.actionInput.Value())
				m.processAction(action)
				m.actionInput.SetValue("")
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	// Update components
	var cmd tea.Cmd

	// Only update input if it's focused
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Always update viewport (for scrolling)
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	calculatedActionWidth := m.width - 2
	calculatedActionHeight := actionHeight - 2

	if calculatedActionWidth < 1 {
		calculatedActionWidth = 1
	}
	if calculatedActionHeight < 1 {
		calculatedActionHeight = 1
	}

	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(calculatedActionWidth).
		Height(calculatedActionHeight)

	actionPane := actionStyle.Render(actionContent)

	// Sidebar pane (right side of log pane, same height as log pane)
	sidebarContent := m.renderSidebarPane()
	sidebarWidth := lipgloss.Width(sidebarContent)

	calculatedSidebarWidth := 25
	if sidebarWidth > calculatedSidebarWidth {
		calculatedSidebarWidth = sidebarWidth
	}

	calculatedSidebarHeight := m.height - actionHeight - 4

	if calculatedSidebarWidth < 1 {
		calculatedSidebarWidth = 1
	}
	if calculatedSidebarHeight < 1 {
		calculatedSidebarHeight = 1
	}

	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedSidebarWidth).
		Height(calculatedSidebarHeight)

	sidebarPane := sidebarStyle.Render(sidebarContent)

	// Log pane (top, fills height minus action pane)
	logContent := m.renderLogPane()
	m.logViewport.SetContent(logContent)

	calculatedLogWidth := m.width - calculatedSidebarWidth - 4
	calculatedLogHeight := m.height - actionHeight - 4

	if calculatedLogWidth < 1 {
		calculatedLogWidth = 1
	}
	if calculatedLogHeight < 1 {
		calculatedLogHeight = 1
	}

	m.logViewport.Width = calculatedLogWidth
	m.logViewport.Height = calculatedLogHeight

	// On first proper sizing, reset to top to avoid starting scrolled down
	if !m.initialized && calculatedLogWidth > 1 && calculatedLogHeight > 1 {
		m.logViewport.GotoTop()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedLogWidth).
		Height(calculatedLogHeight)

	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	// Top row (log pane + sidebar pane)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)

	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderLogPane renders the game log pane content
func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderSidebarPane creates the sidebar content
func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder

	if m.roomID == "" {
		content.WriteString(InfoStyle.Render("Not in a room."))
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("/create or /join <id>"))
		return content.String()
	}

	content.WriteString(HeaderStyle.Render(" " + m.roomName + " "))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(m.roomStatus))
	content.WriteString("\n\n")

	if m.currentBet != nil {
		content.WriteString(WarningStyle.Render(
			fmt.Sprintf("Bet: %d × %s", m.currentBet.Count, faceName(m.currentBet.Face))))
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("by " + m.currentBet.PlayerName))
		content.WriteString("\n\n")
	}

	if len(m.players) > 0 {
		content.WriteString(InfoStyle.Render("Players:"))
		content.WriteString("\n")
		for _, player := range m.players {
			marker := "  "
			if player.IsMyTurn {
				marker = "▸ "
			}
			label := fmt.Sprintf("%s%s (%d dice)", marker, player.Name, player.DiceCount)
			switch {
			case !player.IsConnected:
				content.WriteString(InfoStyle.Render(label + " [away]"))
			case player.IsMyTurn:
				content.WriteString(TurnInfoStyle.Render(label))
			default:
				content.WriteString(PlayerInfoStyle.Render(label))
			}
			content.WriteString("\n")
		}
	}

	return content.String()
}

// renderActionPane renders the action input pane
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	if m.isMyTurn {
		content.WriteString(TurnInfoStyle.Render("Your turn!  Your dice: " + m.formatDice(m.myDice)))
		content.WriteString("\n")
		content.WriteString(m.renderAvailableActions())
		content.WriteString("\n")
	} else if len(m.myDice) > 0 {
		content.WriteString(TurnInfoStyle.Render("Your dice: " + m.formatDice(m.myDice)))
		if m.turnName != "" {
			content.WriteString(InfoStyle.Render("  waiting for " + m.turnName))
		}
		content.WriteString("\n")
	}

	// Update input placeholder based on game state and show input field
	if m.isMyTurn {
		m.actionInput.Placeholder = "bet <count> <face>, or challenge"
	} else {
		m.actionInput.Placeholder = "/create, /list, /join <id>, /addcpu, /start, /leave, /quit"
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	// Show help text
	if m.focusedPane == 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render(
			"Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render(
			"Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}

	return content.String()
}

// renderAvailableActions renders the legal moves for the turn holder
func (m *TUIModel) renderAvailableActions() string {
	actions := []string{WarningStyle.Render("[bet <count> <face>]")}
	if m.currentBet != nil {
		actions = append(actions, ErrorStyle.Render("[challenge]"))
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// formatDice formats a hand, highlighting wildcard ones
func (m *TUIModel) formatDice(dice []int) string {
	if len(dice) == 0 {
		return ""
	}

	var formatted []string
	for _, die := range dice {
		face := fmt.Sprintf(" %d ", die)
		if die == game.Wildcard {
			formatted = append(formatted, WildDiceStyle.Render(face))
		} else {
			formatted = append(formatted, DiceStyle.Render(face))
		}
	}

	return strings.Join(formatted, " ")
}

func faceName(face int) string {
	names := map[int]string{1: "ones", 2: "twos", 3: "threes", 4: "fours", 5: "fives", 6: "sixes"}
	if name, ok := names[face]; ok {
		return name
	}
	return fmt.Sprintf("%ds", face)
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	// In test mode, also capture the log entry
	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return // Skip UI updates in test mode
	}

	// Update content and auto-scroll to bottom
	content := strings.Join(m.gameLog, "\n")
	m.logViewport.SetContent(content)

	// Only call GotoBottom if viewport has valid dimensions
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// AddBoldLogEntry adds a bold entry to the game log
func (m *TUIModel) AddBoldLogEntry(entry string) {
	boldEntry := fmt.Sprintf("\033[1m%s\033[0m", entry)

	// In test mode, capture without ANSI codes
	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		m.gameLog = append(m.gameLog, boldEntry)
		return
	}

	m.gameLog = append(m.gameLog, boldEntry)
	content := strings.Join(m.gameLog, "\n")
	m.logViewport.SetContent(content)
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// ClearLog clears the game log
func (m *TUIModel) ClearLog() {
	m.gameLog = []string{}
	m.logViewport.SetContent("")
}

// SetRoomInfo sets the room identity shown in the sidebar
func (m *TUIModel) SetRoomInfo(roomID, roomName, status string) {
	m.roomID = roomID
	m.roomName = roomName
	m.roomStatus = status
}

// UpdateCurrentBet updates the bet on the table; nil clears it
func (m *TUIModel) UpdateCurrentBet(bet *BetInfo) {
	m.currentBet = bet
}

// UpdatePlayers updates the seat list shown in the sidebar
func (m *TUIModel) UpdatePlayers(players []PlayerInfo) {
	m.players = players
}

// SetMyTurn sets whether it's the local player's turn and their current hand
func (m *TUIModel) SetMyTurn(isMyTurn bool, turnName string, dice []int) {
	m.isMyTurn = isMyTurn
	m.turnName = turnName
	m.myDice = dice
}

// processAction processes a user action
func (m *TUIModel) processAction(input string) {
	parts := strings.Fields(strings.ToLower(input))

	var action string
	var args []string

	if len(parts) == 0 {
		// Empty input (Enter pressed with no text)
		action = ""
		args = []string{}
	} else {
		action = parts[0]
		args = parts[1:]
	}

	// Send action result through channel
	m.actionResult <- ActionResult{
		Action:   action,
		Args:     args,
		Continue: true, // Let the command handler decide whether to continue
	}
}

// WaitForAction waits for user input (for use by the command loop)
func (m *TUIModel) WaitForAction() (string, []string, bool, error) {
	result := <-m.actionResult
	return result.Action, result.Args, result.Continue, result.Error
}

// SendQuitSignal signals the TUI to quit gracefully
func (m *TUIModel) SendQuitSignal() {
	select {
	case m.quitSignal <- true:
	default:
		// Channel is full, quit signal already sent
	}
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	// Return a copy to prevent modification
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// InjectAction programmatically injects an action (test mode only)
func (m *TUIModel) InjectAction(action string, args []string) error {
	if !m.testMode {
		return fmt.Errorf("action injection only available in test mode")
	}

	select {
	case m.actionResult <- ActionResult{
		Action:   action,
		Args:     args,
		Continue: true,
	}:
		return nil
	default:
		return fmt.Errorf("action channel full")
	}
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}

// SetMessageCallback sets a callback function for test event synchronization
func (m *TUIModel) SetMessageCallback(callback func(messageType string)) {
	if m.testMode {
		m.messageCallback = callback
	}
}

// notifyMessageCallback calls the message callback if in test mode
func (m *TUIModel) notifyMessageCallback(messageType string) {
	if m.testMode && m.messageCallback != nil {
		m.messageCallback(messageType)
	}
}
