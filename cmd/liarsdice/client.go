package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/liarsdice/cmd/liarsdice/shared"
	"github.com/lox/liarsdice/internal/client"
	"github.com/lox/liarsdice/internal/tui"
)

// ClientCmd contains interactive client configuration
type ClientCmd struct {
	Config   string `short:"c" default:"liarsdice-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" help:"Server URL to connect to (overrides config)"`
	Name     string `short:"n" help:"Player name (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Log file path (overrides config)"`
}

func (c *ClientCmd) Run() error {
	// Load configuration
	cfg, err := client.LoadClientConfig(c.Config)
	if err != nil {
		return err
	}

	// Apply command line overrides
	if c.Server != "" {
		cfg.Server.URL = c.Server
	}
	if c.Name != "" {
		cfg.Player.Name = c.Name
	}
	if c.LogLevel != "" {
		cfg.UI.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.UI.LogFile = c.LogFile
	}

	// Get player name if not set
	if cfg.Player.Name == "" {
		fmt.Print("Enter your player name: ")
		var input string
		_, _ = fmt.Scanln(&input)
		cfg.Player.Name = strings.TrimSpace(input)
		if cfg.Player.Name == "" {
			return fmt.Errorf("player name is required")
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// The TUI owns the terminal; logs go to a file
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger := shared.SetupFileLogger(logFile, cfg.UI.LogLevel)
	logger.Info("Starting Liar's Dice client",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"config", c.Config)

	// Create TUI model
	tuiModel := tui.NewTUIModel(logger)

	// Create WebSocket client
	wsClient := client.NewClient(cfg.Server.URL, logger)
	wsClient.SetPlayerName(cfg.Player.Name)

	// Wire server events into the TUI
	tui.SetupNetworkHandlers(wsClient, tuiModel)

	// Connect to server
	if err := wsClient.Connect(); err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer func() { _ = wsClient.Disconnect() }()

	// Start TUI
	program := tea.NewProgram(tuiModel, tea.WithAltScreen())

	// Add initial welcome message
	tuiModel.AddLogEntry("=== Liar's Dice ===")
	tuiModel.AddLogEntry("Connected to server: " + cfg.Server.URL)
	tuiModel.AddLogEntry("Player: " + cfg.Player.Name)
	tuiModel.AddLogEntry("")
	tuiModel.AddLogEntry("Commands:")
	tuiModel.AddLogEntry("  \033[1m/create\033[0m - Create a new room")
	tuiModel.AddLogEntry("  \033[1m/list\033[0m - List rooms waiting for players")
	tuiModel.AddLogEntry("  \033[1m/join <room_id>\033[0m - Join a room")
	tuiModel.AddLogEntry("  \033[1m/addcpu [count]\033[0m - Add CPU players (1-3)")
	tuiModel.AddLogEntry("  \033[1m/start\033[0m - Start the game")
	tuiModel.AddLogEntry("  \033[1m/leave\033[0m - Leave the room")
	tuiModel.AddLogEntry("  \033[1m/quit\033[0m - Quit")
	tuiModel.AddLogEntry("")
	tuiModel.AddLogEntry("On your turn: \033[1mbet <count> <face>\033[0m or \033[1mchallenge\033[0m")
	tuiModel.AddLogEntry("")

	// Start command handler in TUI package
	tui.StartCommandHandler(wsClient, tuiModel)

	// Run TUI
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
