package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/liarsdice/internal/game"
)

// Config holds the runtime tunables for the game service. All timings are
// config, not business logic.
type Config struct {
	MaxSeats      int
	MaxCPUsPerAdd int
	CPUDifficulty game.Difficulty

	CPUThinkDelay         time.Duration
	ChallengeDisplayDelay time.Duration
	CoalesceWindow        time.Duration
	HeartbeatInterval     time.Duration
	RoomRetention         time.Duration
	SweepInterval         time.Duration
}

// DefaultConfig returns the stock game settings.
func DefaultConfig() Config {
	return Config{
		MaxSeats:              6,
		MaxCPUsPerAdd:         3,
		CPUDifficulty:         game.Medium,
		CPUThinkDelay:         1200 * time.Millisecond,
		ChallengeDisplayDelay: 2 * time.Second,
		CoalesceWindow:        50 * time.Millisecond,
		HeartbeatInterval:     10 * time.Second,
		RoomRetention:         24 * time.Hour,
		SweepInterval:         10 * time.Minute,
	}
}

// FileConfig is the HCL server configuration file.
type FileConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains the game tunables as they appear in the config file.
type GameSettings struct {
	MaxSeats             int    `hcl:"max_seats,optional"`
	MaxCPUsPerAdd        int    `hcl:"max_cpus_per_add,optional"`
	CPUDifficulty        string `hcl:"cpu_difficulty,optional"`
	CPUThinkDelayMs      int    `hcl:"cpu_think_delay_ms,optional"`
	ChallengeDisplayMs   int    `hcl:"challenge_display_ms,optional"`
	CoalesceWindowMs     int    `hcl:"coalesce_window_ms,optional"`
	HeartbeatIntervalMs  int    `hcl:"heartbeat_interval_ms,optional"`
	RoomRetentionHours   int    `hcl:"room_retention_hours,optional"`
	SweepIntervalMinutes int    `hcl:"sweep_interval_minutes,optional"`
}

// DefaultFileConfig returns default server configuration
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			MaxSeats:             6,
			MaxCPUsPerAdd:        3,
			CPUDifficulty:        "medium",
			CPUThinkDelayMs:      1200,
			ChallengeDisplayMs:   2000,
			CoalesceWindowMs:     50,
			HeartbeatIntervalMs:  10000,
			RoomRetentionHours:   24,
			SweepIntervalMinutes: 10,
		},
	}
}

// LoadFileConfig loads server configuration from an HCL file, falling back to
// defaults when the file does not exist.
func LoadFileConfig(filename string) (*FileConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultFileConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config FileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	defaults := DefaultFileConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.MaxSeats == 0 {
		config.Game.MaxSeats = defaults.Game.MaxSeats
	}
	if config.Game.MaxCPUsPerAdd == 0 {
		config.Game.MaxCPUsPerAdd = defaults.Game.MaxCPUsPerAdd
	}
	if config.Game.CPUDifficulty == "" {
		config.Game.CPUDifficulty = defaults.Game.CPUDifficulty
	}
	if config.Game.CPUThinkDelayMs == 0 {
		config.Game.CPUThinkDelayMs = defaults.Game.CPUThinkDelayMs
	}
	if config.Game.ChallengeDisplayMs == 0 {
		config.Game.ChallengeDisplayMs = defaults.Game.ChallengeDisplayMs
	}
	if config.Game.CoalesceWindowMs == 0 {
		config.Game.CoalesceWindowMs = defaults.Game.CoalesceWindowMs
	}
	if config.Game.HeartbeatIntervalMs == 0 {
		config.Game.HeartbeatIntervalMs = defaults.Game.HeartbeatIntervalMs
	}
	if config.Game.RoomRetentionHours == 0 {
		config.Game.RoomRetentionHours = defaults.Game.RoomRetentionHours
	}
	if config.Game.SweepIntervalMinutes == 0 {
		config.Game.SweepIntervalMinutes = defaults.Game.SweepIntervalMinutes
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *FileConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.MaxSeats < 2 {
		return fmt.Errorf("max_seats must be at least 2, got %d", c.Game.MaxSeats)
	}
	if c.Game.MaxCPUsPerAdd < 1 {
		return fmt.Errorf("max_cpus_per_add must be at least 1, got %d", c.Game.MaxCPUsPerAdd)
	}
	switch c.Game.CPUDifficulty {
	case "easy", "medium", "hard":
	default:
		return fmt.Errorf("invalid cpu_difficulty: %s", c.Game.CPUDifficulty)
	}
	return nil
}

// ListenAddr returns the full listen address.
func (c *FileConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameConfig converts the file settings into the runtime Config.
func (c *FileConfig) GameConfig() Config {
	return Config{
		MaxSeats:              c.Game.MaxSeats,
		MaxCPUsPerAdd:         c.Game.MaxCPUsPerAdd,
		CPUDifficulty:         game.ParseDifficulty(c.Game.CPUDifficulty),
		CPUThinkDelay:         time.Duration(c.Game.CPUThinkDelayMs) * time.Millisecond,
		ChallengeDisplayDelay: time.Duration(c.Game.ChallengeDisplayMs) * time.Millisecond,
		CoalesceWindow:        time.Duration(c.Game.CoalesceWindowMs) * time.Millisecond,
		HeartbeatInterval:     time.Duration(c.Game.HeartbeatIntervalMs) * time.Millisecond,
		RoomRetention:         time.Duration(c.Game.RoomRetentionHours) * time.Hour,
		SweepInterval:         time.Duration(c.Game.SweepIntervalMinutes) * time.Minute,
	}
}
