package main

import (
	rand "math/rand/v2"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/liarsdice/cmd/liarsdice/shared"
	"github.com/lox/liarsdice/internal/randutil"
	"github.com/lox/liarsdice/internal/server"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Config   string `short:"c" default:"liarsdice.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed for the server (optional)"`
}

func (c *ServerCmd) Run() error {
	// Load configuration
	cfg, err := server.LoadFileConfig(c.Config)
	if err != nil {
		return err
	}

	// Apply command line overrides
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel)

	// Setup RNG and seed
	var rng *rand.Rand
	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		logger.Info("Using random seed", "seed", seed)
	}
	rng = randutil.New(seed)

	addr := cfg.ListenAddr()
	if c.Addr != "" {
		addr = c.Addr
	}

	gameConfig := cfg.GameConfig()
	service := server.NewGameService(logger, quartz.NewReal(), gameConfig, rng)
	s := server.NewServer(addr, logger, service, gameConfig)

	logger.Info("Starting Liar's Dice server",
		"address", addr,
		"maxSeats", gameConfig.MaxSeats,
		"cpuDifficulty", gameConfig.CPUDifficulty,
		"roomRetention", gameConfig.RoomRetention)

	// Setup graceful shutdown
	ctx := shared.SetupSignalHandlerWithLogger(logger)
	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	return s.Start()
}
