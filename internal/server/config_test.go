package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsdice/internal/game"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "liarsdice.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFileConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFileConfig("/nonexistent/liarsdice.hcl")
	require.NoError(t, err)
	assert.Equal(t, DefaultFileConfig(), cfg)
	assert.Equal(t, "localhost:8080", cfg.ListenAddr())
}

func TestLoadFileConfigPartialFileFillsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server {
  port = 9090
}

game {
  cpu_difficulty   = "hard"
  coalesce_window_ms = 25
}
`)

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost:9090", cfg.ListenAddr())
	assert.Equal(t, "info", cfg.Server.LogLevel)

	gc := cfg.GameConfig()
	assert.Equal(t, game.Hard, gc.CPUDifficulty)
	assert.Equal(t, 25*time.Millisecond, gc.CoalesceWindow)
	// Untouched fields come from the defaults.
	assert.Equal(t, 6, gc.MaxSeats)
	assert.Equal(t, 1200*time.Millisecond, gc.CPUThinkDelay)
	assert.Equal(t, 24*time.Hour, gc.RoomRetention)
}

func TestLoadFileConfigInvalidHCL(t *testing.T) {
	path := writeConfigFile(t, `server { port = `)

	_, err := LoadFileConfig(path)
	assert.Error(t, err)
}

func TestFileConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*FileConfig)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*FileConfig) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *FileConfig) { c.Server.Port = 70000 },
			wantErr: "invalid port",
		},
		{
			name:    "max_seats too small",
			mutate:  func(c *FileConfig) { c.Game.MaxSeats = 1 },
			wantErr: "max_seats",
		},
		{
			name:    "max_cpus_per_add too small",
			mutate:  func(c *FileConfig) { c.Game.MaxCPUsPerAdd = 0 },
			wantErr: "max_cpus_per_add",
		},
		{
			name:    "unknown difficulty",
			mutate:  func(c *FileConfig) { c.Game.CPUDifficulty = "brutal" },
			wantErr: "invalid cpu_difficulty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFileConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGameConfigConversion(t *testing.T) {
	cfg := DefaultFileConfig().GameConfig()
	assert.Equal(t, DefaultConfig(), cfg)
}
