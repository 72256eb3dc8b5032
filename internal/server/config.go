package server

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokerroom/internal/game"
)

// Config is the complete server configuration
type Config struct {
	Server  ServerSettings  `hcl:"server,block"`
	Game    GameSettings    `hcl:"game,block"`
	History HistorySettings `hcl:"history,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains table stakes and timing
type GameSettings struct {
	StartingChips      int `hcl:"starting_chips,optional"`
	SmallBlind         int `hcl:"small_blind,optional"`
	BigBlind           int `hcl:"big_blind,optional"`
	TurnTimeoutSeconds int `hcl:"turn_timeout_seconds,optional"`
}

// HistorySettings configures hand-history persistence
type HistorySettings struct {
	Path     string `hcl:"path,optional"`
	Disabled bool   `hcl:"disabled,optional"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     5000,
			LogLevel: "info",
		},
		Game: GameSettings{
			StartingChips:      50,
			SmallBlind:         1,
			BigBlind:           2,
			TurnTimeoutSeconds: 20,
		},
		History: HistorySettings{
			Path: "pokerroom.db",
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.StartingChips == 0 {
		config.Game.StartingChips = defaults.Game.StartingChips
	}
	if config.Game.SmallBlind == 0 {
		config.Game.SmallBlind = defaults.Game.SmallBlind
	}
	if config.Game.BigBlind == 0 {
		config.Game.BigBlind = defaults.Game.BigBlind
	}
	if config.Game.TurnTimeoutSeconds == 0 {
		config.Game.TurnTimeoutSeconds = defaults.Game.TurnTimeoutSeconds
	}
	if config.History.Path == "" {
		config.History.Path = defaults.History.Path
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.StartingChips <= 0 {
		return fmt.Errorf("starting chips must be positive")
	}
	if c.Game.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if c.Game.BigBlind <= c.Game.SmallBlind {
		return fmt.Errorf("big blind must be greater than small blind")
	}
	if c.Game.TurnTimeoutSeconds <= 0 {
		return fmt.Errorf("turn timeout must be positive")
	}
	return nil
}

// ApplyAddressOverride applies a command line listen address, given as
// either "host" or "host:port".
func (c *Config) ApplyAddressOverride(addr string) {
	if addr == "" {
		return
	}
	if host, port, err := net.SplitHostPort(addr); err == nil {
		c.Server.Address = host
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
		return
	}
	c.Server.Address = addr
}

// GetServerAddress returns the full listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameSettings converts the config into room settings
func (c *Config) GameSettings() game.Settings {
	return game.Settings{
		StartingChips: c.Game.StartingChips,
		SmallBlind:    c.Game.SmallBlind,
		BigBlind:      c.Game.BigBlind,
		TurnTimeout:   time.Duration(c.Game.TurnTimeoutSeconds) * time.Second,
	}
}
