package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerroom/internal/history"
	"github.com/lox/pokerroom/internal/server"
)

var CLI struct {
	Config    string `short:"c" long:"config" default:"pokerroom.hcl" help:"Path to HCL configuration file"`
	Addr      string `short:"a" long:"addr" help:"Listen address, host or host:port (overrides config)"`
	LogLevel  string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	NoHistory bool   `long:"no-history" help:"Disable hand-history persistence"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	cfg.ApplyAddressOverride(CLI.Addr)
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.NoHistory {
		cfg.History.Disabled = true
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	var store *history.Store
	if !cfg.History.Disabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			logger.Error("Failed to open hand history database", "path", cfg.History.Path, "error", err)
			ctx.Exit(1)
		}
		defer func() { _ = store.Close() }()
		logger.Info("Hand history enabled", "path", cfg.History.Path)
	}

	logger.Info("Starting poker room server",
		"addr", cfg.GetServerAddress(),
		"startingChips", cfg.Game.StartingChips,
		"blinds", fmt.Sprintf("%d/%d", cfg.Game.SmallBlind, cfg.Game.BigBlind),
		"turnTimeout", fmt.Sprintf("%ds", cfg.Game.TurnTimeoutSeconds))

	wsServer := server.NewServer(cfg.GetServerAddress(), logger)
	rooms := server.NewRoomService(cfg.GameSettings(), quartz.NewReal(), wsServer, store, logger)
	wsServer.SetRoomService(rooms)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Shutting down server...")
		_ = wsServer.Stop()
		if store != nil {
			_ = store.Close()
		}
		os.Exit(0)
	}()

	if err := wsServer.Start(); err != nil {
		logger.Error("Server failed", "error", err)
		ctx.Exit(1)
	}
}
