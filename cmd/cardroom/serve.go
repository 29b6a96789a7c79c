package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/cardroom/internal/server"
)

// ServeCmd runs the WebSocket table host
type ServeCmd struct {
	Config   string `short:"c" default:"cardroom.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic dealer seed (optional)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}

	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(cfg.Server.LogLevel)

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	dealer := server.NewRandomDealer(seed)

	wsServer := server.NewServer(cfg.GetServerAddress(), logger)
	tables, err := server.NewTableService(wsServer, logger, quartz.NewReal(), cfg, dealer.Oracle(), dealer)
	if err != nil {
		return err
	}
	wsServer.SetTableService(tables)

	logger.Info("Starting cardroom server",
		"addr", cfg.GetServerAddress(),
		"tables", len(cfg.Tables),
		"actionTimeout", cfg.Server.ActionTimeoutSeconds,
		"seed", seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- wsServer.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		return wsServer.Stop()
	case err := <-serverErr:
		return err
	}
}

func setupLogger(level string) *log.Logger {
	logger := log.New(os.Stderr)
	switch level {
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
	return logger
}
