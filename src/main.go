package main

import (
	"log"
	"log/slog"
	"os"

	"condominium-service/logger"
	"condominium-service/src/config"
	"condominium-service/src/server"
)

// @title Condominium Service API
// @version 1.0
// @description Residential condominium management platform: residents, vehicles, visits, LPR events and the digital concierge.

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.GetLogLevel())
	logger.Init(cfg.GetLogLevel())

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := srv.Run(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) {
	slogLevel := slog.LevelInfo
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	}

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel,
	}))
	slog.SetDefault(slogger)
}
