package main

import (
	"log/slog"
	"os"

	"github.com/anhbaysgalan1/numpoker/internal/config"
	"github.com/anhbaysgalan1/numpoker/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	numpokerServer, err := server.NewNumPokerServer(cfg)
	if err != nil {
		slog.Error("Failed to create numpoker server", "error", err)
		os.Exit(1)
	}

	// Start server (blocks until shutdown)
	if err := numpokerServer.Start(); err != nil {
		slog.Error("Numpoker server stopped", "error", err)
		os.Exit(1)
	}
}
