package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if os.Getenv("REPART_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	Execute()
}
