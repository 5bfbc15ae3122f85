// ABOUTME: Entry point for lumen-listen
// ABOUTME: Maintains a supervised gateway session and logs the event stream

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/lumenchat/gateway/internal/config"
	"github.com/lumenchat/gateway/internal/journal"
	"github.com/lumenchat/gateway/internal/session"
)

const banner = `
 _
| |_   _ _ __ ___   ___ _ __
| | | | | '_ ' _ \ / _ \ '_ \
| | |_| | | | | | |  __/ | | |
|_|\__,_|_| |_| |_|\___|_| |_|  listen
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	configPath := config.DefaultPath()

	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging.Level)

	// Print startup info
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	if cfg.Gateway.URL != "" {
		fmt.Printf("Gateway:  %s (pinned)\n", cfg.Gateway.URL)
	} else {
		fmt.Printf("API base: %s\n", cfg.Gateway.APIBase)
	}
	if cfg.Journal.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Journal:  %s\n", cfg.Journal.Path)
	}
	fmt.Println()

	// Graceful shutdown context - all operations respect it
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := session.New(cfg, logger)

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path, logger)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer j.Close()
		client.SetJournal(j)
	}

	// Each attempt gets a fresh session and event queue; consume per attempt.
	client.OnSession(func(s *session.Session) {
		go consumeEvents(s, logger)
	})

	logger.Info("starting gateway client")
	return client.Run(ctx)
}

// consumeEvents drains one session's event queue until its processor stops.
func consumeEvents(s *session.Session, logger *slog.Logger) {
	log := logger.With("component", "consumer", "attempt", s.AttemptID)
	count := 0
	for evt := range s.Events() {
		count++
		log.Debug("event received", "event", evt.Name)
	}
	log.Info("event stream ended", "events", count)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
