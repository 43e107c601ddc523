package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"lluview/internal/cache"
	"lluview/internal/config"
	"lluview/internal/llu"
	"lluview/internal/logging"
	"lluview/internal/ui"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		log.Fatalf("creating cache dir: %v", err)
	}

	// stdout belongs to the terminal renderer, so logs go to a file.
	logger, logFile, err := logging.NewFile(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()

	db, err := cache.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening cache: %v", err)
	}
	defer db.Close()

	client := buildClient(cfg, db, logger)

	app := ui.NewApp(cfg, client, db, logger)
	p := tea.NewProgram(app, tea.WithAltScreen())
	app.SetProgram(p)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildClient returns a session primed from the persisted ticket when it
// is still valid, otherwise a fresh client from environment credentials,
// otherwise nil so the login form takes over.
func buildClient(cfg config.Config, db *cache.DB, logger zerolog.Logger) *llu.Client {
	clientCfg := llu.Config{
		BaseURL: cfg.BaseURL,
		Region:  cfg.Region,
		Version: cfg.Version,
		Product: cfg.Product,
		Timeout: cfg.Timeout,
	}

	saved, err := db.GetSession()
	if err != nil {
		logger.Warn().Err(err).Msg("reading persisted session failed")
	}
	if saved != nil && saved.Valid() {
		client := llu.NewClient(cfg.Email, cfg.Password, clientCfg, logger)
		client.RestoreSession(saved.Ticket, saved.BaseURL)
		logger.Info().Str("base_url", saved.BaseURL).Msg("restored persisted session")
		return client
	}
	if saved != nil {
		db.ClearSession()
	}

	if cfg.HasCredentials() {
		return llu.NewClient(cfg.Email, cfg.Password, clientCfg, logger)
	}
	return nil
}
