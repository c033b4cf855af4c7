// Package main is the entry point for the student portal.
//
// main only loads configuration, builds the logger and the identity
// provider, and hands them to internal/server. Everything else lives in
// the internal packages so it can be tested without a running binary.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sakif/student-portal/internal/auth"
	"github.com/sakif/student-portal/internal/config"
	"github.com/sakif/student-portal/internal/server"
)

func main() {
	// Until the config is read we only know how to log plainly.
	boot := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// === 1. CONFIGURATION ===
	// Defaults, then config.yaml (or CONFIG_PATH), then environment variables.
	cfg, err := config.Load()
	if err != nil {
		boot.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger := newLogger(cfg.Logging)

	if cfg.SecretGenerated {
		logger.Warn("SECRET_KEY not set; using a random secret, sessions will not survive a restart")
	}

	// === 3. DATABASE DIRECTORY ===
	// sqlite creates the file but not its parent directory.
	if cfg.Database.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Database.Path)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. IDENTITY PROVIDER ===
	// One client with a fixed timeout serves discovery, token and userinfo calls.
	google := auth.NewGoogleProvider(auth.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		DiscoveryURL: cfg.Google.DiscoveryURL,
		DiscoveryTTL: cfg.Google.DiscoveryTTL,
		HTTPClient:   &http.Client{Timeout: cfg.Google.Timeout},
	})

	// === 5. SERVER ===
	srv, err := server.New(cfg, logger, google)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger builds a text or JSON slog logger. An unknown level means info.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
