// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr      string
	DBPath          string
	GenerateDir     string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. A .env file in the working directory is read first; values already
// in the process environment win. All variables are optional:
// SHERPA_LISTEN_ADDR (127.0.0.1:8080), SHERPA_DB_PATH (sherpa.db),
// SHERPA_GENERATE_DIR (.), SHERPA_SHUTDOWN_TIMEOUT (10s).
func Load() (*Config, error) {
	// godotenv never overrides existing env vars; a missing .env is fine.
	_ = godotenv.Load()

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("SHERPA_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	dbPath := "sherpa.db"
	if v, ok := os.LookupEnv("SHERPA_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	generateDir := "."
	if v, ok := os.LookupEnv("SHERPA_GENERATE_DIR"); ok && v != "" {
		generateDir = v
	}

	shutdownTimeout := 10 * time.Second
	if v, ok := os.LookupEnv("SHERPA_SHUTDOWN_TIMEOUT"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SHERPA_SHUTDOWN_TIMEOUT has invalid duration %q: %w", v, err)
		}
		shutdownTimeout = parsed
	}

	return &Config{
		ListenAddr:      listenAddr,
		DBPath:          dbPath,
		GenerateDir:     generateDir,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}
