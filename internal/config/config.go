// Package config loads movfx settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration.
type Config struct {
	// HistoryDB is the DSN of the move journal: a file path or libsql URL.
	HistoryDB string
	// Workspace overrides workspace-root discovery when set.
	Workspace string
	// MaxFileBytes caps the size of files considered for rewriting.
	MaxFileBytes int64
	// HistoryLimit is the default number of entries shown by history.
	HistoryLimit int
	// NoGitignore disables .gitignore handling during scans.
	NoGitignore bool
}

// Load reads configuration from a .env file (if present) and the
// environment. Environment variables win over .env entries.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HistoryDB:    os.Getenv("MOVFX_DB"),
		Workspace:    os.Getenv("MOVFX_WORKSPACE"),
		MaxFileBytes: 4 << 20, // default value
		HistoryLimit: 20,      // default value
	}

	if cfg.HistoryDB == "" {
		cfg.HistoryDB = filepath.Join(".movfx", "history.db")
	}

	if v := os.Getenv("MOVFX_MAX_FILE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxFileBytes = n
		}
	}
	if v := os.Getenv("MOVFX_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
	if v := os.Getenv("MOVFX_NO_GITIGNORE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.NoGitignore = b
		}
	}

	return cfg
}
