// Package config reads runtime settings from ATELIER_* environment
// variables.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds everything the atelier binary can be told from outside.
type Config struct {
	DataDir          string        `env:"ATELIER_DATA_DIR"          envDefault:".atelier"`
	Backend          string        `env:"ATELIER_STORAGE"           envDefault:"sqlite"`
	DBPath           string        `env:"ATELIER_DB_PATH"`
	StorageQuota     int           `env:"ATELIER_STORAGE_QUOTA"     envDefault:"5242880"`
	ContentDir       string        `env:"ATELIER_CONTENT_DIR"`
	AutoSave         bool          `env:"ATELIER_AUTOSAVE"          envDefault:"true"`
	AutoSaveInterval time.Duration `env:"ATELIER_AUTOSAVE_INTERVAL" envDefault:"60s"`
	Seed             int64         `env:"ATELIER_SEED"`
	LogFile          string        `env:"ATELIER_LOG_FILE"`
	LogLevel         string        `env:"ATELIER_LOG_LEVEL"         envDefault:"info"`
	SavePrefix       string        `env:"ATELIER_SAVE_PREFIX"       envDefault:"atelier_save_"`
}

// ParseEnv populates target from the environment.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}

// Load reads and validates the configuration.
func Load() (Config, error) {
	var c Config
	if err := ParseEnv(&c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks field values that the environment parser cannot.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return errors.Errorf("unknown storage backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendMemory)
	}
	if c.AutoSaveInterval < 0 {
		return errors.Errorf("negative auto-save interval %s", c.AutoSaveInterval)
	}
	if strings.TrimSpace(c.SavePrefix) == "" {
		return errors.New("save prefix must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// DatabasePath is the SQLite file, defaulting to saves.db in the data dir.
func (c Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "saves.db")
}

// LogPath is the log file, defaulting to atelier.log in the data dir.
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "atelier.log")
}
