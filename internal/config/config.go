package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// DefaultDataFile is the registry file used when nothing else is configured.
const DefaultDataFile = "file.json"

// Environment variables that override the global config file.
const (
	EnvDataFile  = "HBNB_DATA_FILE"
	EnvTypesFile = "HBNB_TYPES_FILE"
	EnvLogLevel  = "HBNB_LOG_LEVEL"
	EnvPrompt    = "HBNB_PROMPT"
)

// DefaultLogLevel keeps the interactive transcript free of diagnostics.
const DefaultLogLevel = "warn"

// Config holds the resolved settings for a session.
type Config struct {
	DataFile  string // Path of the JSON registry file
	TypesFile string // Optional YAML type definitions; empty means built-in types
	LogLevel  string // debug, info, warn or error
	Prompt    string // Empty means the console default
}

// Load resolves configuration: built-in defaults, then the global config
// file, then environment variables. Command-line flags are applied by the
// caller on top of the result.
func Load() (*Config, error) {
	global, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataFile:  DefaultDataFile,
		TypesFile: global.TypesFile,
		LogLevel:  DefaultLogLevel,
		Prompt:    global.Prompt,
	}
	if global.DataFile != "" {
		cfg.DataFile = global.DataFile
	}
	if global.LogLevel != "" {
		cfg.LogLevel = global.LogLevel
	}

	if v := os.Getenv(EnvDataFile); v != "" {
		cfg.DataFile = ExpandPath(v)
	}
	if v := os.Getenv(EnvTypesFile); v != "" {
		cfg.TypesFile = ExpandPath(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvPrompt); v != "" {
		cfg.Prompt = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data file path is empty")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level, falling back to warn.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

// ParseLogLevel converts a level name to a slog.Level.
func ParseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log_level: %s (valid: debug, info, warn, error)", name)
	}
}
