// Package config provides configuration management for Harvest commands.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/fector/harvest/internal/types"
)

// HarvestConfig holds settings shared by every harvest subcommand.
type HarvestConfig struct {
	DatabaseURL  string
	Strict       bool
	MaxDepth     int
	DefaultLimit int
	LogLevel     string
	LogFormat    string
}

// DefaultHarvestConfig returns configuration with default values.
func DefaultHarvestConfig() *HarvestConfig {
	return &HarvestConfig{
		Strict:       false,
		MaxDepth:     types.DefaultMaxDepth,
		DefaultLimit: types.DefaultQueryLimit,
		LogLevel:     "info",
		LogFormat:    "json",
	}
}

// ParseLogLevel maps a configured level name to its slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (expected debug, info, warn, error)", level)
	}
}

// NewLogger builds the process logger from the configured level and format.
func (c *HarvestConfig) NewLogger() (*slog.Logger, error) {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.LogFormat) {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (expected json, text)", c.LogFormat)
	}
}

// hasCredentials reports whether a database URL embeds a password.
func hasCredentials(dbURL string) bool {
	u, err := url.Parse(dbURL)
	if err != nil || u.User == nil {
		return false
	}
	_, ok := u.User.Password()
	return ok
}
