// Package config loads and validates the digest configuration file. The
// file is YAML; string values support ${VAR_NAME} environment variable
// interpolation.
package config

import (
	"io"
	"log/slog"
)

// Config is the root configuration for the digest library.
type Config struct {
	Schemas    SchemasConfig    `mapstructure:"schemas" yaml:"schemas"`
	Ingest     IngestConfig     `mapstructure:"ingest" yaml:"ingest"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// SchemasConfig controls where schema flavors are loaded from.
type SchemasConfig struct {
	// Dir is an optional directory of additional <flavor>.json schema
	// definitions registered next to the builtin flavors.
	Dir string `mapstructure:"dir" yaml:"dir,omitempty"`
}

// IngestConfig bounds the size of accepted tables. A zero limit means
// unlimited.
type IngestConfig struct {
	MaxRows    int `mapstructure:"max_rows" yaml:"max_rows" validate:"min=0"`
	MaxColumns int `mapstructure:"max_columns" yaml:"max_columns" validate:"min=0"`
}

// ValidationConfig contains validation behavior settings.
type ValidationConfig struct {
	// UnrecognizedColumns is the policy for headers no schema column
	// matches: "ignore", "warn" or "reject".
	UnrecognizedColumns string `mapstructure:"unrecognized_columns" yaml:"unrecognized_columns" validate:"omitempty,oneof=ignore warn reject"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

// NewLogger builds a logger honoring the configured level and format.
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.slogLevel()}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func (c LoggingConfig) slogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
