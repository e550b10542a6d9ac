// Package config loads akashic settings.
//
// Settings come from, in increasing precedence: built-in defaults, a YAML
// file (default ~/.akashic/config.yaml) and AKASHIC_* environment variables.
// Nested keys map to environment names with '.' replaced by '_', so
// report.group_by is AKASHIC_REPORT_GROUP_BY. The merged result is checked
// against an embedded CUE schema before use.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata" // zone lookups work without system tzdata
)

// Config is the full akashic configuration.
type Config struct {
	// Database is the SQLite file path. A leading ~ is expanded.
	Database string `yaml:"database" mapstructure:"database" json:"database"`

	// Timezone is an IANA zone name, or "Local" for the system zone.
	Timezone string `yaml:"timezone" mapstructure:"timezone" json:"timezone"`

	// Format is the default CLI output format: text or json.
	Format string `yaml:"format" mapstructure:"format" json:"format"`

	Report ReportConfig `yaml:"report" mapstructure:"report" json:"report"`
	Log    LogConfig    `yaml:"log" mapstructure:"log" json:"log"`
}

// ReportConfig configures the report command.
type ReportConfig struct {
	// GroupBy is the default grouping: none, day or week.
	GroupBy string `yaml:"group_by" mapstructure:"group_by" json:"group_by"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level" json:"level"`
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LogLevel maps Log.Level to a slog level. Unknown names mean info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
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
