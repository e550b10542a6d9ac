package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultDir is the per-user akashic directory, relative to the home dir.
const DefaultDir = ".akashic"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: "~/" + DefaultDir + "/akashic_log.db",
		Timezone: "Local",
		Format:   "text",
		Report: ReportConfig{
			GroupBy: "none",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

const defaultHeader = `# akashic configuration
#
# Every key can be overridden with an AKASHIC_ environment variable,
# e.g. AKASHIC_DATABASE or AKASHIC_REPORT_GROUP_BY.
`

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is left untouched and reported as an error.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, append([]byte(defaultHeader), data...), 0o644)
}

// DefaultPath returns ~/.akashic/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, DefaultDir, "config.yaml"), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !hasHomePrefix(path) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, path[1:]), nil
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && os.IsPathSeparator(path[1])
}
