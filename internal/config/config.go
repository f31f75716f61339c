// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultStateDir = "~/.dayplan"
	DefaultDataFile = "planner.json"
	HistoryDirName  = "history"
)

// Config holds the full configuration for dayplan.
type Config struct {
	// Paths
	StateDir string `toml:"state_dir"`
	DataFile string `toml:"data_file"`

	// Session history log
	History    bool   `toml:"history"`
	HistoryDir string `toml:"history_dir"`
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (TOML)
// 3. Environment variables
// 4. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from config file
	configFile := findConfigFile()
	if configFile != "" {
		if err := loadConfigFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configFile, err)
		}
	}

	// 3. Override from environment
	loadFromEnv(cfg)

	// 4. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 5. Compute derived values
	finalizeConfig(cfg)

	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.StateDir = DefaultStateDir
	cfg.DataFile = DefaultDataFile
	cfg.History = true
	cfg.HistoryDir = "" // Empty means <state_dir>/history
}

// findConfigFile looks for a config file in the current directory, then in
// the default state directory.
func findConfigFile() string {
	names := []string{"dayplan.toml", ".dayplan.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	fallback := filepath.Join(expandPath(DefaultStateDir), "dayplan.toml")
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return ""
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("DAYPLAN_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("DAYPLAN_DATA"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("DAYPLAN_HISTORY"); v != "" {
		cfg.History = boolFromString(v)
	}
	if v := os.Getenv("DAYPLAN_HISTORY_DIR"); v != "" {
		cfg.HistoryDir = v
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// parseFlags defines and parses CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("dayplan", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "State directory")
	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path to planner data file")
	fs.BoolVar(&cfg.History, "history", cfg.History, "Record session history")
	fs.StringVar(&cfg.HistoryDir, "history-dir", cfg.HistoryDir, "Session history directory")

	return fs.Parse(args)
}

// finalizeConfig computes derived values.
func finalizeConfig(cfg *Config) {
	// Expand ~ in paths
	cfg.StateDir = expandPath(cfg.StateDir)
	cfg.DataFile = expandPath(cfg.DataFile)
	cfg.HistoryDir = expandPath(cfg.HistoryDir)

	// Relative paths live inside the state directory
	if !filepath.IsAbs(cfg.DataFile) {
		cfg.DataFile = filepath.Join(cfg.StateDir, cfg.DataFile)
	}
	if cfg.HistoryDir == "" {
		cfg.HistoryDir = filepath.Join(cfg.StateDir, HistoryDirName)
	} else if !filepath.IsAbs(cfg.HistoryDir) {
		cfg.HistoryDir = filepath.Join(cfg.StateDir, cfg.HistoryDir)
	}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	if p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return home
	}
	return p
}
