// internal/config/config.go
//
// This package handles configuration and the .patchmind directory
// structure. Every directory patchmind runs in gets a .patchmind/ folder
// holding logs, rack inventories, rule packs, and saved patches.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// PatchmindDir is the name of the directory created per project.
	PatchmindDir = ".patchmind"
)

const defaultConfigYAML = `# patchmind configuration
version: 1

# How confident the parser must be before the engine acts instead of asking
# a clarifying question.
clarify_threshold: 0.5

# Scaling factors for vague directional requests ("darker", "more reverb").
multipliers:
  decrease: 0.7
  increase: 1.3

# How many patch snapshots each conversation keeps for undo.
history_capacity: 5

# Default rack inventory, relative to .patchmind/racks/. Leave empty to use
# the built-in starter rack.
rack: ""

# Directory of phrasing rule packs (*.yaml and *.go), relative to
# .patchmind/. Missing directory means no extra rules.
rules_dir: rules
`

// Multipliers holds the vague-adjustment scaling factors.
type Multipliers struct {
	Decrease float64 `yaml:"decrease"`
	Increase float64 `yaml:"increase"`
}

// Settings models .patchmind/config.yaml.
type Settings struct {
	Version          int         `yaml:"version"`
	ClarifyThreshold float64     `yaml:"clarify_threshold"`
	Multipliers      Multipliers `yaml:"multipliers"`
	HistoryCapacity  int         `yaml:"history_capacity"`
	Rack             string      `yaml:"rack,omitempty"`
	RulesDir         string      `yaml:"rules_dir,omitempty"`
}

// Config holds the runtime configuration for patchmind.
type Config struct {
	// ProjectDir is the directory the user ran patchmind from.
	ProjectDir string

	// PatchmindProjectDir is ProjectDir/.patchmind.
	PatchmindProjectDir string

	Settings Settings
}

// InitPatchmindDir creates the .patchmind directory structure. Called once
// on startup before the TUI takes over the terminal.
//
// Structure created:
// .patchmind/
// ├── logs/     <- engine and session logs
// ├── racks/    <- rack inventory exports (scraper/vision output)
// ├── rules/    <- phrasing rule packs
// └── patches/  <- saved patches
func InitPatchmindDir(projectDir string) error {
	root := filepath.Join(projectDir, PatchmindDir)
	dirs := []string{
		filepath.Join(root, "logs"),
		filepath.Join(root, "racks"),
		filepath.Join(root, "rules"),
		filepath.Join(root, "patches"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureConfigFile(filepath.Join(root, "config.yaml"))
}

// NewConfig loads settings for the given project directory, falling back to
// defaults when no config file exists yet.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:          projectDir,
		PatchmindProjectDir: filepath.Join(projectDir, PatchmindDir),
		Settings:            defaultSettings(),
	}
	if err := cfg.loadSettings(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.PatchmindProjectDir, "logs")
}

// RacksDir returns the path to the rack inventory directory.
func (c *Config) RacksDir() string {
	return filepath.Join(c.PatchmindProjectDir, "racks")
}

// RulesDir returns the resolved rule-pack directory.
func (c *Config) RulesDir() string {
	dir := strings.TrimSpace(c.Settings.RulesDir)
	if dir == "" {
		dir = "rules"
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(c.PatchmindProjectDir, dir)
}

// PatchesDir returns where saved patches are written.
func (c *Config) PatchesDir() string {
	return filepath.Join(c.PatchmindProjectDir, "patches")
}

// ConfigPath returns the on-disk location for the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.PatchmindProjectDir, "config.yaml")
}

// RackPath resolves the configured rack inventory file; ok is false when no
// rack is configured and the built-in demo rack should be used.
func (c *Config) RackPath() (string, bool) {
	name := strings.TrimSpace(c.Settings.Rack)
	if name == "" {
		return "", false
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name), true
	}
	return filepath.Join(c.RacksDir(), name), true
}

func (c *Config) loadSettings() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed Settings
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Settings = parsed
	return nil
}

func defaultSettings() Settings {
	return Settings{
		Version:          1,
		ClarifyThreshold: 0.5,
		Multipliers:      Multipliers{Decrease: 0.7, Increase: 1.3},
		HistoryCapacity:  5,
		RulesDir:         "rules",
	}
}

func (s *Settings) applyDefaults() {
	if s.Version == 0 {
		s.Version = 1
	}
	if s.ClarifyThreshold == 0 {
		s.ClarifyThreshold = 0.5
	}
	if s.Multipliers.Decrease == 0 {
		s.Multipliers.Decrease = 0.7
	}
	if s.Multipliers.Increase == 0 {
		s.Multipliers.Increase = 1.3
	}
	if s.HistoryCapacity == 0 {
		s.HistoryCapacity = 5
	}
	if strings.TrimSpace(s.RulesDir) == "" {
		s.RulesDir = "rules"
	}
}

func (s Settings) validate() error {
	if s.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	if s.ClarifyThreshold < 0 || s.ClarifyThreshold > 1 {
		return fmt.Errorf("clarify_threshold must be between 0 and 1")
	}
	if s.Multipliers.Decrease <= 0 || s.Multipliers.Decrease >= 1 {
		return fmt.Errorf("multipliers.decrease must be between 0 and 1 exclusive")
	}
	if s.Multipliers.Increase <= 1 {
		return fmt.Errorf("multipliers.increase must be greater than 1")
	}
	if s.HistoryCapacity < 1 {
		return fmt.Errorf("history_capacity must be >= 1")
	}
	return nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
