package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"cmdsense/internal/appdirs"
)

// AdvisorConfig carries the tunables of the learning engine. Every constant
// the classifier, confidence model, and pruner depend on is injected from
// here rather than read from package-level globals.
type AdvisorConfig struct {
	DecayHalfLifeSeconds int64   `toml:"decay_half_life_seconds" json:"decay_half_life_seconds"`
	MinConfidence        float64 `toml:"min_confidence" json:"min_confidence"`
	PruneIntervalSeconds int64   `toml:"prune_interval_seconds" json:"prune_interval_seconds"`
	SimilarityThreshold  float64 `toml:"similarity_threshold" json:"similarity_threshold"`
	HistoryLimit         int     `toml:"history_limit" json:"history_limit"`
}

type SafetyConfig struct {
	DangerPatterns []string `toml:"danger_patterns" json:"danger_patterns"`
	CriticalPaths  []string `toml:"critical_paths" json:"critical_paths"`
	RedactSecrets  bool     `toml:"redact_secrets" json:"redact_secrets"`
}

type CommandsConfig struct {
	// Common names that are valid even when they do not resolve on PATH
	// (shell builtins, aliases everyone has).
	Common []string `toml:"common" json:"common"`
}

type UIConfig struct {
	Backend string `toml:"backend" json:"backend"`
}

type Config struct {
	Version  int            `toml:"version" json:"version"`
	Advisor  AdvisorConfig  `toml:"advisor" json:"advisor"`
	Safety   SafetyConfig   `toml:"safety" json:"safety"`
	Commands CommandsConfig `toml:"commands" json:"commands"`
	UI       UIConfig       `toml:"ui" json:"ui"`
}

func Default() Config {
	return Config{
		Version: 1,
		Advisor: AdvisorConfig{
			DecayHalfLifeSeconds: 7 * 24 * 60 * 60,
			MinConfidence:        0.4,
			PruneIntervalSeconds: 24 * 60 * 60,
			SimilarityThreshold:  0.75,
			HistoryLimit:         50,
		},
		Safety: SafetyConfig{
			DangerPatterns: []string{
				"rm -rf /",
				"dd if=",
				"mkfs",
				":(){ :|:& };:",
			},
			CriticalPaths: []string{
				"/", "/boot", "/etc", "/usr", "/bin", "/sbin",
			},
			RedactSecrets: true,
		},
		Commands: CommandsConfig{
			Common: []string{
				"cd", "ls", "pwd", "echo", "cat", "cp", "mv", "mkdir",
				"touch", "grep", "find", "source", "export", "alias",
				"history", "clear", "man", "which", "type", "sudo",
				"vim", "nano", "git", "ssh", "top", "ps", "kill",
			},
		},
		UI: UIConfig{
			Backend: "auto",
		},
	}
}

func LoadOrCreate() (Config, string, error) {
	path, err := appdirs.ConfigFilePath()
	if err != nil {
		return Config{}, "", err
	}

	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if _, err := appdirs.EnsureBaseDir(); err != nil {
			return Config{}, "", err
		}
		if err := Save(path, cfg); err != nil {
			return Config{}, "", err
		}
		return cfg, path, nil
	}
	if err != nil {
		return Config{}, "", fmt.Errorf("could not stat config path: %w", err)
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, "", fmt.Errorf("could not read config file: %w", err)
	}
	if err := toml.Unmarshal(bytes, &cfg); err != nil {
		return Config{}, "", fmt.Errorf("could not parse config file: %w", err)
	}
	cfg.normalize()
	return cfg, path, nil
}

func Save(path string, cfg Config) error {
	cfg.normalize()
	payload, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}
	if _, err := appdirs.EnsureBaseDir(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".cmdsense-config-*.toml")
	if err != nil {
		return fmt.Errorf("could not create temp config file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}

	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp config file: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure temp config file permissions: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp config file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("could not atomically replace config file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("could not secure config file permissions: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()
	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Advisor.DecayHalfLifeSeconds <= 0 {
		c.Advisor.DecayHalfLifeSeconds = defaults.Advisor.DecayHalfLifeSeconds
	}
	if c.Advisor.MinConfidence <= 0 || c.Advisor.MinConfidence > 1 {
		c.Advisor.MinConfidence = defaults.Advisor.MinConfidence
	}
	if c.Advisor.PruneIntervalSeconds <= 0 {
		c.Advisor.PruneIntervalSeconds = defaults.Advisor.PruneIntervalSeconds
	}
	if c.Advisor.SimilarityThreshold <= 0 || c.Advisor.SimilarityThreshold >= 1 {
		c.Advisor.SimilarityThreshold = defaults.Advisor.SimilarityThreshold
	}
	if c.Advisor.HistoryLimit <= 0 {
		c.Advisor.HistoryLimit = defaults.Advisor.HistoryLimit
	}
	if len(c.Safety.DangerPatterns) == 0 {
		c.Safety.DangerPatterns = append([]string(nil), defaults.Safety.DangerPatterns...)
	}
	if len(c.Safety.CriticalPaths) == 0 {
		c.Safety.CriticalPaths = append([]string(nil), defaults.Safety.CriticalPaths...)
	}
	if len(c.Commands.Common) == 0 {
		c.Commands.Common = append([]string(nil), defaults.Commands.Common...)
	}
	c.UI.Backend = normalizeUIBackend(c.UI.Backend, defaults.UI.Backend)
}

func normalizeUIBackend(value string, fallback string) string {
	switch value {
	case "auto", "bubbletea", "huh", "tview", "plain":
		return value
	default:
		return fallback
	}
}
