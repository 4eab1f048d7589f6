package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the main configuration structure
type Config struct {
	InputPort  string `json:"inputPort,omitempty"`  // substring match for the MIDI input
	OutputPort string `json:"outputPort,omitempty"` // substring match for the MIDI output
	Channel    int    `json:"channel,omitempty"`    // MIDI send channel, 1-16

	TickRate       int `json:"tickRate,omitempty"`       // control-rate ticks per second
	InternalTempo  int `json:"internalTempo,omitempty"`  // internal clock BPM
	LearnTimeoutMs int `json:"learnTimeoutMs,omitempty"` // silence that ends a capture

	// Optional per-slot CC override; must list one CC number per parameter
	CCMap []int `json:"ccMap,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Channel:        1,
		TickRate:       500,
		InternalTempo:  120,
		LearnTimeoutMs: 1500,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-generative"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
