// Package config handles daemon configuration file management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the daemon configuration
type Config struct {
	// SocketPath overrides the IPC socket location (empty = auto)
	SocketPath string `json:"socketPath,omitempty"`

	// Audio settings
	Audio AudioConfig `json:"audio"`

	// Director settings
	Director DirectorConfig `json:"director"`
}

// AudioConfig contains audio input settings
type AudioConfig struct {
	// SampleRate of the incoming stream (default: 44100)
	SampleRate int `json:"sampleRate"`

	// ChunkSize in milliseconds per analysis tick (default: 100)
	ChunkSizeMs int `json:"chunkSizeMs"`
}

// DirectorConfig contains transition policy settings
type DirectorConfig struct {
	// MinHoldSec - never transition before this many seconds (default: 8)
	MinHoldSec float64 `json:"minHoldSec"`

	// MaxHoldSec - always transition by this many seconds (default: 45)
	MaxHoldSec float64 `json:"maxHoldSec"`

	// BlacklistSec - cooldown on a vacated pattern/palette (default: 30)
	BlacklistSec float64 `json:"blacklistSec"`

	// MorphMs - transition duration in milliseconds (default: 2000)
	MorphMs int `json:"morphMs"`

	// TransitionChance - per-tick random transition probability (default: 0.3)
	TransitionChance float64 `json:"transitionChance"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:  44100,
			ChunkSizeMs: 100,
		},
		Director: DirectorConfig{
			MinHoldSec:       8,
			MaxHoldSec:       45,
			BlacklistSec:     30,
			MorphMs:          2000,
			TransitionChance: 0.3,
		},
	}
}

// Manager handles loading and saving configuration
type Manager struct {
	configDir  string
	configPath string
	config     *Config
}

// NewManager creates a new configuration manager
func NewManager(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configPath: filepath.Join(configDir, "config.json"),
		config:     DefaultConfig(),
	}
}

// Load reads the configuration from disk
func (m *Manager) Load() error {
	// Ensure config directory exists
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if config file exists
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		// Create default config
		m.config = DefaultConfig()
		return m.Save()
	}

	// Read existing config
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	// Parse JSON
	config := DefaultConfig() // Start with defaults
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	m.config = config
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	// Ensure config directory exists
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	return m.config
}

// GetPath returns the config file path
func (m *Manager) GetPath() string {
	return m.configPath
}

// Update updates the configuration and saves it
func (m *Manager) Update(config *Config) error {
	m.config = config
	return m.Save()
}
