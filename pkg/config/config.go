// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

// Package config loads and persists the indicator configuration from the
// XDG config directory, with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	appName    = "twitch-indicator"
	configFile = "config.yaml"

	dirPerm  = 0o700
	filePerm = 0o600
)

// Config is the persisted application configuration.
type Config struct {
	Twitch        TwitchConfig       `yaml:"twitch"`
	Notifications NotificationConfig `yaml:"notifications"`
	General       GeneralConfig      `yaml:"general"`
	StreamOpen    StreamOpenConfig   `yaml:"stream_open"`

	// Storage paths, auto-populated from XDG.
	DataDir   string `yaml:"-"`
	ConfigDir string `yaml:"-"`
}

// TwitchConfig holds the OAuth client settings and poll cadence.
type TwitchConfig struct {
	ClientID               string   `yaml:"client_id"`
	RedirectPort           int      `yaml:"redirect_port"`
	Scopes                 []string `yaml:"scopes"`
	RefreshIntervalMinutes uint     `yaml:"refresh_interval_minutes"`
}

// NotificationConfig controls what the notification collaborator shows.
type NotificationConfig struct {
	Enabled         bool   `yaml:"enabled"`
	ShowGame        bool   `yaml:"show_game"`
	ShowViewerCount bool   `yaml:"show_viewer_count"`
	TimeoutMs       uint32 `yaml:"timeout_ms"`
}

// GeneralConfig holds desktop-integration settings consumed by the tray
// collaborator.
type GeneralConfig struct {
	Autostart      bool `yaml:"autostart"`
	MinimizeToTray bool `yaml:"minimize_to_tray"`
}

// StreamOpenConfig selects how stream URLs are opened: empty program means
// the default browser.
type StreamOpenConfig struct {
	Program        string   `yaml:"program,omitempty"`
	Arguments      []string `yaml:"arguments,omitempty"`
	ExtraCommand   string   `yaml:"extra_command,omitempty"`
	ExtraArguments []string `yaml:"extra_arguments,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Twitch: TwitchConfig{
			ClientID:               "pdnu3rmmjndvi58vd5f19l5rxqvu6c",
			RedirectPort:           17563,
			Scopes:                 []string{"user:read:follows"},
			RefreshIntervalMinutes: 2,
		},
		Notifications: NotificationConfig{
			Enabled:         true,
			ShowGame:        true,
			ShowViewerCount: true,
			TimeoutMs:       5000,
		},
		General: GeneralConfig{
			Autostart:      false,
			MinimizeToTray: true,
		},
		DataDir:   filepath.Join(xdg.DataHome, appName),
		ConfigDir: filepath.Join(xdg.ConfigHome, appName),
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads config from the default XDG location, creating
// the default configuration if none exists yet.
func LoadWithDefaults() (*Config, error) {
	configPath := filepath.Join(xdg.ConfigHome, appName, configFile)

	cfg, err := Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = Default()
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
	}

	cfg.ApplyEnvVars()
	return cfg, nil
}

// Save writes the configuration back to its XDG location.
func (c *Config) Save() error {
	if c.ConfigDir == "" {
		c.ConfigDir = filepath.Join(xdg.ConfigHome, appName)
	}
	if err := os.MkdirAll(c.ConfigDir, dirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}

	path := filepath.Join(c.ConfigDir, configFile)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// ApplyEnvVars applies environment variable overrides.
func (c *Config) ApplyEnvVars() {
	if v := os.Getenv("TWITCH_INDICATOR_CLIENT_ID"); v != "" {
		c.Twitch.ClientID = v
	}
	if v := os.Getenv("TWITCH_INDICATOR_REDIRECT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Twitch.RedirectPort = port
		}
	}
	if v := os.Getenv("TWITCH_INDICATOR_SCOPES"); v != "" {
		scopes := strings.Split(v, ",")
		for i, s := range scopes {
			scopes[i] = strings.TrimSpace(s)
		}
		c.Twitch.Scopes = scopes
	}
	if v := os.Getenv("TWITCH_INDICATOR_REFRESH_MINUTES"); v != "" {
		if minutes, err := strconv.ParseUint(v, 10, 32); err == nil && minutes > 0 {
			c.Twitch.RefreshIntervalMinutes = uint(minutes)
		}
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Twitch.ClientID == "" {
		return fmt.Errorf("client ID is required (set twitch.client_id or TWITCH_INDICATOR_CLIENT_ID)")
	}
	if c.Twitch.RedirectPort <= 0 || c.Twitch.RedirectPort > 65535 {
		return fmt.Errorf("redirect port %d is out of range", c.Twitch.RedirectPort)
	}
	if c.Twitch.RefreshIntervalMinutes == 0 {
		return fmt.Errorf("refresh interval must be at least one minute")
	}
	return nil
}
