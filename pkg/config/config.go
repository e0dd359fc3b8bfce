package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds settings for `nfts serve`
type ServerConfig struct {
	Port      int    `yaml:"port"`
	CORS      bool   `yaml:"cors"`
	DataDir   string `yaml:"data_dir"`
	CacheSize int    `yaml:"cache_size"`
	Title     string `yaml:"title"`
}

// Config is the on-disk configuration. The credential token is deliberately
// not part of it; it comes from the environment or a flag.
type Config struct {
	Endpoint       string   `yaml:"endpoint"`
	GatewayHost    string   `yaml:"gateway_host"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	MaxRetries     int      `yaml:"max_retries"`
	Authors        []string `yaml:"authors"`
	PropertyType   string   `yaml:"property_type"`

	// Watch Settings
	WatchDebounceMS int  `yaml:"watch_debounce_ms"`
	WatchSkipDupes  bool `yaml:"watch_skip_duplicates"`

	// UI Settings
	ColorTheme string `yaml:"color_theme"`
	LogLevel   string `yaml:"log_level"`

	Server ServerConfig `yaml:"server"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		Endpoint:        "https://api.nft.storage",
		GatewayHost:     "nftstorage.link",
		TimeoutSeconds:  60,
		MaxRetries:      3,
		Authors:         []string{"Team G"},
		PropertyType:    "image",
		WatchDebounceMS: 500,
		WatchSkipDupes:  true,
		ColorTheme:      "auto",
		LogLevel:        "warn",
		Server: ServerConfig{
			Port:      3000,
			CORS:      true,
			DataDir:   "",
			CacheSize: 256,
			Title:     "Team G Final Project",
		},
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills essential values a partial file left empty
func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.Endpoint == "" {
		c.Endpoint = d.Endpoint
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if len(c.Authors) == 0 {
		c.Authors = d.Authors
	}
	if c.PropertyType == "" {
		c.PropertyType = d.PropertyType
	}
	if c.WatchDebounceMS <= 0 {
		c.WatchDebounceMS = d.WatchDebounceMS
	}
	if !isValidLogLevel(c.LogLevel) {
		c.LogLevel = d.LogLevel
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.CacheSize <= 0 {
		c.Server.CacheSize = d.Server.CacheSize
	}
	if c.Server.Title == "" {
		c.Server.Title = d.Server.Title
	}
}

// Timeout returns the request timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// WatchDebounce returns the watch debounce as a duration
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
