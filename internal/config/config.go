package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lepinkainen/feedwatch/pkg/filesystem"
	"github.com/spf13/viper"
)

// Config holds the central application configuration
type Config struct {
	// Server configuration for the HTTP API
	Server struct {
		Addr string `mapstructure:"addr"` // Listen address (e.g., ":8000")
	} `mapstructure:"server"`

	// Database configuration
	Database struct {
		Path string `mapstructure:"path"` // SQLite database file path
	} `mapstructure:"database"`

	// Monitor configuration for the feed polling engine
	Monitor struct {
		DefaultIntervalMinutes int `mapstructure:"default_interval_minutes"` // Fallback poll interval
		FetchTimeoutSeconds    int `mapstructure:"fetch_timeout_seconds"`    // Per-fetch HTTP timeout
		SummaryMaxLength       int `mapstructure:"summary_max_length"`       // Result summary truncation limit
	} `mapstructure:"monitor"`

	// Log configuration
	Log struct {
		Level string `mapstructure:"level"` // debug, info, warn, error
	} `mapstructure:"log"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	// If path is relative, try current directory first, then executable directory
	if !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			if execPath, err := filesystem.GetDefaultPath(path); err == nil {
				if _, err := os.Stat(execPath); err == nil {
					path = execPath
				}
			}
			// If both fail, use original path and let Viper handle the error
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set default values
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("database.path", "feedwatch.db")

	v.SetDefault("monitor.default_interval_minutes", 5)
	v.SetDefault("monitor.fetch_timeout_seconds", 15)
	v.SetDefault("monitor.summary_max_length", 1000)

	v.SetDefault("log.level", "info")

	// Read configuration file
	if err := v.ReadInConfig(); err != nil {
		// If config file doesn't exist, that's okay - we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, path string) error {
	if path == "" {
		path = "config.yaml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server.addr", config.Server.Addr)
	v.Set("database.path", config.Database.Path)

	v.Set("monitor.default_interval_minutes", config.Monitor.DefaultIntervalMinutes)
	v.Set("monitor.fetch_timeout_seconds", config.Monitor.FetchTimeoutSeconds)
	v.Set("monitor.summary_max_length", config.Monitor.SummaryMaxLength)

	v.Set("log.level", config.Log.Level)

	return v.WriteConfig()
}
