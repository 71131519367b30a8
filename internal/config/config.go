// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the CLI and its background
// services. It maps directly to the structure of config.yml.
type Config struct {
	APIBaseURL           string `mapstructure:"api_base_url"`
	PollIntervalSeconds  int    `mapstructure:"poll_interval_seconds"`
	NavigateDelaySeconds int    `mapstructure:"navigate_delay_seconds"`
	PollTimeoutMinutes   int    `mapstructure:"poll_timeout_minutes"`
	SyncInterval         int    `mapstructure:"sync_interval"` // minutes, 0 disables
	MaxFileSizeMB        int    `mapstructure:"max_file_size_mb"`
	Database             struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Exports struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"exports"`
	Intake struct {
		Path            string   `mapstructure:"path"`
		DebounceSeconds int      `mapstructure:"debounce_seconds"`
		Trades          []string `mapstructure:"trades"`
	} `mapstructure:"intake"`
}

// PollInterval returns the status polling cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// NavigateDelay returns the pause between a terminal status and showing
// results, left long enough for a final socket frame to arrive.
func (c *Config) NavigateDelay() time.Duration {
	return time.Duration(c.NavigateDelaySeconds) * time.Second
}

// PollTimeout returns the hard ceiling on a single polling session.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutMinutes) * time.Minute
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a "TAKEOFF_" prefix.
	// e.g., TAKEOFF_API_BASE_URL will override the `api_base_url` key.
	viper.SetEnvPrefix("TAKEOFF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("api_base_url", "http://localhost:8000")
	viper.SetDefault("poll_interval_seconds", 3)
	viper.SetDefault("navigate_delay_seconds", 2)
	viper.SetDefault("poll_timeout_minutes", 5)
	viper.SetDefault("sync_interval", 15)
	viper.SetDefault("max_file_size_mb", 50)
	viper.SetDefault("database.path", "./takeoff.db")
	viper.SetDefault("exports.path", "./exports")
	viper.SetDefault("intake.path", "./plans")
	viper.SetDefault("intake.debounce_seconds", 2)
	viper.SetDefault("intake.trades", []string{"flooring", "painting", "doors_windows"})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
