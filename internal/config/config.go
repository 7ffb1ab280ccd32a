// Package config handles configuration loading and management for
// fundscribe. It supports XDG config paths, project-level overrides, and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for fundscribe.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts"`
	Watch     WatchConfig     `mapstructure:"watch"`
}

// AnthropicConfig holds completion backend credentials.
type AnthropicConfig struct {
	APIKey        string `mapstructure:"api_key"`
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// DefaultsConfig holds default values for dispatch sessions.
type DefaultsConfig struct {
	// TierFile is an optional YAML file overriding the built-in tier table.
	TierFile string `mapstructure:"tier_file"`
	// Fund is the fund used when a report command does not name one.
	Fund string `mapstructure:"fund"`
}

// TimeoutsConfig holds per-tier timeout overrides. Zero values keep the
// registry defaults.
type TimeoutsConfig struct {
	Fast     time.Duration `mapstructure:"fast"`
	Balanced time.Duration `mapstructure:"balanced"`
	Capable  time.Duration `mapstructure:"capable"`
}

// WatchConfig holds settings for the drop-directory watch mode.
type WatchConfig struct {
	// Dir is the default directory watched for request files.
	Dir string `mapstructure:"dir"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
//  1. Environment variables (ANTHROPIC_API_KEY)
//  2. Project config (.fundscribe.yaml in current directory or parent)
//  3. User config (~/.config/fundscribe/config.yaml)
//  4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("defaults.tier_file", cfg.Defaults.TierFile)
	v.Set("defaults.fund", cfg.Defaults.Fund)
	v.Set("timeouts.fast", cfg.Timeouts.Fast.String())
	v.Set("timeouts.balanced", cfg.Timeouts.Balanced.String())
	v.Set("timeouts.capable", cfg.Timeouts.Capable.String())
	v.Set("watch.dir", cfg.Watch.Dir)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)

	v.SetDefault("defaults.tier_file", "")
	v.SetDefault("defaults.fund", "")

	// Zero timeouts keep the dispatch registry defaults.
	v.SetDefault("timeouts.fast", "0s")
	v.SetDefault("timeouts.balanced", "0s")
	v.SetDefault("timeouts.capable", "0s")

	v.SetDefault("watch.dir", "")
}

// getUserConfigDir returns the XDG config directory for fundscribe.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "fundscribe")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "fundscribe")
	}
	return filepath.Join(home, ".config", "fundscribe")
}

// findProjectConfig searches for .fundscribe.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".fundscribe.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{}
}
