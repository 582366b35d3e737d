// Package config loads policyledger settings from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stevemurr/policyledger/logging"
	"github.com/stevemurr/policyledger/store"
)

const envPrefix = "POLICYLEDGER"

// Config holds the settings shared by every command.
type Config struct {
	DataDir    string `yaml:"data_dir" mapstructure:"data_dir"`
	Backend    string `yaml:"backend" mapstructure:"backend"`
	LogLevel   string `yaml:"log_level" mapstructure:"log_level"`
	LogFormat  string `yaml:"log_format" mapstructure:"log_format"`
	MaxRecords int    `yaml:"max_records" mapstructure:"max_records"`
}

// DefaultConfig returns the built-in defaults: a flat file in the working directory.
func DefaultConfig() *Config {
	return &Config{
		DataDir:   ".",
		Backend:   "flat",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads config.yaml from file (when non-empty) or the search path,
// then applies POLICYLEDGER_* environment variables and any changed flags.
// A missing config file is not an error.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("max_records", cfg.MaxRecords)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "policyledger"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "policyledger"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{"data_dir", "backend", "log_level", "log_format", "max_records"} {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if !slices.Contains(store.Backends, c.Backend) {
		return fmt.Errorf("config: backend %q is invalid (must be one of %s)", c.Backend, strings.Join(store.Backends, ", "))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: log_format %q is invalid (must be text or json)", c.LogFormat)
	}
	if c.MaxRecords < 0 {
		return fmt.Errorf("config: max_records must not be negative")
	}
	return nil
}
