// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads and persists keyprint settings. Values come from, in
// increasing precedence: built-in defaults, keyprint.yaml, KEYPRINT_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/keyprint/internal/restrict"
)

// Config is the complete keyprint configuration.
type Config struct {
	Language string   `mapstructure:"language" yaml:"language"`
	Output   string   `mapstructure:"output" yaml:"output"`
	Workers  int      `mapstructure:"workers" yaml:"workers"`
	Verbose  bool     `mapstructure:"verbose" yaml:"verbose"`
	Database Database `mapstructure:"database" yaml:"database"`
	// Restrictions maps a technology name to the minimum accepted bit size.
	// ForbiddenSize bans the technology outright.
	Restrictions map[string]int `mapstructure:"restrictions" yaml:"restrictions,omitempty"`
	// StrictSizes rejects keys whose size is not in the technology's
	// supported size list.
	StrictSizes bool `mapstructure:"strict_sizes" yaml:"strict_sizes"`
}

// Database selects the backend of the fingerprint ledger.
type Database struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

// ForbiddenSize marks a technology as not accepted at all.
const ForbiddenSize = restrict.Forbidden

// flagAliases maps config keys to the command line flags that set them
// when the names differ.
var flagAliases = map[string]string{
	"database.type": "db-type",
	"database.dsn":  "db-dsn",
	"strict_sizes":  "strict-sizes",
}

var (
	outputFormats = []string{"text", "json", "yaml"}
	databaseTypes = []string{"sqlite", "postgres", "mysql"}
)

// Defaults returns the built-in default values keyed by viper path.
func Defaults() map[string]any {
	return map[string]any{
		"language":      "en",
		"output":        "text",
		"workers":       0,
		"verbose":       false,
		"strict_sizes":  false,
		"database.type": "sqlite",
		"database.dsn":  "./keyprint.db",
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if !slices.Contains(outputFormats, c.Output) {
		return fmt.Errorf("invalid output format %q (expected one of %s)", c.Output, strings.Join(outputFormats, ", "))
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if !slices.Contains(databaseTypes, c.Database.Type) {
		return fmt.Errorf("unsupported database type %q (expected one of %s)", c.Database.Type, strings.Join(databaseTypes, ", "))
	}
	_, err := c.Policy()
	return err
}

// Policy builds the key restriction policy described by c.
func (c Config) Policy() (*restrict.Policy, error) {
	return restrict.New(c.Restrictions, c.StrictSizes)
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "keyprint")
		default:
			configDir = "/etc/keyprint"
		}
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(dir, "keyprint")
	}

	return filepath.Join(configDir, "keyprint.yaml"), nil
}

// LoadConfig resolves a configuration of type T. A missing config file is
// not an error unless explicitPath names one.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("keyprint")
	v.SetConfigType("yaml")
	if explicitPath != nil && *explicitPath != "" {
		v.SetConfigFile(*explicitPath)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("keyprint")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
		for key, flag := range flagAliases {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// WriteConfigFile writes c to the user (or system) config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}
	return WriteConfigFileTo(c, path)
}

// WriteConfigFileTo writes c as YAML to path, creating parent directories.
func WriteConfigFileTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}
	return os.WriteFile(path, data, 0o600)
}
