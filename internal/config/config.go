// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/format"
	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyDatabasePath        = "database.path"
	KeyLogLevel            = "logging.level"
	KeyLogFormat           = "logging.format"
	KeyReclassifyThreshold = "engine.reclassify_threshold"
	KeyWorkers             = "engine.workers"
	KeyAccounts            = "accounts"
	KeyDefaultAccount      = "accounts_default"
	KeyServerAddress       = "server.address"
)

// DefaultServerAddress is where `spice serve` listens unless configured.
const DefaultServerAddress = "127.0.0.1:8484"

// Config is the validated application configuration.
type Config struct {
	DatabasePath        string
	LogLevel            string
	LogFormat           string
	DefaultAccountID    string
	ServerAddress       string
	Accounts            []model.Account
	ReclassifyThreshold int
	Workers             int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, "$HOME/.local/share/spice/spice.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyReclassifyThreshold, format.DefaultReclassifyThreshold)
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyServerAddress, DefaultServerAddress)
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath:        ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:            v.GetString(KeyLogLevel),
		LogFormat:           v.GetString(KeyLogFormat),
		ReclassifyThreshold: v.GetInt(KeyReclassifyThreshold),
		Workers:             v.GetInt(KeyWorkers),
		DefaultAccountID:    strings.TrimSpace(v.GetString(KeyDefaultAccount)),
		ServerAddress:       v.GetString(KeyServerAddress),
	}

	if err := v.UnmarshalKey(KeyAccounts, &cfg.Accounts); err != nil {
		return nil, fmt.Errorf("%w: accounts: %v", common.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if c.ReclassifyThreshold < 0 || c.ReclassifyThreshold > 100 {
		return fmt.Errorf("%w: %s must be between 0 and 100, got %d",
			common.ErrInvalidConfig, KeyReclassifyThreshold, c.ReclassifyThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyWorkers)
	}

	seen := make(map[string]bool, len(c.Accounts))
	for i, acc := range c.Accounts {
		if strings.TrimSpace(acc.ID) == "" {
			return fmt.Errorf("%w: accounts[%d] has no id", common.ErrInvalidConfig, i)
		}
		if seen[acc.ID] {
			return fmt.Errorf("%w: duplicate account id %q", common.ErrInvalidConfig, acc.ID)
		}
		seen[acc.ID] = true
	}
	if c.DefaultAccountID != "" && !seen[c.DefaultAccountID] {
		return fmt.Errorf("%w: %s %q is not a configured account",
			common.ErrInvalidConfig, KeyDefaultAccount, c.DefaultAccountID)
	}

	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
