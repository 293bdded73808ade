// Package config loads the daemon and CLI settings from defaults, an optional
// TOML file and CELERIX_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DataDir    string    `mapstructure:"data_dir"`
	Port       string    `mapstructure:"port"`
	HTTPPort   string    `mapstructure:"http_port"`
	DisableTLS bool      `mapstructure:"disable_tls"`
	StoreAddr  string    `mapstructure:"store_addr"`
	Log        LogConfig `mapstructure:"log"`
}

// LogConfig holds logger settings. An empty Path logs to stderr.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Path   string `mapstructure:"path"`
	Pretty bool   `mapstructure:"pretty"`
}

// Path returns the config file location: CELERIX_CONFIG when set, otherwise
// ~/.config/celerix-admin/config.toml.
func Path() string {
	if p := os.Getenv("CELERIX_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "celerix-admin", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix CELERIX_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", "./data")
	v.SetDefault("port", "7001")
	v.SetDefault("http_port", "7002")
	v.SetDefault("disable_tls", false)
	v.SetDefault("store_addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("log.pretty", false)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("CELERIX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes cfg to Path, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("data_dir", cfg.DataDir)
	v.Set("port", cfg.Port)
	v.Set("http_port", cfg.HTTPPort)
	v.Set("disable_tls", cfg.DisableTLS)
	v.Set("store_addr", cfg.StoreAddr)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.pretty", cfg.Log.Pretty)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
