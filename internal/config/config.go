package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Journal JournalConfig `mapstructure:"journal"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`
	Mock    MockConfig    `mapstructure:"mock"`
}

// APIConfig points at the admin backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig names the bearer token in the credential store.
type AuthConfig struct {
	TokenKey string `mapstructure:"token_key"`
	TokenEnv string `mapstructure:"token_env"`
}

// JournalConfig holds the local sqlite audit log location.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat string `mapstructure:"date_format"`
	Timezone   string `mapstructure:"timezone"`
}

// MockConfig configures the development backend.
type MockConfig struct {
	Addr      string `mapstructure:"addr"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Load reads configuration from file and env. Env var overrides use prefix SCHOLARADMIN_.
func Load() (Config, error) {
	v := viper.New()
	home := homeDir()

	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("auth.token_key", "userToken")
	v.SetDefault("auth.token_env", "SCHOLARADMIN_TOKEN")
	v.SetDefault("journal.path", filepath.Join(home, ".local", "share", "scholaradmin", "journal.db"))
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "scholaradmin", "scholaradmin.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.date_format", "02 Jan 2006")
	v.SetDefault("ui.timezone", "Local")
	v.SetDefault("mock.addr", ":8080")
	v.SetDefault("mock.jwt_secret", "dev-secret-change-me")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SCHOLARADMIN_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "scholaradmin"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SCHOLARADMIN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// a missing file is fine, a broken one is not
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Location resolves UI.Timezone, falling back to local time.
func (c Config) Location() *time.Location {
	if c.UI.Timezone == "" || strings.EqualFold(c.UI.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Save writes the non-sensitive parts of cfg to disk, creating the config
// directory if needed. Tokens never go through here; they live in the
// credential store.
func Save(cfg Config) error {
	path := os.Getenv("SCHOLARADMIN_CONFIG")
	if path == "" {
		path = filepath.Join(homeDir(), ".config", "scholaradmin", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("auth.token_key", cfg.Auth.TokenKey)
	v.Set("auth.token_env", cfg.Auth.TokenEnv)
	v.Set("journal.path", cfg.Journal.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("mock.addr", cfg.Mock.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}
