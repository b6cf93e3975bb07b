// Package config loads settings from a YAML file with SYNERGY_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration
type Config struct {
	Env      string         `yaml:"env" env:"SYNERGY_ENV" env-description:"development or production"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Fixtures FixturesConfig `yaml:"fixtures"`
	Auth     AuthConfig     `yaml:"auth"`
	Photo    PhotoConfig    `yaml:"photo"`
	Install  InstallConfig  `yaml:"install"`
	UI       UIConfig       `yaml:"ui"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"SYNERGY_DB_DRIVER" env-description:"sqlite3 (cgo) or sqlite (pure Go)"`
	Path   string `yaml:"path" env:"SYNERGY_DB_PATH" env-description:"settings database file; empty uses the XDG data dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"SYNERGY_LOG_LEVEL" env-description:"debug, info, warn or error"`
	File  string `yaml:"file" env:"SYNERGY_LOG_FILE" env-description:"log file path"`
}

type FixturesConfig struct {
	Path  string `yaml:"path" env:"SYNERGY_FIXTURES" env-description:"YAML seed file replacing the built-in demo data"`
	Watch bool   `yaml:"watch" env:"SYNERGY_FIXTURES_WATCH" env-description:"reseed when the fixtures file changes"`
}

type AuthConfig struct {
	ClientID     string        `yaml:"client_id" env:"SYNERGY_OAUTH_CLIENT_ID" env-description:"OAuth client id"`
	ClientSecret string        `yaml:"client_secret" env:"SYNERGY_OAUTH_CLIENT_SECRET" env-description:"OAuth client secret"`
	AuthURL      string        `yaml:"auth_url" env:"SYNERGY_OAUTH_AUTH_URL"`
	TokenURL     string        `yaml:"token_url" env:"SYNERGY_OAUTH_TOKEN_URL"`
	UserInfoURL  string        `yaml:"userinfo_url" env:"SYNERGY_OAUTH_USERINFO_URL"`
	CallbackAddr string        `yaml:"callback_addr" env:"SYNERGY_OAUTH_CALLBACK_ADDR"`
	Scopes       []string      `yaml:"scopes" env:"SYNERGY_OAUTH_SCOPES" env-separator:","`
	Timeout      time.Duration `yaml:"timeout" env:"SYNERGY_OAUTH_TIMEOUT"`
}

type PhotoConfig struct {
	Quality      int  `yaml:"quality" env:"SYNERGY_PHOTO_QUALITY"`
	AllowEditing bool `yaml:"allow_editing" env:"SYNERGY_PHOTO_ALLOW_EDITING"`
}

type InstallConfig struct {
	Dir string `yaml:"dir" env:"SYNERGY_INSTALL_DIR" env-description:"where the install prompt copies the binary"`
}

type UIConfig struct {
	Theme string `yaml:"theme" env:"SYNERGY_THEME" env-description:"light or dark, used until the user picks one"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Env: "development",
		Storage: StorageConfig{
			Driver: "sqlite3",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			AuthURL:      "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:     "https://oauth2.googleapis.com/token",
			UserInfoURL:  "https://openidconnect.googleapis.com/v1/userinfo",
			CallbackAddr: "127.0.0.1:51122",
			Scopes:       []string{"openid", "email", "profile"},
			Timeout:      2 * time.Minute,
		},
		Photo: PhotoConfig{
			Quality:      90,
			AllowEditing: true,
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// DefaultPath returns ~/.config/synergy/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "synergy", "config.yaml"), nil
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			return cfg, cfg.Validate()
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Env {
	case "development", "production":
	default:
		errs = append(errs, fmt.Errorf("env: %q is not development or production", c.Env))
	}
	switch c.Storage.Driver {
	case "sqlite3", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: %q is not sqlite3 or sqlite", c.Storage.Driver))
	}
	switch c.UI.Theme {
	case "", "light", "dark":
	default:
		errs = append(errs, fmt.Errorf("ui.theme: %q is not light or dark", c.UI.Theme))
	}
	if c.Photo.Quality < 1 || c.Photo.Quality > 100 {
		errs = append(errs, fmt.Errorf("photo.quality: %d is outside 1-100", c.Photo.Quality))
	}
	if c.Auth.Timeout < 0 {
		errs = append(errs, fmt.Errorf("auth.timeout: must not be negative"))
	}
	return errors.Join(errs...)
}

// Production reports whether the production profile is active
func (c *Config) Production() bool { return c.Env == "production" }

// EnvHelp describes every environment variable the config understands
func EnvHelp() (string, error) {
	header := "Environment variables:"
	return cleanenv.GetDescription(DefaultConfig(), &header)
}
