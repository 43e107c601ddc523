package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the environment-driven configuration surface. Credentials are
// optional for the dashboard (the login form covers the gap) and required
// by the report CLI.
type Config struct {
	Email    string `env:"LIBRE_EMAIL"`
	Password string `env:"LIBRE_PASSWORD"`

	BaseURL string `env:"LIBRE_BASE_URL, default=https://libreview-proxy.onrender.com"`
	Region  string `env:"LIBRE_REGION,   default=us"`
	Version string `env:"LIBRE_VERSION,  default=4.7"`
	Product string `env:"LIBRE_PRODUCT,  default=llu.ios"`

	Timeout      time.Duration `env:"LIBRE_TIMEOUT,  default=30s"`
	PollInterval time.Duration `env:"POLL_INTERVAL,  default=60s"`
	LogLevel     string        `env:"LOG_LEVEL,      default=info"`

	// Derived paths, not read from the environment.
	CacheDir string
	DBPath   string
	LogPath  string
}

// Load reads configuration from environment variables and fills in the
// per-user cache paths.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	cfg.CacheDir = filepath.Join(userConfigDir(), "lluview")
	cfg.DBPath = filepath.Join(cfg.CacheDir, "cache.db")
	cfg.LogPath = filepath.Join(cfg.CacheDir, "debug.log")
	return cfg, nil
}

// HasCredentials reports whether both credential halves came from the
// environment.
func (c Config) HasCredentials() bool {
	return c.Email != "" && c.Password != ""
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
