package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const FallbackAPIBaseURL = "https://api.ibadmin.local/api"

// ClientConfig configures the admin API client and ibctl.
type ClientConfig struct {
	Env          string        `env:"APP_ENV" env-default:"development"`
	APIBaseURL   string        `env:"IB_API_BASE_URL"`
	APIOrigin    string        `env:"IB_API_ORIGIN"`
	StorePath    string        `env:"IBCTL_STORE"`
	SyncInterval time.Duration `env:"COMMISSION_SYNC_INTERVAL" env-default:"5m"`
	LogLevel     string        `env:"LOG_LEVEL" env-default:"info"`
}

func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load(".env")

	var cfg ClientConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, errors.New("APP_ENV must be development or production")
	}
	if cfg.StorePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.StorePath = filepath.Join(home, ".ibctl")
	}
	return &cfg, nil
}

// BaseURL resolves the API root: explicit base URL, then <origin>/api, then
// the fallback host.
func (c *ClientConfig) BaseURL() string {
	if u := strings.TrimSpace(c.APIBaseURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	if o := strings.TrimSpace(c.APIOrigin); o != "" {
		return strings.TrimRight(o, "/") + "/api"
	}
	return FallbackAPIBaseURL
}

// RequestTimeout is 10s in development and 60s in production.
func (c *ClientConfig) RequestTimeout() time.Duration {
	if c.Env == EnvProduction {
		return 60 * time.Second
	}
	return 10 * time.Second
}
