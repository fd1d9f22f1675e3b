package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Duration is a time.Duration that unmarshals from strings like "10s" in both
// TOML and environment values.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config carries everything one reconciliation run needs: where the store is,
// which database to provision, and how long to wait for it.
type Config struct {
	MongoURI       string   `toml:"mongo_uri" env:"ONBOARDCTL_MONGO_URI"`
	Database       string   `toml:"database" env:"ONBOARDCTL_DATABASE"`
	ConnectTimeout Duration `toml:"connect_timeout" env:"ONBOARDCTL_CONNECT_TIMEOUT"`
	RunTimeout     Duration `toml:"run_timeout" env:"ONBOARDCTL_RUN_TIMEOUT"`
}

func Default() Config {
	return Config{
		ConnectTimeout: Duration(10 * time.Second),
		RunTimeout:     Duration(2 * time.Minute),
	}
}

// Load builds the run configuration: defaults, then the TOML file when a path
// is given, then ONBOARDCTL_* environment overrides, then validation.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadToml(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config env parse failed: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.MongoURI) == "" {
		return fmt.Errorf("config missing mongo uri")
	}
	if !strings.HasPrefix(cfg.MongoURI, "mongodb://") && !strings.HasPrefix(cfg.MongoURI, "mongodb+srv://") {
		return fmt.Errorf("config mongo uri must start with mongodb:// or mongodb+srv://")
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return fmt.Errorf("config missing database name")
	}
	if cfg.ConnectTimeout <= 0 {
		return fmt.Errorf("config connect timeout must be positive")
	}
	if cfg.RunTimeout <= 0 {
		return fmt.Errorf("config run timeout must be positive")
	}
	return nil
}
