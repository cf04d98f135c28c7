package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
)

type Reader interface {
	Read() (*Config, error)
}

// EnvReader reads the configuration from the process environment only.
type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, validate(cfg)
}

// FileReader reads the configuration from a file (.env, .yaml, .json or
// .toml) and then overrides it with the process environment.
type FileReader struct {
	path string
}

func NewFileReader(path string) FileReader {
	return FileReader{path: path}
}

func (r FileReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadConfig(r.path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", r.path, err)
	}

	return cfg, validate(cfg)
}

func validate(cfg *Config) error {
	switch cfg.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", cfg.Env)
	}

	switch cfg.Theme.Default {
	case "light", "dark":
	default:
		return fmt.Errorf("unknown default theme: %s", cfg.Theme.Default)
	}

	if cfg.LogLevel != "" {
		_, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
	}

	if cfg.Board.ActivationDistance < 0 {
		return fmt.Errorf("board activation distance must not be negative")
	}
	return nil
}
