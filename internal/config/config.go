package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// EnvPrefix is prepended to every environment override, e.g. QUIZ_PORT.
const EnvPrefix = "QUIZ_"

type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"PORT" validate:"required,numeric"`
		ShutdownTimeout string `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`
	Log struct {
		Level       string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
		Development bool   `yaml:"development" env:"DEVELOPMENT"`
	} `yaml:"log" envPrefix:"LOG_"`
	Store  string `yaml:"store" env:"STORE" validate:"oneof=memory sqlite redis postgres"`
	SQLite struct {
		Path string `yaml:"path" env:"PATH"`
	} `yaml:"sqlite" envPrefix:"SQLITE_"`
	Redis struct {
		Addr     string `yaml:"addr" env:"ADDR"`
		Password string `yaml:"password" env:"PASSWORD"`
		DB       int    `yaml:"db" env:"DB" validate:"gte=0"`
		Prefix   string `yaml:"prefix" env:"PREFIX"`
		TTL      string `yaml:"ttl" env:"TTL"`
	} `yaml:"redis" envPrefix:"REDIS_"`
	Postgres struct {
		URL string `yaml:"url" env:"URL"`
	} `yaml:"postgres" envPrefix:"POSTGRES_"`
	Cache struct {
		TTL string `yaml:"ttl" env:"TTL"`
	} `yaml:"cache" envPrefix:"CACHE_"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Server.ShutdownTimeout = "5s"
	cfg.Log.Level = "info"
	cfg.Store = StoreSQLite
	cfg.SQLite.Path = "quizmaster.db"
	cfg.Redis.Prefix = "quizmaster:"
	cfg.Cache.TTL = "30s"
	return cfg
}

// Load reads YAML config from path on top of the defaults, then applies .env and
// QUIZ_* environment overrides and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(storeParams, Config{})
	return v
}

// storeParams requires the connection parameters of the selected backend.
func storeParams(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	switch cfg.Store {
	case StoreSQLite:
		if cfg.SQLite.Path == "" {
			sl.ReportError(cfg.SQLite.Path, "SQLite.Path", "Path", "required_for_store", cfg.Store)
		}
	case StoreRedis:
		if cfg.Redis.Addr == "" {
			sl.ReportError(cfg.Redis.Addr, "Redis.Addr", "Addr", "required_for_store", cfg.Store)
		}
	case StorePostgres:
		if cfg.Postgres.URL == "" {
			sl.ReportError(cfg.Postgres.URL, "Postgres.URL", "URL", "required_for_store", cfg.Store)
		}
	}
}

// Validate checks field formats and backend parameters.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
