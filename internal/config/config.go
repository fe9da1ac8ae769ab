package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/AdamBeresnev/tourny-app/internal/bracket"
)

type Config struct {
	Port           int
	DatabasePath   string
	MigrationsURL  string
	SessionLife    time.Duration
	SizePolicy     bracket.SizePolicy
	RevisionPolicy bracket.RevisionPolicy

	// Zero disables the background status reconciler
	ReconcileInterval time.Duration

	ResultRateLimit float64
	ResultRateBurst int
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads the configuration from the environment. Call godotenv.Load first
// to pick up a .env file.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	var cfg Config
	var err error

	if cfg.Port, err = intVar(getenv, "PORT", 8080); err != nil {
		return Config{}, err
	}
	cfg.DatabasePath = stringVar(getenv, "DATABASE_PATH", "tourny.db")
	cfg.MigrationsURL = stringVar(getenv, "MIGRATIONS_PATH", "file://migrations")

	if cfg.SessionLife, err = durationVar(getenv, "SESSION_LIFETIME", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileInterval, err = durationVar(getenv, "RECONCILE_INTERVAL", 5*time.Minute); err != nil {
		return Config{}, err
	}

	if cfg.SizePolicy, err = bracket.ParseSizePolicy(stringVar(getenv, "BRACKET_SIZE_POLICY", "power-of-two")); err != nil {
		return Config{}, err
	}
	if cfg.RevisionPolicy, err = bracket.ParseRevisionPolicy(stringVar(getenv, "BRACKET_REVISION_POLICY", "forbid")); err != nil {
		return Config{}, err
	}

	rate := stringVar(getenv, "RESULT_RATE_LIMIT", "2")
	if cfg.ResultRateLimit, err = strconv.ParseFloat(rate, 64); err != nil || cfg.ResultRateLimit <= 0 {
		return Config{}, fmt.Errorf("invalid RESULT_RATE_LIMIT %q", rate)
	}
	if cfg.ResultRateBurst, err = intVar(getenv, "RESULT_RATE_BURST", 5); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func stringVar(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func intVar(getenv func(string) string, key string, fallback int) (int, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func durationVar(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	if v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}
