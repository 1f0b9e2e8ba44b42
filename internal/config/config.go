package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Port        string        `yaml:"port"`
	Environment string        `yaml:"environment"`
	DBDriver    string        `yaml:"db_driver"`
	DBDSN       string        `yaml:"db_dsn"`
	Secret      string        `yaml:"secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	CacheDriver string        `yaml:"cache_driver"`
	CacheURL    string        `yaml:"cache_url"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	CORSOrigin  string        `yaml:"cors_origin"`
	RateLimit   int           `yaml:"rate_limit"`
	RateWindow  time.Duration `yaml:"rate_window"`
}

const devSecret = "dev-secret-change-in-production"

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Port:        "5000",
		Environment: "development",
		DBDriver:    "sqlite3",
		DBDSN:       "practice.db",
		Secret:      devSecret,
		TokenTTL:    24 * time.Hour,
		CacheDriver: "memory",
		CacheTTL:    time.Hour,
		CORSOrigin:  "*",
		RateLimit:   100,
		RateWindow:  15 * time.Minute,
	}
}

// Load reads the YAML file on top of the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.Environment, "ENVIRONMENT")
	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.DBDSN, "DB_DSN")
	setString(&c.Secret, "JWT_SECRET")
	setString(&c.CacheDriver, "CACHE_DRIVER")
	setString(&c.CacheURL, "CACHE_URL")
	setString(&c.CORSOrigin, "CORS_ORIGIN")

	for key, dst := range map[string]*time.Duration{
		"TOKEN_TTL":   &c.TokenTTL,
		"CACHE_TTL":   &c.CacheTTL,
		"RATE_WINDOW": &c.RateWindow,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT: %w", err)
		}
		c.RateLimit = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("db_dsn is required")
	}

	switch c.CacheDriver {
	case "memory":
	case "redis", "valkey":
		if c.CacheURL == "" {
			return fmt.Errorf("cache_url is required for cache_driver %q", c.CacheDriver)
		}
	default:
		return fmt.Errorf("unsupported cache_driver %q", c.CacheDriver)
	}

	if c.Secret == "" {
		return errors.New("secret is required")
	}
	if c.IsProduction() && c.Secret == devSecret {
		return errors.New("secret must be set in production")
	}
	if c.TokenTTL <= 0 || c.CacheTTL <= 0 {
		return errors.New("token_ttl and cache_ttl must be positive")
	}
	if c.RateLimit < 0 || c.RateWindow <= 0 {
		return errors.New("rate_limit must be >= 0 and rate_window positive")
	}
	return nil
}
