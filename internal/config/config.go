// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/najdeno/internal/db"
)

// Config holds every runtime setting.
type Config struct {
	Addr        string
	DBDriver    string
	DBPath      string
	DatabaseURL string
	JWTSecret   string
	LogPath     string

	RedisAddr     string
	RedisPassword string

	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	MailFrom    string
	MailTimeout time.Duration

	ForceFoundOnScan bool
	NearbyInStore    bool
}

// Load reads envFiles (missing files are ignored) and then the process
// environment. Variables already set in the environment win over the
// files.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}

	c := &Config{
		Addr:          get("NAJDENO_ADDR", ":8080"),
		DBDriver:      get("NAJDENO_DB_DRIVER", string(db.SQLite)),
		DBPath:        get("NAJDENO_DB_PATH", "najdeno.sqlite3"),
		DatabaseURL:   get("DATABASE_URL", ""),
		JWTSecret:     get("NAJDENO_JWT_SECRET", ""),
		LogPath:       get("NAJDENO_LOG", ""),
		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD"),
		SMTPHost:      get("SMTP_HOST", ""),
		SMTPUser:      get("SMTP_USER", ""),
		SMTPPass:      getenv("SMTP_PASS"),
		MailFrom:      get("MAIL_FROM", "noreply@najdeno.local"),
	}

	var err error
	if c.SMTPPort, err = strconv.Atoi(get("SMTP_PORT", "587")); err != nil {
		return nil, fmt.Errorf("SMTP_PORT: %w", err)
	}
	if c.MailTimeout, err = time.ParseDuration(get("SMTP_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("SMTP_TIMEOUT: %w", err)
	}
	if c.ForceFoundOnScan, err = strconv.ParseBool(get("NAJDENO_FORCE_FOUND_ON_SCAN", "true")); err != nil {
		return nil, fmt.Errorf("NAJDENO_FORCE_FOUND_ON_SCAN: %w", err)
	}
	if c.NearbyInStore, err = strconv.ParseBool(get("NAJDENO_NEARBY_IN_STORE", "true")); err != nil {
		return nil, fmt.Errorf("NAJDENO_NEARBY_IN_STORE: %w", err)
	}
	return c, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch db.Dialect(c.DBDriver) {
	case db.SQLite:
		if c.DBPath == "" {
			return errors.New("NAJDENO_DB_PATH required for sqlite")
		}
	case db.Postgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL required for postgres")
		}
	default:
		return fmt.Errorf("unknown database driver %q (sqlite or postgres)", c.DBDriver)
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP port %d", c.SMTPPort)
	}
	return nil
}

// DSN returns the data source for the selected driver.
func (c *Config) DSN() string {
	if db.Dialect(c.DBDriver) == db.Postgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

// MailEnabled reports whether an SMTP relay is configured.
func (c *Config) MailEnabled() bool { return c.SMTPHost != "" }

// RedisEnabled reports whether token revocation should use Redis.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }
