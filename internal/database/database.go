// Package database opens the PostgreSQL pool behind the lookup history store.
package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config describes how to reach PostgreSQL. URL, when set, wins over the
// individual connection fields.
type Config struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	HealthCheckPeriod time.Duration
}

// ConfigFromEnv reads DATABASE_URL or the DB_* variables. Malformed
// numbers and durations are reported rather than silently defaulted.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		URL:      os.Getenv("DATABASE_URL"),
		Host:     envOr("DB_HOST", "localhost"),
		User:     envOr("DB_USER", "airtracker"),
		Password: os.Getenv("DB_PASSWORD"),
		Database: envOr("DB_NAME", "airtracker"),
		SSLMode:  envOr("DB_SSL_MODE", "disable"),
	}

	var errs []error
	port, err := strconv.Atoi(envOr("DB_PORT", "5432"))
	errs = append(errs, wrapEnv("DB_PORT", err))
	cfg.Port = port

	maxConns, err := strconv.ParseInt(envOr("DB_MAX_OPEN_CONNS", "10"), 10, 32)
	errs = append(errs, wrapEnv("DB_MAX_OPEN_CONNS", err))
	cfg.MaxConns = int32(maxConns)

	minConns, err := strconv.ParseInt(envOr("DB_MAX_IDLE_CONNS", "2"), 10, 32)
	errs = append(errs, wrapEnv("DB_MAX_IDLE_CONNS", err))
	cfg.MinConns = int32(minConns)

	cfg.MaxConnLifetime, err = time.ParseDuration(envOr("DB_CONN_MAX_LIFETIME", "30m"))
	errs = append(errs, wrapEnv("DB_CONN_MAX_LIFETIME", err))

	cfg.HealthCheckPeriod, err = time.ParseDuration(envOr("DB_HEALTH_CHECK_PERIOD", "1m"))
	errs = append(errs, wrapEnv("DB_HEALTH_CHECK_PERIOD", err))

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("database config: %w", err)
	}
	return cfg, nil
}

// ConnectionString returns the DSN handed to pgx.
func (c Config) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	return c.url().String()
}

// Redacted returns the DSN with the password masked, for logs.
func (c Config) Redacted() string {
	if c.URL == "" {
		return c.url().Redacted()
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return "<unparseable DATABASE_URL>"
	}
	return u.Redacted()
}

func (c Config) url() *url.URL {
	u := &url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	switch {
	case c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	return u
}

// Connect opens a pool and pings it once.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolConfig.MaxConns {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Pinger adapts a pool to the readiness check.
type Pinger struct {
	Pool *pgxpool.Pool
}

// Ping verifies the pool can reach the server.
func (p Pinger) Ping(ctx context.Context) error {
	if p.Pool == nil {
		return errors.New("database pool not configured")
	}
	return p.Pool.Ping(ctx)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func wrapEnv(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", key, err)
}
