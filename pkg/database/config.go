package database

import (
	"fmt"
	"time"

	"github.com/sarahsindone/sbrp-application/config"
)

// Config holds PostgreSQL connection settings. Postgres only backs the
// Casbin policy tables and the policy-change watcher.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// Connection pooling
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
}

// DSN returns a PostgreSQL connection string
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// ConnMaxLifetime returns the connection max lifetime as a duration
func (c Config) ConnMaxLifetime() time.Duration {
	if c.ConnMaxLifetimeMin <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.ConnMaxLifetimeMin) * time.Minute
}

// DefaultConfig returns sensible defaults for database configuration
func DefaultConfig() Config {
	return Config{
		Host:               "localhost",
		Port:               5432,
		DBName:             "sbrp_casbin",
		SSLMode:            "disable",
		MaxOpenConns:       10,
		MaxIdleConns:       2,
		ConnMaxLifetimeMin: 5,
	}
}

// FromCentralConfig converts central config.PostgresConfig to package Config.
// Zero values fall back to DefaultConfig.
func FromCentralConfig(c config.PostgresConfig) Config {
	cfg := DefaultConfig()
	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if c.DBName != "" {
		cfg.DBName = c.DBName
	}
	if c.SSLMode != "" {
		cfg.SSLMode = c.SSLMode
	}
	cfg.User = c.User
	cfg.Password = c.Password
	if c.Pool.MaxOpenConns > 0 {
		cfg.MaxOpenConns = c.Pool.MaxOpenConns
	}
	if c.Pool.MaxIdleConns > 0 {
		cfg.MaxIdleConns = c.Pool.MaxIdleConns
	}
	if c.Pool.ConnMaxLifetimeMin > 0 {
		cfg.ConnMaxLifetimeMin = c.Pool.ConnMaxLifetimeMin
	}
	return cfg
}

// NewDSN creates a DSN string from central config.PostgresConfig
func NewDSN(c config.PostgresConfig) string {
	return FromCentralConfig(c).DSN()
}
