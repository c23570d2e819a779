package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	LogLevel string `env:"LOG_LEVEL"`
	HTTP     HTTPConfig
	Storage  StorageConfig
	Postgres PostgresConfig
}

type HTTPConfig struct {
	Host              string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port              string        `env:"HTTP_PORT" env-default:"8080"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" env-default:"postgres"`
}

// PostgresConfig is only consulted when the postgres storage driver is
// selected, so its fields are validated by Config.Validate instead of
// being marked env-required.
type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME"`
	Password       string        `env:"POSTGRES_PASSWORD"`
	Database       string        `env:"POSTGRES_DATABASE"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	switch c.Storage.Driver {
	case StorageDriverMemory:
		return nil
	case StorageDriverPostgres:
		return c.Postgres.validate()
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
}

func (c PostgresConfig) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"POSTGRES_HOST", c.Host},
		{"POSTGRES_USERNAME", c.Username},
		{"POSTGRES_PASSWORD", c.Password},
		{"POSTGRES_DATABASE", c.Database},
	}
	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("field %q is required for the postgres storage driver", field.name)
		}
	}
	return nil
}

// URL returns the connection string understood by pgxpool.ParseConfig.
func (c PostgresConfig) URL() string {
	query := url.Values{}
	query.Set("sslmode", c.SSLMode)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: query.Encode(),
	}
	return u.String()
}
