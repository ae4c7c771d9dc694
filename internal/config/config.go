package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	AppEnv   string `mapstructure:"APP_ENV"`
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Tracing  TracingConfig
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

type ServerConfig struct {
	Port        string        `mapstructure:"SERVER_PORT"`
	Timeout     time.Duration `mapstructure:"SERVER_TIMEOUT"`
	MetricsPort string        `mapstructure:"METRICS_PORT"`
}

type DatabaseConfig struct {
	Driver         string        `mapstructure:"DB_DRIVER"`
	Host           string        `mapstructure:"DB_HOST"`
	Port           string        `mapstructure:"DB_PORT"`
	User           string        `mapstructure:"DB_USER"`
	Password       string        `mapstructure:"DB_PASSWORD"`
	Name           string        `mapstructure:"DB_NAME"`
	SSLMode        string        `mapstructure:"DB_SSL_MODE"`
	Path           string        `mapstructure:"DB_PATH"`
	MaxOpenConns   int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	ConnectTimeout time.Duration `mapstructure:"DB_CONNECT_TIMEOUT"`
}

// DSN returns the data source name for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.Path)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string        `mapstructure:"REDIS_HOST"`
	Port     string        `mapstructure:"REDIS_PORT"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`
}

// Enabled is false when no Redis host is configured; the directories are
// then read straight from the store.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type TracingConfig struct {
	ServiceName  string `mapstructure:"SERVICE_NAME"`
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Stdout       bool   `mapstructure:"TRACING_STDOUT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT", 15*time.Second)
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "bookingapi.db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_CONNECT_TIMEOUT", 30*time.Second)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", 2*time.Hour)
	v.SetDefault("SERVICE_NAME", "bookingapi")
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".env file could not be loaded: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config

	cfg.AppEnv = v.GetString("APP_ENV")
	cfg.LogLevel = v.GetString("LOG_LEVEL")

	cfg.Server.Port = v.GetString("SERVER_PORT")
	cfg.Server.Timeout = v.GetDuration("SERVER_TIMEOUT")
	cfg.Server.MetricsPort = v.GetString("METRICS_PORT")

	cfg.Database.Driver = v.GetString("DB_DRIVER")
	cfg.Database.Host = v.GetString("DB_HOST")
	cfg.Database.Port = v.GetString("DB_PORT")
	cfg.Database.User = v.GetString("DB_USER")
	cfg.Database.Password = v.GetString("DB_PASSWORD")
	cfg.Database.Name = v.GetString("DB_NAME")
	cfg.Database.SSLMode = v.GetString("DB_SSL_MODE")
	cfg.Database.Path = v.GetString("DB_PATH")
	cfg.Database.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	cfg.Database.ConnectTimeout = v.GetDuration("DB_CONNECT_TIMEOUT")

	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetString("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.CacheTTL = v.GetDuration("CACHE_TTL")

	cfg.Tracing.ServiceName = v.GetString("SERVICE_NAME")
	cfg.Tracing.OTLPEndpoint = v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.Tracing.Stdout = v.GetBool("TRACING_STDOUT")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for driver %s", DriverSQLite)
		}
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return fmt.Errorf("DB_HOST, DB_NAME and DB_USER are required for driver %s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Server.Port == "" {
		return errors.New("SERVER_PORT is required")
	}

	return nil
}
