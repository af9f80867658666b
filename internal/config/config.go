// Package config loads querytalk configuration from an optional YAML file
// with environment-variable overrides. Precedence, lowest to highest:
// built-in defaults, file, environment.
package config

import (
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/querytalk/internal/errs"
)

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Sample   SampleConfig   `yaml:"sample"`
}

// DatabaseConfig selects and parameterises the SQL backend.
type DatabaseConfig struct {
	Driver       string        `yaml:"driver"` // mysql or postgres
	DSN          string        `yaml:"dsn"`
	MaxConns     int           `yaml:"max_conns"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// ServerConfig parameterises the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StorageConfig parameterises the object store that holds CSV datasets.
// An empty endpoint disables object-store ingestion.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

// LogConfig parameterises structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// SampleConfig parameterises sample-query generation. A non-zero seed makes
// generation reproducible.
type SampleConfig struct {
	Seed int64 `yaml:"seed"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:       "mysql",
			MaxConns:     10,
			QueryTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. A missing file is not an error when path
// is empty; a named file that cannot be read or parsed is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindNotFound, "failed to read config file", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse config file", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays QUERYTALK_* environment variables.
func (c *Config) applyEnv() {
	envString(&c.Database.Driver, "QUERYTALK_DRIVER")
	envString(&c.Database.DSN, "QUERYTALK_DSN")
	envString(&c.Server.Addr, "QUERYTALK_ADDR")
	envString(&c.Log.Level, "QUERYTALK_LOG_LEVEL")
	envString(&c.Log.Format, "QUERYTALK_LOG_FORMAT")
	envString(&c.Storage.Endpoint, "QUERYTALK_STORAGE_ENDPOINT")
	envString(&c.Storage.AccessKey, "QUERYTALK_STORAGE_ACCESS_KEY")
	envString(&c.Storage.SecretKey, "QUERYTALK_STORAGE_SECRET_KEY")
	envString(&c.Storage.Bucket, "QUERYTALK_STORAGE_BUCKET")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
