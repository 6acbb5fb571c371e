// Package config handles loading and parsing application configuration.
// It supports two sources for the file location (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can be overridden by the environment variable
// named in its env:"..." tag.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config is the root configuration structure.
type Config struct {
	// Env controls log format and verbosity: "dev", "staging" or "prod".
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	Storage    Storage    `yaml:"storage"`
	GRPCServer GRPCServer `yaml:"grpc_server"`
	OpsServer  OpsServer  `yaml:"ops_server"`

	// ShutdownTimeout bounds the graceful stop of both servers.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Storage selects and locates the backing store.
type Storage struct {
	// Driver is "file" (JSON file) or "sqlite".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"file"`

	// Path is the JSON file or the SQLite database file.
	Path string `yaml:"path" env:"STORAGE_PATH" env-required:"true"`
}

// GRPCServer holds settings of the person API listener.
type GRPCServer struct {
	// Addr is the TCP address to listen on, e.g. "localhost:5079".
	Addr string `yaml:"address" env:"GRPC_SERVER_ADDR" env-required:"true"`
}

// OpsServer holds settings of the HTTP listener for /healthz and /metrics.
type OpsServer struct {
	// Addr is empty to disable the ops listener.
	Addr string `yaml:"address" env:"OPS_SERVER_ADDR"`
}

// Load reads the config file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case "dev", "staging", "prod":
	default:
		return fmt.Errorf("config: unknown env %q", c.Env)
	}

	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}

	return nil
}

// MustLoad resolves the config path from CONFIG_PATH or --config, loads
// it, and exits the process on any failure.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}
