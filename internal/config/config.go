// Package config loads termdict settings from a YAML file
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

var (
	// ErrInvalidPort indicates a port outside 1..65535
	ErrInvalidPort = errors.New("config: invalid port")

	// ErrInvalidLevel indicates an unknown log level
	ErrInvalidLevel = errors.New("config: invalid log level")

	// ErrInvalidMsgSize indicates a non-positive gRPC message limit
	ErrInvalidMsgSize = errors.New("config: invalid message size")
)

// Config is the full process configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
}

// ServerConfig holds listener settings
type ServerConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metricsPort"`
	MaxMsgBytes int `yaml:"maxMsgBytes"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
	Caller bool   `yaml:"caller"`
}

// DictionaryConfig holds dictionary settings
type DictionaryConfig struct {
	SeedFile         string `yaml:"seedFile"`
	VerifyInvariants bool   `yaml:"verifyInvariants"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:        50051,
			MetricsPort: 9090,
			MaxMsgBytes: 16 * 1024 * 1024,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path on top of the defaults. An empty path yields the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse unmarshals YAML into cfg, keeping fields the document omits,
// and validates the result
func Parse(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg.Validate()
}

// Validate checks value ranges
func (c Config) Validate() error {
	for name, port := range map[string]int{
		"server.port":        c.Server.Port,
		"server.metricsPort": c.Server.MetricsPort,
	} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidPort, name, port)
		}
	}
	if c.Server.Port == c.Server.MetricsPort {
		return fmt.Errorf("%w: gRPC and metrics ports are both %d", ErrInvalidPort, c.Server.Port)
	}

	if c.Server.MaxMsgBytes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMsgSize, c.Server.MaxMsgBytes)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Log.Level)
	}
	return nil
}
