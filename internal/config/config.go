// Package config loads sockcore settings from YAML.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Family selects the address family used by the CLI services.
type Family string

const (
	FamilyIPv4 Family = "ipv4"
	FamilyIPv6 Family = "ipv6"
)

// Config holds reflector, ping and probe settings.
type Config struct {
	Bind         string        `yaml:"bind"`
	Port         int           `yaml:"port"`
	Family       Family        `yaml:"family"`
	RecvBuffer   int           `yaml:"recvBuffer"`
	SendBuffer   int           `yaml:"sendBuffer"`
	WaitTimeout  time.Duration `yaml:"waitTimeout"`
	PingCount    int           `yaml:"pingCount"`
	PingInterval time.Duration `yaml:"pingInterval"`
	PingRate     float64       `yaml:"pingRate"` // pings per second, 0 = unlimited
	PayloadSize  int           `yaml:"payloadSize"`
	PingTimeout  time.Duration `yaml:"pingTimeout"`
	ProbeTimeout time.Duration `yaml:"probeTimeout"`
	ProbeWorkers int           `yaml:"probeWorkers"`
	Log          LogConfig     `yaml:"log"`
}

// LogConfig controls the zap logger built by the CLI.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Bind:         "0.0.0.0",
		Port:         7777,
		Family:       FamilyIPv4,
		RecvBuffer:   256 * 1024,
		SendBuffer:   256 * 1024,
		WaitTimeout:  100 * time.Millisecond,
		PingCount:    5,
		PingInterval: time.Second,
		PingRate:     10,
		PayloadSize:  64,
		PingTimeout:  time.Second,
		ProbeTimeout: 2 * time.Second,
		ProbeWorkers: 8,
		Log:          LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// MinPayloadSize is the smallest ping payload: a 16-byte session id, a
// 4-byte sequence number and a 4-byte timestamp.
const MinPayloadSize = 24

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Family {
	case FamilyIPv4, FamilyIPv6:
	default:
		return errors.New("invalid family: must be ipv4 or ipv6")
	}

	if c.Bind != "" {
		addr, err := netip.ParseAddr(c.Bind)
		if err != nil {
			return fmt.Errorf("invalid bind address %q", c.Bind)
		}
		if addr.Is4() != (c.Family == FamilyIPv4) {
			return fmt.Errorf("bind address %s does not match family %s", c.Bind, c.Family)
		}
	}

	if c.Port < 0 || c.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}
	if c.RecvBuffer < 0 || c.SendBuffer < 0 {
		return errors.New("buffer sizes must not be negative")
	}
	if c.WaitTimeout <= 0 {
		return errors.New("wait timeout must be positive")
	}
	if c.PingCount <= 0 {
		return errors.New("ping count must be positive")
	}
	if c.PingInterval < 0 {
		return errors.New("ping interval must not be negative")
	}
	if c.PingRate < 0 {
		return errors.New("ping rate must not be negative")
	}
	if c.PayloadSize < MinPayloadSize || c.PayloadSize > 65507 {
		return fmt.Errorf("payload size must be between %d and 65507", MinPayloadSize)
	}
	if c.PingTimeout <= 0 {
		return errors.New("ping timeout must be positive")
	}
	if c.ProbeTimeout <= 0 {
		return errors.New("probe timeout must be positive")
	}
	if c.ProbeWorkers <= 0 {
		return errors.New("probe workers must be positive")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return lvl, nil
}
