// Package config loads hostprobe settings from an optional YAML file,
// then applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort            = 3000
	DefaultCommandTimeout  = 5 * time.Second
	DefaultStreamInterval  = 5 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
	// GRPCPort enables the gRPC health service when nonzero.
	GRPCPort        int           `yaml:"grpc_port"`
	CommandTimeout  time.Duration `yaml:"command_timeout"`
	StreamInterval  time.Duration `yaml:"stream_interval"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	DiskPath        string        `yaml:"disk_path"`
	LogLevel        string        `yaml:"log_level"`
	LogJSON         bool          `yaml:"log_json"`
}

func Default() *Config {
	return &Config{
		Bind:            "0.0.0.0",
		Port:            DefaultPort,
		CommandTimeout:  DefaultCommandTimeout,
		StreamInterval:  DefaultStreamInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
		DiskPath:        ".",
		LogLevel:        "info",
	}
}

// DefaultPath is ~/.hostprobe/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hostprobe", "config.yaml")
}

// Load reads path (a missing file is not an error), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Bind = env("HOSTPROBE_BIND", c.Bind)
	c.Port = envInt("PORT", c.Port)
	c.Port = envInt("HOSTPROBE_PORT", c.Port)
	c.GRPCPort = envInt("HOSTPROBE_GRPC_PORT", c.GRPCPort)
	c.CommandTimeout = envDuration("HOSTPROBE_COMMAND_TIMEOUT", c.CommandTimeout)
	c.StreamInterval = envDuration("HOSTPROBE_STREAM_INTERVAL", c.StreamInterval)
	c.ShutdownTimeout = envDuration("HOSTPROBE_SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.DiskPath = env("HOSTPROBE_DISK_PATH", c.DiskPath)
	c.LogLevel = strings.ToLower(env("HOSTPROBE_LOG_LEVEL", c.LogLevel))
	c.LogJSON = envBool("HOSTPROBE_LOG_JSON", c.LogJSON)
}

// fillDefaults restores zero values a config file may have blanked.
func (c *Config) fillDefaults() {
	d := Default()
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.CommandTimeout == 0 {
		c.CommandTimeout = d.CommandTimeout
	}
	if c.StreamInterval == 0 {
		c.StreamInterval = d.StreamInterval
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.DiskPath == "" {
		c.DiskPath = d.DiskPath
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("grpc_port %d out of range", c.GRPCPort)
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.Port {
		return errors.New("grpc_port must differ from port")
	}
	if c.CommandTimeout <= 0 {
		return errors.New("command_timeout must be > 0")
	}
	if c.StreamInterval <= 0 {
		return errors.New("stream_interval must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be > 0")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}
	return nil
}

// ListenAddr is the HTTP listen address.
func (c *Config) ListenAddr() string {
	return hostPort(c.Bind, c.Port)
}

// GRPCListenAddr is the gRPC health listen address, or "" when disabled.
func (c *Config) GRPCListenAddr() string {
	if c.GRPCPort == 0 {
		return ""
	}
	return hostPort(c.Bind, c.GRPCPort)
}

func hostPort(host string, port int) string {
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return host + ":" + strconv.Itoa(port)
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
