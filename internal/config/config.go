// Package config resolves the runtime configuration of the mathtools host and client.
// Precedence: command line flag > environment variable > config file > default.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	BindPortEnvVar  = "PORT"
	BindPortDefault = "8765"

	BindAddressEnvVar  = "BIND_ADDRESS"
	BindAddressDefault = "127.0.0.1"

	DBUrlEnvVar            = "DATABASE_URL"
	TelemetryEnabledEnvVar = "OTEL_ENABLED"

	LogLevelEnvVar  = "LOG_LEVEL"
	LogFormatEnvVar = "LOG_FORMAT"
)

const (
	// HostReadyTimeoutSecEnvVar configures how long the client waits for a spawned host to become ready.
	HostReadyTimeoutSecEnvVar = "HOST_READY_TIMEOUT_SEC"

	// HostReadyTimeoutSecDefault is the default ready timeout in seconds.
	HostReadyTimeoutSecDefault = 10
)

// DefaultConfigFile is read if present in the working directory and no --config flag is given.
const DefaultConfigFile = "mathtools.yaml"

// Config holds everything the host and client need to start.
type Config struct {
	Port        string `yaml:"port"`
	BindAddress string `yaml:"bind_address"`

	// ReadyTimeoutSec bounds the wait for a spawned host to accept connections.
	ReadyTimeoutSec int `yaml:"ready_timeout_sec"`

	// DatabaseURL selects the invocation history store.
	// Empty means an in-memory SQLite database that disappears with the process.
	DatabaseURL string `yaml:"database_url"`

	TelemetryEnabled bool `yaml:"telemetry_enabled"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	return &Config{
		Port:            BindPortDefault,
		BindAddress:     BindAddressDefault,
		ReadyTimeoutSec: HostReadyTimeoutSecDefault,
	}
}

// Load builds the configuration from defaults, the optional config file and the environment.
// If path is empty, DefaultConfigFile is used when it exists; an explicit path must exist.
func Load(fs afero.Fs, path string) (*Config, error) {
	c := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file, carry on with defaults
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := c.applyEnv(fs); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(c.Port)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid port '%s', must be an integer between 1 and 65535", c.Port)
	}
	if c.ReadyTimeoutSec < 1 {
		return fmt.Errorf("invalid ready timeout %d, must be a positive integer", c.ReadyTimeoutSec)
	}
	return nil
}

// ListenAddr returns the host:port the Tool Host binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.BindAddress, c.Port)
}

// BaseURL returns the URL at which the Tool Host is reachable.
func (c *Config) BaseURL() string {
	host := c.BindAddress
	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::":
		host = "::1"
	}
	u := url.URL{Scheme: "http", Host: net.JoinHostPort(host, c.Port)}
	return u.String()
}

func (c *Config) applyEnv(fs afero.Fs) error {
	if v := os.Getenv(BindPortEnvVar); v != "" {
		c.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv(BindAddressEnvVar); v != "" {
		c.BindAddress = strings.TrimSpace(v)
	}

	dsn, err := GetEnvOrFile(fs, DBUrlEnvVar)
	if err != nil {
		return err
	}
	if dsn != "" {
		c.DatabaseURL = dsn
	}

	if v := strings.TrimSpace(os.Getenv(HostReadyTimeoutSecEnvVar)); v != "" {
		timeout, err := strconv.Atoi(v)
		if err != nil || timeout < 1 {
			return fmt.Errorf(
				"invalid value for %s: '%s', must be a positive integer", HostReadyTimeoutSecEnvVar, v,
			)
		}
		c.ReadyTimeoutSec = timeout
	}

	if v := os.Getenv(TelemetryEnabledEnvVar); v != "" {
		switch strings.ToLower(v) {
		case "true", "1":
			c.TelemetryEnabled = true
		case "false", "0":
			c.TelemetryEnabled = false
		default:
			return fmt.Errorf(
				"invalid value for %s environment variable: '%s', valid values are 'true' or 'false'",
				TelemetryEnabledEnvVar, v,
			)
		}
	}

	if v := os.Getenv(LogLevelEnvVar); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(LogFormatEnvVar); v != "" {
		c.LogFormat = v
	}
	return nil
}

// GetEnvOrFile returns the value of the given environment variable.
// If it is not set, the file named by the corresponding _FILE variable is read instead.
// If both are set, the plain variable takes precedence.
func GetEnvOrFile(fs afero.Fs, envVar string) (string, error) {
	val := os.Getenv(envVar)
	if val != "" {
		return val, nil
	}

	fileEnvVar := envVar + "_FILE"
	filePath := os.Getenv(fileEnvVar)
	if filePath != "" {
		data, err := afero.ReadFile(fs, filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", fileEnvVar, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return "", nil
}
