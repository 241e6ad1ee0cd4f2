// Package cliconfig loads labsim configuration with the precedence
// flags > environment > config file > defaults.
package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/medwire-labs/labsim/internal/domain"
)

// Listener defaults.
const (
	DefaultListenHost = "0.0.0.0"
	DefaultListenPort = 2575
)

// Config holds CLI configuration for labsim.
type Config struct {
	ListenHost string
	ListenPort int

	// DownstreamAddr is the host:port of the MLLP server every ORU is
	// forwarded to. Required; there is no default.
	DownstreamAddr string

	// AckTimeout bounds the wait for the downstream acknowledgment.
	AckTimeout time.Duration

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string

	// WatchConfig enables change notification on the config file.
	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ListenHost: DefaultListenHost,
		ListenPort: DefaultListenPort,
		AckTimeout: 5 * time.Second,
		LogLevel:   "info",
	}
}

// Validate checks the configuration for errors. A missing or unparseable
// downstream endpoint is a startup-time fatal configuration error.
func (c *Config) Validate() error {
	if c.DownstreamAddr == "" {
		return fmt.Errorf("downstream-addr is required")
	}
	if _, err := domain.ParseEndpoint(c.DownstreamAddr); err != nil {
		return fmt.Errorf("invalid downstream-addr: %w", err)
	}
	if c.ListenHost == "" {
		return fmt.Errorf("listen-host must not be empty")
	}
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("listen-port %d out of range", c.ListenPort)
	}
	if c.AckTimeout <= 0 {
		return fmt.Errorf("ack-timeout must be positive")
	}
	return nil
}

// ListenAddr returns the listener address in host:port form.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ListenHost, c.ListenPort)
}

// Downstream returns the parsed downstream endpoint. Call Validate first.
func (c *Config) Downstream() (domain.Endpoint, error) {
	return domain.ParseEndpoint(c.DownstreamAddr)
}

// configSetter helps apply configuration values while respecting flag
// precedence: it only applies values whose flag has not been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
