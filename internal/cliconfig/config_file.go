package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// friendly.
type FileConfig struct {
	ListenHost     string `toml:"listen_host"`
	ListenPort     int    `toml:"listen_port"`
	DownstreamAddr string `toml:"downstream_addr"`
	AckTimeout     string `toml:"ack_timeout"`
	LogLevel       string `toml:"log_level"`
	WatchConfig    *bool  `toml:"watch_config"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.labsim/config.toml if the user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".labsim", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen-host", fc.ListenHost, &cfg.ListenHost)
	s.setString("downstream-addr", fc.DownstreamAddr, &cfg.DownstreamAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("listen-port", fc.ListenPort, &cfg.ListenPort)

	if err := s.setDuration("ack-timeout", fc.AckTimeout, &cfg.AckTimeout); err != nil {
		return err
	}

	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
