package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (LABSIM_*).
// It respects flags that have been explicitly set (changed map).
// Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen-host", os.Getenv("LABSIM_LISTEN_HOST"), &cfg.ListenHost)
	s.setString("downstream-addr", os.Getenv("LABSIM_DOWNSTREAM_ADDR"), &cfg.DownstreamAddr)
	s.setString("log-level", os.Getenv("LABSIM_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("listen-port", os.Getenv("LABSIM_LISTEN_PORT"), &cfg.ListenPort); err != nil {
		return err
	}
	if err := s.setDuration("ack-timeout", os.Getenv("LABSIM_ACK_TIMEOUT"), &cfg.AckTimeout); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv("LABSIM_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
