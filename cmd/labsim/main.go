package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/medwire-labs/labsim"
	"github.com/medwire-labs/labsim/internal/cliconfig"
)

const helpDescription = `
Simulate a clinical lab analyzer speaking MLLP-framed HL7 v2 over TCP.

labsim listens for ORM^O01 lab orders, acknowledges each one, synthesizes a
plausible result panel for the requested test code, and forwards the ORU^R01
result message to a downstream MLLP server.

Highlights:
  - Handles many concurrent order connections, multiple orders per connection.
  - Always acknowledges receipt before forwarding; delivery failures never
    block the order intake.
  - Knows CBC, BMP and glucose panels; anything else gets a generic result.
`

var exampleUsage = strings.TrimSpace(`
  labsim --downstream-addr 127.0.0.1:2577
  labsim --listen-port 2575 --downstream-addr hub.internal:2577 --log-level debug
  LABSIM_DOWNSTREAM_ADDR=hub:2577 labsim
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "labsim",
		Short:   "Simulated MLLP lab analyzer: accepts HL7 orders, forwards synthesized results",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.labsim/config.toml),
			// then environment, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			// Missing downstream endpoint is a startup-time fatal error.
			if err := cfg.Validate(); err != nil {
				return err
			}
			log = cliconfig.SetLevel(cfg.LogLevel)
			log.Info().Interface("config", cfg).Msg("configuration")

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if cfg.WatchConfig && cfgFile != "" {
				go func() {
					if err := cliconfig.WatchConfigFile(ctx, cfgFile, log); err != nil && ctx.Err() == nil {
						log.Warn().Err(err).Msg("config watcher stopped")
					}
				}()
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				log.Info().Str("signal", sig.String()).Msg("received signal, stopping")
				cancel()
			}()

			return labsim.Run(ctx, cfg)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.labsim/config.toml)")
	root.Flags().StringVar(&cfg.ListenHost, "listen-host", cfg.ListenHost, "address to listen on for inbound orders")
	root.Flags().IntVar(&cfg.ListenPort, "listen-port", cfg.ListenPort, "port to listen on for inbound orders")
	root.Flags().StringVar(&cfg.DownstreamAddr, "downstream-addr", cfg.DownstreamAddr, "host:port of the downstream MLLP server (required)")
	root.Flags().DurationVar(&cfg.AckTimeout, "ack-timeout", cfg.AckTimeout, "how long to wait for the downstream ack")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "warn when the config file changes on disk")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("labsim")
		os.Exit(1)
	}
}
