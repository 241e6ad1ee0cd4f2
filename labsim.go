// Package labsim provides a simulated clinical lab analyzer speaking
// MLLP-framed HL7 v2 over TCP: it accepts ORM^O01 lab orders, acknowledges
// each one, synthesizes a plausible result panel, and forwards the ORU^R01
// to a downstream MLLP server.
//
// Example usage:
//
//	cfg := labsim.DefaultConfig()
//	cfg.DownstreamAddr = "127.0.0.1:2577"
//	if err := labsim.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package labsim

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medwire-labs/labsim/internal/cliconfig"
	"github.com/medwire-labs/labsim/internal/forward"
	"github.com/medwire-labs/labsim/internal/hl7"
	"github.com/medwire-labs/labsim/internal/server"
	"github.com/medwire-labs/labsim/internal/synth"
)

// Config holds the configuration for the analyzer.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// DefaultConfig returns a Config with default values. At minimum, you must
// set DownstreamAddr before calling Run.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Logger returns the package-level zerolog logger used by the analyzer.
func Logger() zerolog.Logger {
	return cliconfig.Logger()
}

// Run starts the analyzer with the given configuration. It validates cfg,
// binds the listener, and blocks until ctx is canceled or the listener
// fails.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := cliconfig.SetLevel(cfg.LogLevel)

	downstream, err := cfg.Downstream()
	if err != nil {
		return err
	}

	builder := hl7.NewBuilder(hl7.NewControlIDSource())
	sender := forward.NewSender(downstream, cfg.AckTimeout, log)
	handler := server.NewHandler(builder, synth.New(), sender, log)
	srv := server.New(cfg.ListenAddr(), handler, log)

	log.Info().
		Str("listen_addr", cfg.ListenAddr()).
		Str("downstream", downstream.String()).
		Msg("dummy lab analyzer starting")
	return srv.ListenAndServe(ctx)
}
