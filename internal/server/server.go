// Package server accepts inbound MLLP connections and runs the per
// connection order intake state machine.
package server

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog"
)

// Server owns the TCP listener. Each accepted connection is handled by an
// independent goroutine; handlers share no mutable state beyond the
// read-only configuration captured in their dependencies.
type Server struct {
	addr    string
	handler *Handler
	logger  zerolog.Logger
}

// New creates a Server listening on addr ("host:port").
func New(addr string, handler *Handler, logger zerolog.Logger) *Server {
	return &Server{addr: addr, handler: handler, logger: logger}
}

// ListenAndServe binds the listener and accepts connections until ctx is
// canceled. It returns after all in-flight connection handlers have seen
// the cancellation and the listener is closed.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info().Str("listen_addr", ln.Addr().String()).Msg("waiting for lab orders")

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info().Msg("listener closed")
				return nil
			}
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handler.Handle(ctx, conn)
		}()
	}
}
