// Package ports defines the interfaces that connect the per-connection
// handler to the components it orchestrates.
//
// The handler (internal/server) depends only on these interfaces; the
// concrete implementations live in internal/synth and internal/forward.
// Tests substitute in-memory fakes to exercise the handler state machine
// without real downstream sockets.
package ports
