package server

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/medwire-labs/labsim/internal/hl7"
	"github.com/medwire-labs/labsim/internal/mllp"
	"github.com/medwire-labs/labsim/internal/ports"
)

// connState tracks the per-message position in the intake state machine.
type connState int

const (
	stateAwaitFrame connState = iota
	stateParsing
	stateAckSent
	stateSynthesizing
	stateForwarding
	stateDone
	stateFailed
)

var stateNames = map[connState]string{
	stateAwaitFrame:   "AWAIT_FRAME",
	stateParsing:      "PARSING",
	stateAckSent:      "ACK_SENT",
	stateSynthesizing: "SYNTHESIZING",
	stateForwarding:   "FORWARDING",
	stateDone:         "DONE",
	stateFailed:       "FAILED",
}

func (s connState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// Handler drives the order intake state machine for one inbound connection:
//
//	AWAIT_FRAME → PARSING → ACK_SENT → SYNTHESIZING → FORWARDING → DONE
//
// with FAILED terminal from any point. Each connection may carry multiple
// sequential orders; the machine restarts at AWAIT_FRAME per message until
// the peer closes the connection.
//
// Invariants the transitions enforce:
//   - No ACK is ever written for a message that failed framing or parsing;
//     the connection is closed silently instead.
//   - The ACK for order N is written before synthesis of order N begins and
//     before order N+1 is read.
//   - A delivery failure after ACK_SENT is reported to the operator but
//     neither un-acknowledges the order nor ends the connection loop.
type Handler struct {
	builder *hl7.Builder
	synth   ports.Synthesizer
	forward ports.Forwarder
	logger  zerolog.Logger
}

// NewHandler wires the per-connection coordinator.
func NewHandler(builder *hl7.Builder, synth ports.Synthesizer, forward ports.Forwarder, logger zerolog.Logger) *Handler {
	return &Handler{builder: builder, synth: synth, forward: forward, logger: logger}
}

// Handle serves one inbound connection until the peer closes it or a
// framing/parse failure forces a silent drop. It always closes conn.
func (h *Handler) Handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	// Cancellation unblocks the handler at its next read or write by
	// closing the connection out from under it.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	log := h.logger.With().Str("remote_addr", conn.RemoteAddr().String()).Logger()
	log.Info().Msg("connection accepted")

	reader := mllp.NewReader(conn)
	for {
		if done := h.handleMessage(ctx, conn, reader, log); done {
			return
		}
	}
}

// handleMessage runs the state machine for a single order message.
// It returns true when the connection must be released: clean peer close,
// or any connection-fatal failure.
func (h *Handler) handleMessage(ctx context.Context, conn net.Conn, reader *mllp.Reader, log zerolog.Logger) (done bool) {
	state := stateAwaitFrame

	payload, err := reader.ReadFrame()
	if err != nil {
		if errors.Is(err, io.EOF) {
			log.Info().Msg("peer closed connection")
			return true
		}
		if ctx.Err() != nil {
			log.Info().Msg("server stopping, closing connection")
			return true
		}
		h.transition(log, state, stateFailed)
		log.Warn().Err(err).Msg("framing failed, dropping connection without ack")
		return true
	}

	state = h.transition(log, state, stateParsing)
	msg, err := hl7.Parse(payload)
	if err != nil {
		h.transition(log, state, stateFailed)
		log.Warn().Err(err).Msg("unparseable message, dropping connection without ack")
		return true
	}

	order := hl7.ExtractOrder(msg)
	log.Info().
		Str("control_id", order.ControlID).
		Str("message_type", order.MessageType).
		Str("test_code", order.TestCode).
		Str("placer_order", order.PlacerOrderID).
		Msg("order received")

	// The protocol contract: receipt is acknowledged independently of
	// downstream delivery success.
	ack := h.builder.BuildAck(msg)
	if _, err := conn.Write(mllp.Encode(ack.Encode())); err != nil {
		h.transition(log, state, stateFailed)
		log.Warn().Err(err).Msg("ack write failed")
		return true
	}
	state = h.transition(log, state, stateAckSent)
	log.Info().Str("ack_control_id", ack.ControlID()).Msg("ack sent")

	state = h.transition(log, state, stateSynthesizing)
	results := h.synth.Synthesize(order.TestCode)
	oru := h.builder.BuildORU(order, results)
	log.Info().
		Str("panel", results.PanelCode).
		Int("components", len(results.Results)).
		Str("oru_control_id", oru.ControlID()).
		Msg("results synthesized")

	state = h.transition(log, state, stateForwarding)
	// The outbound leg survives inbound cancellation: a send already in
	// flight completes or times out on its own.
	if err := h.forward.Send(context.WithoutCancel(ctx), oru); err != nil {
		log.Error().Err(err).
			Str("control_id", order.ControlID).
			Msg("downstream delivery failed, order remains acknowledged")
	} else {
		log.Info().Str("control_id", order.ControlID).Msg("results forwarded downstream")
	}

	h.transition(log, state, stateDone)
	return false
}

// transition records a state change; the debug trail makes the ordering
// invariants observable in operation.
func (h *Handler) transition(log zerolog.Logger, from, to connState) connState {
	log.Debug().Stringer("from", from).Stringer("to", to).Msg("state transition")
	return to
}
