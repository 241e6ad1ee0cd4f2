// Package forward delivers ORU result messages to the downstream MLLP
// server, one fresh TCP connection per send.
package forward

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/medwire-labs/labsim/internal/domain"
	"github.com/medwire-labs/labsim/internal/hl7"
	"github.com/medwire-labs/labsim/internal/mllp"
)

// DefaultAckTimeout bounds the wait for the downstream acknowledgment.
const DefaultAckTimeout = 5 * time.Second

// Delivery errors. All of them leave the order in the "acknowledged to
// originator, forwarding uncertain" state; retry policy belongs to an
// external supervisor.
var (
	// ErrAckTimeout is returned when the downstream ACK does not arrive
	// within the configured timeout.
	ErrAckTimeout = errors.New("forward: timed out waiting for downstream ack")

	// ErrMalformedAck is returned when the downstream response cannot be
	// decoded as a framed HL7 acknowledgment.
	ErrMalformedAck = errors.New("forward: malformed downstream ack")

	// ErrNegativeAck is returned when the downstream MSA-1 is not an
	// accept code.
	ErrNegativeAck = errors.New("forward: downstream rejected message")
)

// Sender implements ports.Forwarder against a fixed downstream endpoint.
//
// No pooling: the simulator is low volume and a connection per result keeps
// failure isolation trivial.
type Sender struct {
	endpoint domain.Endpoint
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewSender creates a Sender for the given endpoint. A non-positive timeout
// falls back to DefaultAckTimeout.
func NewSender(endpoint domain.Endpoint, timeout time.Duration, logger zerolog.Logger) *Sender {
	if timeout <= 0 {
		timeout = DefaultAckTimeout
	}
	return &Sender{endpoint: endpoint, timeout: timeout, logger: logger}
}

// Send frames and writes the message, then waits for the downstream ACK.
// The whole exchange shares one deadline derived from the configured
// timeout (or the context deadline, whichever is sooner).
func (s *Sender) Send(ctx context.Context, msg *domain.Message) error {
	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.endpoint.String())
	if err != nil {
		return fmt.Errorf("forward: dial %s: %w", s.endpoint, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("forward: set deadline: %w", err)
	}

	frame := mllp.Encode(msg.Encode())
	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("forward: write to %s: %w", s.endpoint, wrapTimeout(err))
	}
	s.logger.Debug().
		Str("endpoint", s.endpoint.String()).
		Int("bytes", len(frame)).
		Msg("result frame written")

	payload, err := mllp.NewReader(conn).ReadFrame()
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s", ErrAckTimeout, s.endpoint)
		}
		return fmt.Errorf("%w: %v", ErrMalformedAck, err)
	}

	ack, err := hl7.Parse(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedAck, err)
	}
	code, ok := ack.Field("MSA", 1)
	if !ok {
		return fmt.Errorf("%w: response has no MSA segment", ErrMalformedAck)
	}
	// AA is the original-mode accept, CA its enhanced-mode equivalent.
	if code != "AA" && code != "CA" {
		return fmt.Errorf("%w: MSA-1 %q", ErrNegativeAck, code)
	}

	s.logger.Debug().
		Str("endpoint", s.endpoint.String()).
		Str("ack_control_id", ack.ControlID()).
		Msg("downstream ack received")
	return nil
}

func wrapTimeout(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrAckTimeout, err)
	}
	return err
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
