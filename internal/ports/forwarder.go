package ports

import (
	"context"

	"github.com/medwire-labs/labsim/internal/domain"
)

// Forwarder delivers a result message to the downstream MLLP endpoint.
//
// A returned error means the delivery outcome is unconfirmed; the caller
// reports it to the operator but must not retry or fail the inbound
// connection, which has already acknowledged the order.
type Forwarder interface {
	Send(ctx context.Context, msg *domain.Message) error
}
