// Package transport defines the link between the node core and the physical
// radio or bridge carrying mesh traffic.
//
// The core never talks to a radio directly: it hands fully built envelopes to
// a Transport and drains inbound envelopes from it by polling. This
// abstraction allows different links (in-memory loopback, UDP bridge,
// encrypted decorators) to be used interchangeably.
package transport

import (
	"errors"

	"github.com/deepakipr/mysensors/message"
)

var (
	// ErrNotReady indicates the link is not established yet.
	ErrNotReady = errors.New("transport not ready")
	// ErrSendFailed indicates the first hop did not accept the envelope.
	ErrSendFailed = errors.New("transport send failed")
	// ErrClosed indicates the transport has been shut down.
	ErrClosed = errors.New("transport closed")
)

// Transport moves envelopes between this node and its next hop.
//
// Send reports first-hop acceptance only: a nil error means the next hop took
// the envelope, not that it reached its destination. Poll returns the oldest
// undelivered inbound envelope without blocking; envelopes are always handed
// out in arrival order.
type Transport interface {
	// Send delivers the envelope toward its destination via the next hop.
	Send(msg *message.Message) error

	// Poll returns the next inbound envelope, or false when none is queued.
	Poll() (*message.Message, bool)

	// Ready reports whether the link is established.
	Ready() bool

	// Close shuts the link down.
	Close() error
}
