package transport

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/deepakipr/mysensors/message"
)

// queueCapacity bounds each loopback endpoint's inbound queue.
const queueCapacity = 64

// Loopback is an in-memory Transport endpoint. Two endpoints created by
// NewLoopbackPair deliver to each other in insertion order. It is the
// reference link for tests and for running a node and a gateway in one
// process.
type Loopback struct {
	mu     sync.Mutex
	peer   *Loopback
	queue  []*message.Message
	closed bool

	// ReadyFunc overrides Ready; nil means always ready.
	ReadyFunc func() bool
	// DropFunc, when set, discards outbound envelopes it returns true for.
	DropFunc func(msg *message.Message) bool
}

// NewLoopbackPair returns two linked endpoints.
func NewLoopbackPair() (*Loopback, *Loopback) {
	a := &Loopback{}
	b := &Loopback{}
	a.peer = b
	b.peer = a
	return a, b
}

// Send copies the envelope into the peer's inbound queue.
func (l *Loopback) Send(msg *message.Message) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	drop := l.DropFunc
	peer := l.peer
	l.mu.Unlock()

	if drop != nil && drop(msg) {
		logrus.WithFields(logrus.Fields{
			"function":    "Send",
			"destination": msg.Destination,
		}).Debug("Loopback dropping envelope")
		return ErrSendFailed
	}

	cp := *msg
	peer.mu.Lock()
	defer peer.mu.Unlock()
	if peer.closed || len(peer.queue) >= queueCapacity {
		return ErrSendFailed
	}
	peer.queue = append(peer.queue, &cp)
	return nil
}

// Poll returns the oldest queued inbound envelope.
func (l *Loopback) Poll() (*message.Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	msg := l.queue[0]
	l.queue = l.queue[1:]
	return msg, true
}

// Ready reports link readiness, delegating to ReadyFunc when set.
func (l *Loopback) Ready() bool {
	l.mu.Lock()
	ready := l.ReadyFunc
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return false
	}
	if ready != nil {
		return ready()
	}
	return true
}

// Close shuts the endpoint down and discards queued traffic.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.queue = nil
	return nil
}
