package transport

import (
	"sync"

	"github.com/deepakipr/mysensors/message"
)

// FrameLink moves opaque byte frames between this node and its next hop. It
// is the layer radio drivers and bridges implement; envelope-aware transports
// are built on top of it by PlainLink and the encrypting decorators.
type FrameLink interface {
	// WriteFrame hands one frame to the next hop.
	WriteFrame(frame []byte) error

	// PollFrame returns the next inbound frame, or false when none is queued.
	PollFrame() ([]byte, bool)

	// Ready reports whether the link is established.
	Ready() bool

	// Close shuts the link down.
	Close() error
}

// PlainLink adapts a FrameLink into a Transport using the envelope wire
// codec with no further processing.
type PlainLink struct {
	link FrameLink
}

// NewPlainLink wraps a frame link without encryption.
func NewPlainLink(link FrameLink) *PlainLink {
	return &PlainLink{link: link}
}

// Send marshals the envelope onto one frame.
func (p *PlainLink) Send(msg *message.Message) error {
	frame, err := msg.Marshal()
	if err != nil {
		return err
	}
	return p.link.WriteFrame(frame)
}

// Poll decodes the next inbound frame, discarding undecodable ones.
func (p *PlainLink) Poll() (*message.Message, bool) {
	for {
		frame, ok := p.link.PollFrame()
		if !ok {
			return nil, false
		}
		var msg message.Message
		if err := msg.Unmarshal(frame); err != nil {
			continue
		}
		return &msg, true
	}
}

// Ready reports the underlying link's readiness.
func (p *PlainLink) Ready() bool { return p.link.Ready() }

// Close shuts the underlying link down.
func (p *PlainLink) Close() error { return p.link.Close() }

// FrameLoopback is an in-memory FrameLink endpoint, the byte-level analogue
// of Loopback. Used to exercise the encrypting decorators without sockets.
type FrameLoopback struct {
	mu     sync.Mutex
	peer   *FrameLoopback
	queue  [][]byte
	closed bool
}

// NewFrameLoopbackPair returns two linked byte-level endpoints.
func NewFrameLoopbackPair() (*FrameLoopback, *FrameLoopback) {
	a := &FrameLoopback{}
	b := &FrameLoopback{}
	a.peer = b
	b.peer = a
	return a, b
}

// WriteFrame copies the frame into the peer's queue.
func (f *FrameLoopback) WriteFrame(frame []byte) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	peer := f.peer
	f.mu.Unlock()

	cp := make([]byte, len(frame))
	copy(cp, frame)

	peer.mu.Lock()
	defer peer.mu.Unlock()
	if peer.closed || len(peer.queue) >= queueCapacity {
		return ErrSendFailed
	}
	peer.queue = append(peer.queue, cp)
	return nil
}

// PollFrame returns the oldest queued frame.
func (f *FrameLoopback) PollFrame() ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil, false
	}
	frame := f.queue[0]
	f.queue = f.queue[1:]
	return frame, true
}

// Ready reports whether the endpoint is open.
func (f *FrameLoopback) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

// Close shuts the endpoint down and discards queued frames.
func (f *FrameLoopback) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.queue = nil
	return nil
}
