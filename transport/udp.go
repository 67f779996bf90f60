package transport

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// udpReadTimeout paces the read loop so Close is observed promptly.
const udpReadTimeout = 100 * time.Millisecond

// UDPFrameLink carries frames as UDP datagrams to a single peer, typically a
// gateway uplink on mains-powered nodes. One datagram is one frame.
type UDPFrameLink struct {
	conn     net.PacketConn
	peerAddr net.Addr
	inbound  chan []byte
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewUDPFrameLink binds listenAddr and targets peerAddr for outbound frames.
func NewUDPFrameLink(listenAddr, peerAddr string) (*UDPFrameLink, error) {
	conn, err := net.ListenPacket("udp", listenAddr)
	if err != nil {
		return nil, err
	}
	peer, err := net.ResolveUDPAddr("udp", peerAddr)
	if err != nil {
		conn.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	link := &UDPFrameLink{
		conn:     conn,
		peerAddr: peer,
		inbound:  make(chan []byte, queueCapacity),
		ctx:      ctx,
		cancel:   cancel,
	}

	go link.readLoop()

	logrus.WithFields(logrus.Fields{
		"function": "NewUDPFrameLink",
		"local":    conn.LocalAddr().String(),
		"peer":     peerAddr,
	}).Info("UDP link established")

	return link, nil
}

// NewUDPLink is a convenience constructor returning an unencrypted
// envelope-level transport over a UDP frame link.
func NewUDPLink(listenAddr, peerAddr string) (*PlainLink, error) {
	link, err := NewUDPFrameLink(listenAddr, peerAddr)
	if err != nil {
		return nil, err
	}
	return NewPlainLink(link), nil
}

// WriteFrame sends one datagram toward the peer.
func (u *UDPFrameLink) WriteFrame(frame []byte) error {
	if _, err := u.conn.WriteTo(frame, u.peerAddr); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "WriteFrame",
			"error":    err,
		}).Warn("UDP send failed")
		return ErrSendFailed
	}
	return nil
}

// PollFrame returns the next inbound datagram.
func (u *UDPFrameLink) PollFrame() ([]byte, bool) {
	select {
	case frame := <-u.inbound:
		return frame, true
	default:
		return nil, false
	}
}

// Ready reports whether the link is still open.
func (u *UDPFrameLink) Ready() bool {
	return u.ctx.Err() == nil
}

// Close shuts the link down.
func (u *UDPFrameLink) Close() error {
	u.cancel()
	return u.conn.Close()
}

// LocalAddr returns the bound local address.
func (u *UDPFrameLink) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

func (u *UDPFrameLink) readLoop() {
	buffer := make([]byte, 512)
	for u.ctx.Err() == nil {
		_ = u.conn.SetReadDeadline(time.Now().Add(udpReadTimeout))
		n, _, err := u.conn.ReadFrom(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return
		}

		frame := make([]byte, n)
		copy(frame, buffer[:n])
		select {
		case u.inbound <- frame:
		default:
			// Queue full, oldest traffic wins.
		}
	}
}
