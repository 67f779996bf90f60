package transport

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/flynn/noise"
	"github.com/sirupsen/logrus"

	"github.com/deepakipr/mysensors/message"
)

// handshakePollInterval paces the cooperative handshake loop.
const handshakePollInterval = 10 * time.Millisecond

var (
	// ErrHandshakeNotDone indicates data traffic before Handshake completed.
	ErrHandshakeNotDone = errors.New("noise handshake not complete")
	// ErrHandshakeFailed indicates the handshake could not be completed.
	ErrHandshakeFailed = errors.New("noise handshake failed")
)

// NoiseLink runs a Noise-XX handshake over the underlying frame link and then
// encrypts every envelope frame with the session ciphers. It is the link
// encryption option for radios that provide none of their own. It implements
// Transport.
type NoiseLink struct {
	link      FrameLink
	initiator bool
	hs        *noise.HandshakeState
	send      *noise.CipherState
	recv      *noise.CipherState
}

// NewNoiseLink wraps a frame link with Noise encryption. Exactly one side of
// the link must be the initiator. Handshake must complete before Send/Poll
// carry traffic.
func NewNoiseLink(link FrameLink, initiator bool) (*NoiseLink, error) {
	suite := noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashBLAKE2s)
	static, err := suite.GenerateKeypair(rand.Reader)
	if err != nil {
		return nil, err
	}
	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   suite,
		Pattern:       noise.HandshakeXX,
		Initiator:     initiator,
		StaticKeypair: static,
	})
	if err != nil {
		return nil, err
	}
	return &NoiseLink{link: link, initiator: initiator, hs: hs}, nil
}

// Handshake drives the three-message XX exchange to completion or until ctx
// expires. The initiator speaks first; both sides poll cooperatively.
func (n *NoiseLink) Handshake(ctx context.Context) error {
	logrus.WithFields(logrus.Fields{
		"function":  "Handshake",
		"initiator": n.initiator,
	}).Debug("Starting noise handshake")

	myTurn := n.initiator
	for n.send == nil {
		if err := ctx.Err(); err != nil {
			return ErrHandshakeFailed
		}

		if myTurn {
			out, cs1, cs2, err := n.hs.WriteMessage(nil, nil)
			if err != nil {
				return ErrHandshakeFailed
			}
			if err := n.link.WriteFrame(out); err != nil {
				return err
			}
			n.adoptCiphers(cs1, cs2)
			myTurn = false
			continue
		}

		frame, ok := n.link.PollFrame()
		if !ok {
			time.Sleep(handshakePollInterval)
			continue
		}
		_, cs1, cs2, err := n.hs.ReadMessage(nil, frame)
		if err != nil {
			return ErrHandshakeFailed
		}
		n.adoptCiphers(cs1, cs2)
		myTurn = true
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Handshake",
		"initiator": n.initiator,
	}).Info("Noise handshake complete")
	return nil
}

// adoptCiphers stores the session ciphers once the final handshake message
// yields them. The first cipher always carries initiator-to-responder traffic.
func (n *NoiseLink) adoptCiphers(cs1, cs2 *noise.CipherState) {
	if cs1 == nil || cs2 == nil {
		return
	}
	if n.initiator {
		n.send, n.recv = cs1, cs2
	} else {
		n.send, n.recv = cs2, cs1
	}
}

// Send encrypts the marshalled envelope with the session cipher.
func (n *NoiseLink) Send(msg *message.Message) error {
	if n.send == nil {
		return ErrHandshakeNotDone
	}
	frame, err := msg.Marshal()
	if err != nil {
		return err
	}
	sealed, err := n.send.Encrypt(nil, nil, frame)
	if err != nil {
		return err
	}
	return n.link.WriteFrame(sealed)
}

// Poll decrypts the next inbound frame, discarding any that fail.
func (n *NoiseLink) Poll() (*message.Message, bool) {
	if n.recv == nil {
		return nil, false
	}
	for {
		sealed, ok := n.link.PollFrame()
		if !ok {
			return nil, false
		}
		frame, err := n.recv.Decrypt(nil, nil, sealed)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Poll",
			}).Warn("Discarding frame that failed decryption")
			continue
		}
		var msg message.Message
		if err := msg.Unmarshal(frame); err != nil {
			continue
		}
		return &msg, true
	}
}

// Ready reports readiness of both the handshake and the underlying link.
func (n *NoiseLink) Ready() bool {
	return n.send != nil && n.link.Ready()
}

// Close shuts the underlying link down.
func (n *NoiseLink) Close() error {
	return n.link.Close()
}
