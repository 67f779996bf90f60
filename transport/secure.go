package transport

import (
	"crypto/rand"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/deepakipr/mysensors/message"
)

const nonceSize = 24

// SecureLink seals every envelope frame with an authenticated secretbox under
// a pre-shared 32-byte network key before handing it to the underlying frame
// link. Inbound frames that fail to open are dropped. It implements Transport.
type SecureLink struct {
	link FrameLink
	key  [32]byte
}

// NewSecureLink wraps a frame link with pre-shared-key encryption.
func NewSecureLink(link FrameLink, key [32]byte) *SecureLink {
	return &SecureLink{link: link, key: key}
}

// Send marshals, seals and forwards the envelope.
func (s *SecureLink) Send(msg *message.Message) error {
	frame, err := msg.Marshal()
	if err != nil {
		return err
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return err
	}
	sealed := secretbox.Seal(nonce[:], frame, &nonce, &s.key)
	return s.link.WriteFrame(sealed)
}

// Poll opens the next inbound frame, discarding any that fail authentication.
func (s *SecureLink) Poll() (*message.Message, bool) {
	for {
		sealed, ok := s.link.PollFrame()
		if !ok {
			return nil, false
		}

		if len(sealed) < nonceSize+secretbox.Overhead {
			logrus.WithFields(logrus.Fields{
				"function": "Poll",
				"bytes":    len(sealed),
			}).Warn("Discarding sealed frame shorter than nonce")
			continue
		}

		var nonce [nonceSize]byte
		copy(nonce[:], sealed[:nonceSize])
		frame, opened := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
		if !opened {
			logrus.WithFields(logrus.Fields{
				"function": "Poll",
			}).Warn("Discarding frame that failed authentication")
			continue
		}

		var msg message.Message
		if err := msg.Unmarshal(frame); err != nil {
			continue
		}
		return &msg, true
	}
}

// Ready reports the underlying link's readiness.
func (s *SecureLink) Ready() bool {
	return s.link.Ready()
}

// Close shuts the underlying link down.
func (s *SecureLink) Close() error {
	return s.link.Close()
}
