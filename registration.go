package mysensors

import (
	"github.com/sirupsen/logrus"

	"github.com/deepakipr/mysensors/message"
)

// registerNode drives the registration handshake until the node is admitted.
// Gateways skip the exchange. The request is re-emitted after every retry
// interval; repeated denial keeps the node retrying, there is no terminal
// failure state. Only the dispatcher moves the state out of RegRequestSent.
func (n *Node) registerNode() {
	if n.IsGateway() {
		logrus.WithFields(logrus.Fields{
			"function":  "registerNode",
			"subsystem": "registration",
		}).Debug("Registration not needed")
		return
	}

	attempt := 0
	for !n.IsRegistered() && n.ctx.Err() == nil {
		attempt++
		n.sendRegistrationRequest(attempt)
		n.WaitCmdType(n.opts.RegistrationRetryInterval, message.CmdInternal, uint8(message.InternalRegistrationResponse))
	}
}

// sendRegistrationRequest emits one request envelope and records the state.
func (n *Node) sendRegistrationRequest(attempt int) {
	var msg message.Message
	msg.Clear()
	n.build(&msg, message.GatewayAddress, message.NodeSensorID, message.CmdInternal, uint8(message.InternalRegistrationRequest), false)
	msg.SetByte(coreProtocolVersion)

	logrus.WithFields(logrus.Fields{
		"function":  "sendRegistrationRequest",
		"subsystem": "registration",
		"attempt":   attempt,
	}).Info("Registration request")

	if err := n.sendRoute(&msg); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "sendRegistrationRequest",
			"subsystem": "registration",
			"error":     err,
		}).Warn("Registration request not accepted by first hop")
	}
	if n.regState == RegUnregistered {
		n.regState = RegRequestSent
	}
}

// handleRegistrationResponse is the single place registration state changes
// on network input. Called from the dispatcher only.
func (n *Node) handleRegistrationResponse(msg *message.Message) {
	granted := msg.GetBool()
	logrus.WithFields(logrus.Fields{
		"function":   "handleRegistrationResponse",
		"subsystem":  "registration",
		"registered": granted,
	}).Info("Registration response received")

	if granted {
		n.regState = RegRegistered
		return
	}
	// Denied: stay in RegRequestSent so the retry loop re-emits.
	if n.regState == RegRegistered {
		return
	}
	n.regState = RegRequestSent
}
