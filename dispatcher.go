package mysensors

import (
	"github.com/sirupsen/logrus"

	"github.com/deepakipr/mysensors/message"
)

// Process drains at most one inbound envelope from the transport: validates
// it, reflects echo requests, resolves internal control messages, and
// forwards the rest to the application callback. Inbound envelopes are
// handled strictly in arrival order. It returns the processed envelope (also
// for internally consumed ones, so waits can match on them), or nil when the
// queue was empty or the envelope was dropped as anomalous.
func (n *Node) Process() *message.Message {
	msg, ok := n.transport.Poll()
	if !ok {
		return nil
	}

	if !n.validateInbound(msg) {
		return nil
	}

	// Reflect echo requests before local handling: the reflection carries
	// the original contents with sender and destination swapped.
	if msg.EchoRequested && !msg.IsEcho && msg.Destination == n.nodeID {
		echo := *msg
		echo.Destination = msg.Sender
		echo.Sender = n.nodeID
		echo.IsEcho = true
		echo.EchoRequested = false
		if err := n.sendRoute(&echo); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "Process",
				"subsystem":   "dispatch",
				"destination": echo.Destination,
				"error":       err,
			}).Warn("Echo reflection not accepted by first hop")
		}
	}

	if msg.Command == message.CmdInternal && n.processInternalMessage(msg) {
		return msg
	}

	if n.receiveCB != nil {
		n.receiveCB(msg)
	}
	return msg
}

// validateInbound screens protocol anomalies. Anomalous envelopes are
// dropped and counted by the tamper monitor instead of failing the call.
func (n *Node) validateInbound(msg *message.Message) bool {
	switch {
	case msg.Sender == n.nodeID && !msg.IsEcho:
		// Somebody on the air claims our identity.
		n.noteSuspicious("sender spoofs own node id")
		return false
	case msg.Sender > message.MaxNodeID && msg.Sender != message.BroadcastAddress:
		n.noteSuspicious("invalid sender id")
		return false
	case msg.Command > message.CmdStream:
		n.noteSuspicious("unknown command")
		return false
	case msg.Destination != n.nodeID && msg.Destination != message.BroadcastAddress:
		// Not ours; leaf nodes do not relay.
		return false
	}
	return true
}

// processInternalMessage resolves internal control envelopes. It reports true
// when the message was fully handled and needs no propagation to the
// application callback.
func (n *Node) processInternalMessage(msg *message.Message) bool {
	switch message.InternalType(msg.Type) {
	case message.InternalRegistrationResponse:
		n.handleRegistrationResponse(msg)
		return true

	case message.InternalTime:
		if n.receiveTimeCB != nil {
			n.receiveTimeCB(msg.GetUInt32())
		}
		return true

	case message.InternalConfig:
		payload := msg.GetString()
		n.controllerConfig.Metric = len(payload) == 0 || payload[0] == 'M' || payload[0] == 'm'
		logrus.WithFields(logrus.Fields{
			"function":  "processInternalMessage",
			"subsystem": "dispatch",
			"metric":    n.controllerConfig.Metric,
		}).Debug("Controller config updated")
		return true

	case message.InternalPing:
		var pong message.Message
		pong.Clear()
		n.build(&pong, msg.Sender, message.NodeSensorID, message.CmdInternal, uint8(message.InternalPong), false)
		pong.SetByte(1)
		_ = n.sendRoute(&pong)
		return true

	case message.InternalHeartbeatRequest:
		_ = n.SendHeartbeat(false)
		return true

	case message.InternalDiscoverRequest:
		var resp message.Message
		resp.Clear()
		n.build(&resp, msg.Sender, message.NodeSensorID, message.CmdInternal, uint8(message.InternalDiscoverResponse), false)
		resp.SetByte(n.parentID)
		_ = n.sendRoute(&resp)
		return true

	case message.InternalRegistrationRequest:
		// Nodes never grant registration; a request addressed to a
		// non-gateway node is either misrouted or probing.
		if !n.IsGateway() {
			n.noteSuspicious("registration request sent to leaf node")
			return true
		}
		return false
	}

	// Unrecognised internal sub-types propagate so generic listeners see
	// them.
	return false
}
