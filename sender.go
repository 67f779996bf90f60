package mysensors

import (
	"github.com/sirupsen/logrus"

	"github.com/deepakipr/mysensors/message"
)

// Send routes an outbound envelope toward its destination, stamping this
// node as the sender. It fails fast with ErrNotRegistered for non-internal
// traffic before registration completes; a nil return means only that the
// first hop accepted the envelope. When echo is true the final destination
// reflects the message back and it arrives at the OnReceive callback with
// IsEcho set; this call never waits for that.
func (n *Node) Send(msg *message.Message, echo bool) error {
	msg.Sender = n.nodeID
	msg.EchoRequested = echo
	msg.IsEcho = false
	return n.sendRoute(msg)
}

// sendRoute enforces the registration precondition and hands the envelope to
// the transport.
func (n *Node) sendRoute(msg *message.Message) error {
	if !n.IsRegistered() && msg.Command != message.CmdInternal {
		logrus.WithFields(logrus.Fields{
			"function":    "sendRoute",
			"subsystem":   "send",
			"destination": msg.Destination,
			"command":     msg.Command,
		}).Warn("Node not registered, cannot send message")
		return ErrNotRegistered
	}

	if err := n.transport.Send(msg); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "sendRoute",
			"subsystem":   "send",
			"destination": msg.Destination,
			"error":       err,
		}).Warn("First hop did not accept envelope")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function":    "sendRoute",
		"subsystem":   "send",
		"destination": msg.Destination,
		"sensor":      msg.Sensor,
		"command":     msg.Command,
		"type":        msg.Type,
		"echo":        msg.EchoRequested,
	}).Debug("Envelope sent")
	return nil
}

// build stamps this node's routing metadata onto msg.
func (n *Node) build(msg *message.Message, destination, sensor uint8, command message.Command, typ uint8, echo bool) *message.Message {
	return message.Build(msg, n.nodeID, destination, sensor, command, typ, echo)
}

// Present announces one attached sensor to the gateway. Every sensor should
// be presented before its values are sent.
func (n *Node) Present(sensorID uint8, sensorType message.SensorType, description string, echo bool) error {
	var msg message.Message
	msg.Clear()
	n.build(&msg, message.GatewayAddress, sensorID, message.CmdPresentation, uint8(sensorType), echo)
	msg.SetString(description)
	return n.sendRoute(&msg)
}

// PresentNode announces the node itself (sensor id 255) to the gateway and
// marks the presentation as sent.
func (n *Node) PresentNode() {
	typ := message.SensorNode
	if n.opts.IsRepeater {
		typ = message.SensorRepeaterNode
	}

	var msg message.Message
	msg.Clear()
	n.build(&msg, message.GatewayAddress, message.NodeSensorID, message.CmdPresentation, uint8(typ), false)
	msg.SetString(coreVersion)
	if err := n.sendRoute(&msg); err == nil {
		n.presentationSent = true
	}

	if n.opts.SketchName != "" || n.opts.SketchVersion != "" {
		_ = n.SendSketchInfo(n.opts.SketchName, n.opts.SketchVersion, false)
	}
}

// SendSketchInfo sends the application name and version to the gateway as two
// internal envelopes.
func (n *Node) SendSketchInfo(name, version string, echo bool) error {
	var msg message.Message
	if name != "" {
		msg.Clear()
		n.build(&msg, message.GatewayAddress, message.NodeSensorID, message.CmdInternal, uint8(message.InternalSketchName), echo)
		msg.SetString(name)
		if err := n.sendRoute(&msg); err != nil {
			return err
		}
	}
	if version != "" {
		msg.Clear()
		n.build(&msg, message.GatewayAddress, message.NodeSensorID, message.CmdInternal, uint8(message.InternalSketchVersion), echo)
		msg.SetString(version)
		return n.sendRoute(&msg)
	}
	return nil
}

// SendBatteryLevel reports the battery percentage (0-100) to the gateway.
func (n *Node) SendBatteryLevel(level uint8, echo bool) error {
	if level > 100 {
		level = 100
	}
	var msg message.Message
	msg.Clear()
	n.build(&msg, message.GatewayAddress, message.NodeSensorID, message.CmdInternal, uint8(message.InternalBatteryLevel), echo)
	msg.SetByte(level)
	return n.sendRoute(&msg)
}

// SendHeartbeat sends an I'm-alive message carrying an incrementing counter
// that starts at 1 after power-on.
func (n *Node) SendHeartbeat(echo bool) error {
	n.heartbeat++
	var msg message.Message
	msg.Clear()
	n.build(&msg, message.GatewayAddress, message.NodeSensorID, message.CmdInternal, uint8(message.InternalHeartbeatResponse), echo)
	msg.SetUInt16(n.heartbeat)
	return n.sendRoute(&msg)
}

// SendSignalStrength reports link quality (e.g. RSSI) to the gateway.
func (n *Node) SendSignalStrength(level int16, echo bool) error {
	var msg message.Message
	msg.Clear()
	n.build(&msg, message.GatewayAddress, message.NodeSensorID, message.CmdInternal, uint8(message.InternalSignalReportResponse), echo)
	msg.SetInt16(level)
	return n.sendRoute(&msg)
}

// SendTXPowerLevel reports the transmit power level (e.g. dBm) to the gateway.
func (n *Node) SendTXPowerLevel(level uint8, echo bool) error {
	var msg message.Message
	msg.Clear()
	n.build(&msg, message.GatewayAddress, message.NodeSensorID, message.CmdInternal, uint8(message.InternalSignalReportResponse), echo)
	msg.SetByte(level)
	return n.sendRoute(&msg)
}

// Request asks destination for the current value of one sensor variable. The
// answer arrives through OnReceive.
func (n *Node) Request(sensorID uint8, variableType message.VariableType, destination uint8) error {
	var msg message.Message
	msg.Clear()
	n.build(&msg, destination, sensorID, message.CmdReq, uint8(variableType), false)
	msg.SetString("")
	return n.sendRoute(&msg)
}

// RequestTime asks the controller for the current time. The answer arrives
// through OnReceiveTime.
func (n *Node) RequestTime(echo bool) error {
	var msg message.Message
	msg.Clear()
	n.build(&msg, message.GatewayAddress, message.NodeSensorID, message.CmdInternal, uint8(message.InternalTime), echo)
	msg.SetString("")
	return n.sendRoute(&msg)
}
