package message

// Build stamps routing and typing metadata onto an outbound envelope. The
// payload set on msg beforehand survives; IsEcho is always cleared because
// only the network may mark a message as an echo.
func Build(msg *Message, sender, destination, sensor uint8, command Command, typ uint8, requestEcho bool) *Message {
	msg.Sender = sender
	msg.Destination = destination
	msg.Sensor = sensor
	msg.Command = command
	msg.Type = typ
	msg.EchoRequested = requestEcho
	msg.IsEcho = false
	if msg.version == 0 {
		msg.version = ProtocolVersion
	}
	return msg
}

// BuildGateway prepares a node-level internal envelope with both sender and
// destination fixed to the gateway address, echo never requested.
func BuildGateway(msg *Message, typ InternalType) *Message {
	return Build(msg, GatewayAddress, GatewayAddress, NodeSensorID, CmdInternal, uint8(typ), false)
}
