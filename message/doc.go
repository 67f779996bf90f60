// Package message implements the protocol envelope exchanged between mesh
// nodes and the gateway.
//
// A Message carries routing metadata (sender, destination, sensor), a command
// class with a sub-type, and a small typed payload. The wire form is a fixed
// seven byte header followed by at most MaxPayload payload bytes.
//
// Example:
//
//	var msg message.Message
//	message.Build(&msg, 12, message.GatewayAddress, 1, message.CmdSet, uint8(message.VarTemp), false)
//	msg.SetFloat32(21.5, 1)
//
//	wire, err := msg.Marshal()
//	if err != nil {
//	    log.Fatal(err)
//	}
package message
