package mysensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepakipr/mysensors/message"
)

func TestSendUnregisteredFailsFast(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)
	require.False(t, node.IsRegistered())

	var msg message.Message
	msg.Clear()
	message.Build(&msg, node.NodeID(), message.GatewayAddress, 1, message.CmdSet, uint8(message.VarTemp), false)
	msg.SetFloat32(21.5, 1)

	err := node.Send(&msg, false)
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Empty(t, tr.sentMessages(), "no transport call may happen for rejected sends")
}

func TestSendInternalAllowedWhileUnregistered(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)

	err := node.SendHeartbeat(false)
	require.NoError(t, err)

	sent := tr.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, message.CmdInternal, sent[0].Command)
	assert.Equal(t, uint8(message.InternalHeartbeatResponse), sent[0].Type)
}

func TestGatewayAlwaysRegistered(t *testing.T) {
	opts := NewOptions()
	opts.NodeID = message.GatewayAddress
	node, tr, _, _ := newTestNode(opts)

	require.True(t, node.IsRegistered())

	var msg message.Message
	msg.Clear()
	message.Build(&msg, 0, 12, 1, message.CmdSet, uint8(message.VarStatus), false)
	msg.SetBool(true)
	require.NoError(t, node.Send(&msg, false))
	assert.Len(t, tr.sentMessages(), 1)
}

func TestSendStampsSenderAndClearsEcho(t *testing.T) {
	opts := NewOptions()
	opts.NodeID = message.GatewayAddress
	node, tr, _, _ := newTestNode(opts)

	var msg message.Message
	msg.Clear()
	msg.Sender = 99
	msg.IsEcho = true
	msg.Destination = 7
	msg.Command = message.CmdSet

	require.NoError(t, node.Send(&msg, true))

	sent := tr.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, node.NodeID(), sent[0].Sender)
	assert.False(t, sent[0].IsEcho)
	assert.True(t, sent[0].EchoRequested)
}

func TestHeartbeatCounterStartsAtOne(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)

	require.NoError(t, node.SendHeartbeat(false))
	require.NoError(t, node.SendHeartbeat(false))

	sent := tr.sentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, uint16(1), sent[0].GetUInt16())
	assert.Equal(t, uint16(2), sent[1].GetUInt16())
}

func TestPresentRequiresRegistration(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)

	err := node.Present(3, message.SensorTemp, "outdoor", false)
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Empty(t, tr.sentMessages())
}

func TestBatteryLevelClamped(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)

	require.NoError(t, node.SendBatteryLevel(150, false))
	sent := tr.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, uint8(100), sent[0].GetByte())
	assert.Equal(t, uint8(message.InternalBatteryLevel), sent[0].Type)
}

func TestRequestTimeBuildsInternalEnvelope(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)

	require.NoError(t, node.RequestTime(false))
	sent := tr.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, message.CmdInternal, sent[0].Command)
	assert.Equal(t, uint8(message.InternalTime), sent[0].Type)
	assert.Equal(t, message.NodeSensorID, sent[0].Sensor)
	assert.Equal(t, message.GatewayAddress, sent[0].Destination)
}

func TestSaveLoadStateOffsetsPastReservedRegion(t *testing.T) {
	node, _, _, _ := newTestNode(nil)

	node.SaveState(0, 0xAB)
	assert.Equal(t, byte(0xAB), node.LoadState(0))

	// Reserved positions must stay untouched by user state.
	assert.NotEqual(t, byte(0xAB), node.store.LoadByte(0))
}
