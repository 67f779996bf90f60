package mysensors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepakipr/mysensors/message"
	"github.com/deepakipr/mysensors/power"
)

func TestSleepRejectedDuringFirmwareUpdate(t *testing.T) {
	node, tr, pw, _ := newTestNode(nil)
	node.SetFirmwareUpdateOngoing(true)

	for _, d := range []time.Duration{0, time.Second, time.Hour} {
		_, err := node.SleepInterrupt(d, false, power.IRQ(3, power.TriggerRising))
		assert.ErrorIs(t, err, ErrFirmwareUpdate)
	}
	assert.Empty(t, pw.sleptFor, "no power action on rejection")
	assert.Empty(t, tr.sentMessages(), "no transport action on rejection")
}

func TestSleepRejectedOnRepeater(t *testing.T) {
	opts := NewOptions()
	opts.NodeID = 42
	opts.IsRepeater = true
	node, _, pw, _ := newTestNode(opts)

	_, err := node.Sleep(time.Second, false)
	assert.ErrorIs(t, err, ErrRepeaterAwake)
	assert.Empty(t, pw.sleptFor)
}

func TestSleepForeverWithoutInterruptRejected(t *testing.T) {
	node, _, pw, _ := newTestNode(nil)

	_, err := node.Sleep(0, false)
	assert.ErrorIs(t, err, ErrNoSleepTime)
	assert.Empty(t, pw.sleptFor)
}

func TestSleepWokenByInterruptReportsIndex(t *testing.T) {
	node, _, pw, _ := newTestNode(nil)
	pw.wake = power.WakeReason{Source: power.WakeInterrupt, Interrupt: 3}

	reason, err := node.SleepInterrupt(0, false, power.IRQ(3, power.TriggerRising))
	require.NoError(t, err)
	assert.Equal(t, power.WakeInterrupt, reason.Source)
	assert.Equal(t, uint8(3), reason.Interrupt)
	assert.Equal(t, time.Duration(0), node.SleepRemaining())
}

func TestSleepRemainingZeroAfterTimerWake(t *testing.T) {
	node, _, pw, _ := newTestNode(nil)
	pw.wake = power.WakeReason{Source: power.WakeTimer}

	_, err := node.Sleep(8*time.Second, false)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), node.SleepRemaining())
}

func TestSleepRemainingAfterInterruptWake(t *testing.T) {
	node, _, pw, _ := newTestNode(nil)
	pw.wake = power.WakeReason{Source: power.WakeInterrupt, Interrupt: 1}
	pw.elapse = 3 * time.Second

	_, err := node.SleepInterrupt(10*time.Second, false, power.IRQ(1, power.TriggerFalling))
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, node.SleepRemaining())
}

func TestSmartSleepSendsHeartbeatBeforePowerDown(t *testing.T) {
	node, tr, pw, _ := newTestNode(nil)

	var order []string
	tr.onSend = func(msg *message.Message) error {
		if msg.Command == message.CmdInternal && msg.Type == uint8(message.InternalHeartbeatResponse) {
			order = append(order, "heartbeat")
		}
		return nil
	}
	pw.onPowerDown = func(time.Duration, power.Interrupt, power.Interrupt) {
		order = append(order, "powerdown")
	}

	_, err := node.Sleep(time.Second, true)
	require.NoError(t, err)

	require.Contains(t, order, "heartbeat")
	require.Contains(t, order, "powerdown")
	assert.Equal(t, "heartbeat", order[0], "heartbeat must precede power-down")
	assert.Equal(t, "powerdown", order[len(order)-1])
}

func TestSmartSleepRejectedWhenTransportStaysDown(t *testing.T) {
	opts := NewOptions()
	opts.NodeID = 42
	opts.TransportReconnectTimeout = 50 * time.Millisecond
	node, tr, pw, _ := newTestNode(opts)
	tr.setReady(false)

	_, err := node.Sleep(time.Second, true)
	assert.ErrorIs(t, err, ErrTransportNotReady)
	assert.Empty(t, pw.sleptFor)
}

func TestPlainSleepIgnoresTransportReadiness(t *testing.T) {
	node, tr, pw, _ := newTestNode(nil)
	tr.setReady(false)

	_, err := node.Sleep(time.Second, false)
	require.NoError(t, err)
	assert.Len(t, pw.sleptFor, 1)
}

func TestSleepRejectedFromWithinSmartSleepCycle(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)

	var nestedErr error
	node.OnReceive(func(msg *message.Message) {
		_, nestedErr = node.Sleep(time.Second, false)
	})

	// Queue an application envelope that the smart-sleep drain will hand to
	// the callback above.
	var msg message.Message
	msg.Clear()
	message.Build(&msg, 9, 42, 1, message.CmdSet, uint8(message.VarStatus), false)
	tr.queueInbound(&msg)

	_, err := node.Sleep(time.Second, true)
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, ErrNoSleepTime)
}

func TestSmartSleepSendsPreAndPostNotifications(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)

	_, err := node.Sleep(2*time.Second, true)
	require.NoError(t, err)

	var types []uint8
	for _, m := range tr.sentMessages() {
		types = append(types, m.Type)
	}
	assert.Contains(t, types, uint8(message.InternalPreSleepNotification))
	assert.Contains(t, types, uint8(message.InternalPostSleepNotification))
}
