package mysensors

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deepakipr/mysensors/message"
	"github.com/deepakipr/mysensors/power"
)

var (
	// ErrNoSleepTime rejects a sleep issued from within an active
	// smart-sleep cycle with no time budget left.
	ErrNoSleepTime = errors.New("sleeping not possible, no time left")
	// ErrFirmwareUpdate rejects sleep while an OTA update is in flight.
	ErrFirmwareUpdate = errors.New("sleeping not possible, firmware update ongoing")
	// ErrRepeaterAwake rejects sleep on repeater nodes, which must stay
	// awake to relay.
	ErrRepeaterAwake = errors.New("sleeping not possible, repeater feature enabled")
)

// Sleep suspends the node (and radio) for d, waking on the timer. d == 0
// is rejected here because no interrupt is armed to wake the node.
// With smart true, queued traffic is flushed first: a heartbeat and a
// pre-sleep notification go out and inbound traffic is pumped for the
// configured window so responses are not lost across the power transition.
func (n *Node) Sleep(d time.Duration, smart bool) (power.WakeReason, error) {
	return n.sleep(d, smart, power.Interrupt{}, power.Interrupt{})
}

// SleepInterrupt is Sleep with one armed wake interrupt. d == 0 sleeps until
// the interrupt fires.
func (n *Node) SleepInterrupt(d time.Duration, smart bool, int1 power.Interrupt) (power.WakeReason, error) {
	return n.sleep(d, smart, int1, power.Interrupt{})
}

// SleepInterrupt2 is Sleep with two independently armed wake interrupts.
func (n *Node) SleepInterrupt2(d time.Duration, smart bool, int1, int2 power.Interrupt) (power.WakeReason, error) {
	return n.sleep(d, smart, int1, int2)
}

// SleepRemaining reports the unused portion of the last sleep: zero after a
// timer wake, requested minus elapsed after an interrupt wake. The interrupt
// figure is approximate; platform timers can be several seconds coarse while
// powered down, which is inherent and not an error.
func (n *Node) SleepRemaining() time.Duration {
	return n.sleepRemaining
}

// sleep is the single funnel every public sleep variant goes through. Each
// precondition is an independent fail-fast rejection with no transport or
// power side effects.
func (n *Node) sleep(d time.Duration, smart bool, int1, int2 power.Interrupt) (power.WakeReason, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "sleep",
		"subsystem":   "sleep",
		"duration_ms": d.Milliseconds(),
		"smart":       smart,
		"int1":        int1,
		"int2":        int2,
	}).Debug("Sleep requested")

	if n.inSmartSleep {
		logrus.WithFields(logrus.Fields{
			"function":  "sleep",
			"subsystem": "sleep",
		}).Warn("Sleeping not possible, no time left")
		return power.WakeReason{}, ErrNoSleepTime
	}
	if n.fwUpdateOngoing {
		logrus.WithFields(logrus.Fields{
			"function":  "sleep",
			"subsystem": "sleep",
		}).Warn("Sleeping not possible, FW update ongoing")
		return power.WakeReason{}, ErrFirmwareUpdate
	}
	if n.opts.IsRepeater {
		logrus.WithFields(logrus.Fields{
			"function":  "sleep",
			"subsystem": "sleep",
		}).Warn("Sleeping not possible, repeater feature enabled")
		return power.WakeReason{}, ErrRepeaterAwake
	}
	if d == 0 && !int1.Defined && !int2.Defined {
		return power.WakeReason{}, ErrNoSleepTime
	}

	if smart {
		if !n.flushBeforeSleep() {
			return power.WakeReason{}, ErrTransportNotReady
		}
	}

	requested := d
	start := n.clock.Now()
	reason := n.power.PowerDown(d, int1, int2)
	elapsed := n.clock.Now().Sub(start)

	switch reason.Source {
	case power.WakeTimer:
		n.sleepRemaining = 0
	case power.WakeInterrupt:
		remaining := requested - elapsed
		if remaining < 0 || requested == 0 {
			remaining = 0
		}
		n.sleepRemaining = remaining
	}

	logrus.WithFields(logrus.Fields{
		"function":  "sleep",
		"subsystem": "sleep",
		"source":    reason.Source,
		"interrupt": reason.Interrupt,
	}).Info("Node woke up")

	if smart {
		var msg message.Message
		msg.Clear()
		n.build(&msg, message.GatewayAddress, message.NodeSensorID, message.CmdInternal, uint8(message.InternalPostSleepNotification), false)
		msg.SetUInt32(uint32(requested.Milliseconds()))
		_ = n.sendRoute(&msg)
	}

	return reason, nil
}

// flushBeforeSleep runs the smart-sleep pre-flight: reconnect a not-ready
// transport within the bounded timeout, announce the sleep, and pump inbound
// traffic so queued responses are delivered before power-down.
func (n *Node) flushBeforeSleep() bool {
	if !n.transport.Ready() {
		logrus.WithFields(logrus.Fields{
			"function":  "flushBeforeSleep",
			"subsystem": "sleep",
		}).Warn("Transport not ready, attempting reconnect until timeout")
		if !n.waitTransportReady(n.opts.TransportReconnectTimeout) {
			return false
		}
	}

	_ = n.SendHeartbeat(false)

	var msg message.Message
	msg.Clear()
	n.build(&msg, message.GatewayAddress, message.NodeSensorID, message.CmdInternal, uint8(message.InternalPreSleepNotification), false)
	msg.SetUInt32(uint32(n.opts.SmartSleepWaitDuration.Milliseconds()))
	_ = n.sendRoute(&msg)

	n.inSmartSleep = true
	defer func() { n.inSmartSleep = false }()
	n.Wait(n.opts.SmartSleepWaitDuration)
	return true
}
