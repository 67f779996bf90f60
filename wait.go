package mysensors

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deepakipr/mysensors/message"
)

// Wait pauses for d while keeping inbound traffic flowing: each pump
// iteration services the watchdog, processes one envelope and yields. The
// radio stays up. Calling Wait from inside a running wait (for example from
// the OnReceive callback) is fatal misuse: nested waits would make timeout
// and ordering semantics ambiguous, so the node reports the recursion and
// halts in a diagnostic loop instead of nesting.
func (n *Node) Wait(d time.Duration) {
	n.waitFiltered(d, false, 0, false, 0)
}

// WaitCmd waits up to d for an inbound envelope with the given command,
// reporting whether one arrived.
func (n *Node) WaitCmd(d time.Duration, cmd message.Command) bool {
	return n.waitFiltered(d, true, cmd, false, 0)
}

// WaitCmdType waits up to d for an inbound envelope with the given command
// and sub-type, reporting whether one arrived.
func (n *Node) WaitCmdType(d time.Duration, cmd message.Command, typ uint8) bool {
	return n.waitFiltered(d, true, cmd, true, typ)
}

func (n *Node) waitFiltered(d time.Duration, filterCmd bool, cmd message.Command, filterType bool, typ uint8) bool {
	if n.waitDepth > 0 {
		logrus.WithFields(logrus.Fields{
			"function":  "waitFiltered",
			"subsystem": "wait",
			"depth":     n.waitDepth,
		}).Error("Recursive wait detected")
		n.fatalHook("recursive wait")
		return false
	}
	n.waitDepth++
	defer func() { n.waitDepth-- }()

	deadline := n.clock.Now().Add(d)
	for n.ctx.Err() == nil {
		n.doYield()
		msg := n.Process()
		if filterCmd && msg != nil && msg.Command == cmd && (!filterType || msg.Type == typ) {
			return true
		}
		if !n.clock.Now().Before(deadline) {
			return false
		}
	}
	return false
}

// infiniteLoop is the terminal diagnostic state for unrecoverable misuse.
// Continuing normal execution after, say, a recursive wait risks undefined
// message ordering, so the node only services the watchdog and logs until it
// is killed or reset.
func (n *Node) infiniteLoop(reason string) {
	logrus.WithFields(logrus.Fields{
		"function":  "infiniteLoop",
		"subsystem": "core",
		"reason":    reason,
	}).Error("Entering diagnostic halt")

	for n.ctx.Err() == nil {
		n.power.ServiceWatchdog()
		n.clock.Sleep(time.Second)
	}
}
