package mysensors

import (
	"github.com/sirupsen/logrus"

	"github.com/deepakipr/mysensors/message"
	"github.com/deepakipr/mysensors/storage"
)

// lockMessage is the fixed diagnostic a locked node broadcasts.
const lockMessage = "NODE LOCKED. TO UNLOCK, GROUND UNLOCK PIN AND RESET"

// noteSuspicious records one suspicious protocol event. The counter is
// persisted immediately so a reboot cannot launder it; crossing the
// threshold locks the node. Locking never reverts in software — recovery
// happens out of band, at boot, before this core runs.
func (n *Node) noteSuspicious(why string) {
	if n.lockCounter < 0xFF {
		n.lockCounter++
		n.store.SaveByte(storage.PosLockCounter, n.lockCounter)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "noteSuspicious",
		"subsystem": "lock",
		"reason":    why,
		"counter":   n.lockCounter,
		"threshold": n.opts.LockThreshold,
	}).Warn("Suspicious protocol event")

	if !n.locked && n.lockCounter >= n.opts.LockThreshold {
		n.locked = true
		logrus.WithFields(logrus.Fields{
			"function":  "noteSuspicious",
			"subsystem": "lock",
		}).Error("Suspicious event threshold exceeded, node locked")
	}
}

// IsLocked reports whether the tamper monitor has locked the node.
func (n *Node) IsLocked() bool { return n.locked }

// LockCounter reports the persisted suspicious-event count.
func (n *Node) LockCounter() uint8 { return n.lockCounter }

// ResetLockCounter clears the counter and the locked flag. Call only from
// boot-time recovery code after the out-of-band unlock condition (unlock pin
// held across reset) has been verified — the running core never unlocks
// itself.
func (n *Node) ResetLockCounter() {
	n.lockCounter = 0
	n.locked = false
	n.store.SaveByte(storage.PosLockCounter, 0)
	logrus.WithFields(logrus.Fields{
		"function":  "ResetLockCounter",
		"subsystem": "lock",
	}).Info("Node unlocked")
}

// checkNodeLock gates the boot sequence. A locked node never reaches the
// application callbacks; it broadcasts the diagnostic message on a long fixed
// interval, services the watchdog and discards inbound traffic until killed
// or physically reset.
func (n *Node) checkNodeLock() bool {
	if !n.locked {
		return false
	}
	n.nodeLock(lockMessage)
	return true
}

// nodeLock is the terminal broadcast loop of a locked node.
func (n *Node) nodeLock(diag string) {
	logrus.WithFields(logrus.Fields{
		"function":  "nodeLock",
		"subsystem": "lock",
		"counter":   n.lockCounter,
	}).Error("Node locked during boot")

	for n.ctx.Err() == nil {
		var msg message.Message
		msg.Clear()
		n.build(&msg, message.BroadcastAddress, message.NodeSensorID, message.CmdInternal, uint8(message.InternalLocked), false)
		msg.SetString(diag)
		_ = n.transport.Send(&msg)

		next := n.clock.Now().Add(n.opts.LockBroadcastInterval)
		for n.ctx.Err() == nil && n.clock.Now().Before(next) {
			n.power.ServiceWatchdog()
			// Drain and discard; a locked node answers nothing.
			for {
				if _, ok := n.transport.Poll(); !ok {
					break
				}
			}
			n.clock.Sleep(n.opts.YieldInterval)
		}
	}
}
