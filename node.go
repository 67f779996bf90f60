package mysensors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deepakipr/mysensors/message"
	"github.com/deepakipr/mysensors/power"
	"github.com/deepakipr/mysensors/storage"
	"github.com/deepakipr/mysensors/transport"
)

var (
	// ErrInvalidNodeID rejects node ids outside 0-254.
	ErrInvalidNodeID = errors.New("invalid node id")
	// ErrNotRegistered rejects ordinary traffic before registration.
	ErrNotRegistered = errors.New("node not registered")
	// ErrTransportNotReady rejects operations needing an established link.
	ErrTransportNotReady = errors.New("transport not ready")
	// ErrNodeLocked indicates the tamper monitor has locked the node.
	ErrNodeLocked = errors.New("node locked")
)

// RegistrationState tracks the handshake that admits the node to the network.
type RegistrationState uint8

const (
	RegUnregistered RegistrationState = iota
	RegRequestSent
	RegRegistered
)

// ControllerConfig is the controller-pushed node configuration.
type ControllerConfig struct {
	// Metric selects metric over imperial measurement units.
	Metric bool
}

// Node is the control core of one mesh participant. All methods must be
// called from a single goroutine; the core is cooperative and performs no
// internal locking (see package doc).
type Node struct {
	opts      *Options
	transport transport.Transport
	store     storage.Store
	power     power.Controller
	clock     TimeProvider

	// Identity, immutable after New.
	nodeID   uint8
	parentID uint8

	regState         RegistrationState
	controllerConfig ControllerConfig
	presentationSent bool

	heartbeat uint16

	// Sleep bookkeeping.
	fwUpdateOngoing bool
	sleepRemaining  time.Duration
	inSmartSleep    bool

	// Wait pump recursion guard.
	waitDepth int

	// Tamper lock monitor.
	lockCounter uint8
	locked      bool

	// Callbacks, all optional.
	receiveCB      func(*message.Message)
	receiveTimeCB  func(uint32)
	presentationCB func()
	beforeCB       func()
	setupCB        func()
	loopCB         func()

	// fatalHook runs on fatal misuse; defaults to the diagnostic loop.
	fatalHook func(reason string)

	ctx    context.Context
	cancel context.CancelFunc
}

// New wires a node from its collaborators. The node id comes from opts, or
// from persistent storage when opts.NodeID is message.BroadcastAddress (255).
func New(opts *Options, tr transport.Transport, store storage.Store, pw power.Controller) (*Node, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if tr == nil {
		return nil, errors.New("nil transport")
	}
	if store == nil {
		return nil, errors.New("nil storage")
	}
	if pw == nil {
		return nil, errors.New("nil power controller")
	}

	nodeID := opts.NodeID
	if nodeID == message.BroadcastAddress {
		nodeID = store.LoadByte(storage.PosNodeID)
	}
	if nodeID > message.MaxNodeID {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNodeID, nodeID)
	}

	ctx, cancel := context.WithCancel(context.Background())

	n := &Node{
		opts:      opts,
		transport: tr,
		store:     store,
		power:     pw,
		clock:     RealTimeProvider{},
		nodeID:    nodeID,
		parentID:  opts.ParentNodeID,
		heartbeat: 0,
		ctx:       ctx,
		cancel:    cancel,
	}
	n.fatalHook = n.infiniteLoop

	// The gateway is always registered; everyone else must earn it.
	if n.IsGateway() {
		n.regState = RegRegistered
	}

	// Restore the tamper counter; a fresh (erased) store reads 0xFF.
	counter := store.LoadByte(storage.PosLockCounter)
	if counter == 0xFF {
		counter = 0
		store.SaveByte(storage.PosLockCounter, 0)
	}
	n.lockCounter = counter
	n.locked = n.lockCounter >= opts.LockThreshold

	store.SaveByte(storage.PosNodeID, n.nodeID)
	store.SaveByte(storage.PosParentID, n.parentID)

	logrus.WithFields(logrus.Fields{
		"function":  "New",
		"subsystem": "core",
		"node_id":   n.nodeID,
		"parent_id": n.parentID,
		"repeater":  opts.IsRepeater,
		"locked":    n.locked,
	}).Info("Node core initialised")

	return n, nil
}

// SetTimeProvider replaces the clock. Must be called before Begin.
func (n *Node) SetTimeProvider(tp TimeProvider) {
	if tp != nil {
		n.clock = tp
	}
}

// OnReceive registers the inbound envelope callback.
func (n *Node) OnReceive(cb func(*message.Message)) { n.receiveCB = cb }

// OnReceiveTime registers the time-response callback.
func (n *Node) OnReceiveTime(cb func(uint32)) { n.receiveTimeCB = cb }

// OnPresentation registers the presentation callback, invoked after the node
// presents itself so the application can present its sensors.
func (n *Node) OnPresentation(cb func()) { n.presentationCB = cb }

// OnBefore registers the pre-initialisation callback.
func (n *Node) OnBefore(cb func()) { n.beforeCB = cb }

// OnSetup registers the post-initialisation callback.
func (n *Node) OnSetup(cb func()) { n.setupCB = cb }

// OnLoop registers the application loop body driven by Run.
func (n *Node) OnLoop(cb func()) { n.loopCB = cb }

// NodeID returns this node's id.
func (n *Node) NodeID() uint8 { return n.nodeID }

// ParentNodeID returns the routing next hop toward the gateway.
func (n *Node) ParentNodeID() uint8 { return n.parentID }

// IsGateway reports whether this node is the mesh root.
func (n *Node) IsGateway() bool { return n.nodeID == message.GatewayAddress }

// IsRegistered reports whether the node may send non-internal traffic.
func (n *Node) IsRegistered() bool { return n.regState == RegRegistered }

// RegistrationStatus returns the handshake state.
func (n *Node) RegistrationStatus() RegistrationState { return n.regState }

// ControllerConfig returns the most recent controller-pushed configuration.
func (n *Node) ControllerConfig() ControllerConfig { return n.controllerConfig }

// SetFirmwareUpdateOngoing flags an in-flight OTA update, which blocks sleep.
func (n *Node) SetFirmwareUpdateOngoing(ongoing bool) { n.fwUpdateOngoing = ongoing }

// SaveState persists one byte of application state. Positions 0-247 map past
// the core's reserved region.
func (n *Node) SaveState(pos uint8, value byte) {
	if pos > 0xFF-storage.ReservedEnd {
		logrus.WithFields(logrus.Fields{
			"function":  "SaveState",
			"subsystem": "core",
			"pos":       pos,
		}).Warn("State position out of range")
		return
	}
	n.store.SaveByte(pos+storage.ReservedEnd, value)
}

// LoadState reads one byte of application state saved with SaveState.
func (n *Node) LoadState(pos uint8) byte {
	if pos > 0xFF-storage.ReservedEnd {
		return 0xFF
	}
	return n.store.LoadByte(pos + storage.ReservedEnd)
}

// Begin runs the boot sequence: lock check, before(), transport wait,
// registration, presentation, setup(). It returns ErrNodeLocked after the
// diagnostic loop of a locked node ends (via Kill), and ErrTransportNotReady
// when the link never comes up.
func (n *Node) Begin() error {
	if n.checkNodeLock() {
		return ErrNodeLocked
	}

	if n.beforeCB != nil {
		n.beforeCB()
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Begin",
		"subsystem": "core",
		"node_id":   n.nodeID,
	}).Info("Node booting")

	if !n.waitTransportReady(n.opts.TransportReadyTimeout) {
		logrus.WithFields(logrus.Fields{
			"function":  "Begin",
			"subsystem": "core",
		}).Error("Transport failed to initialise")
		return ErrTransportNotReady
	}

	n.registerNode()

	n.PresentNode()
	if n.presentationCB != nil {
		n.presentationCB()
	}

	if n.setupCB != nil {
		n.setupCB()
	}

	logrus.WithFields(logrus.Fields{
		"function":   "Begin",
		"subsystem":  "core",
		"registered": n.IsRegistered(),
	}).Info("Node boot complete")
	return nil
}

// Run drives the main loop: process inbound traffic, run the application
// loop body, yield. Returns when Kill is called.
func (n *Node) Run() {
	for n.ctx.Err() == nil {
		n.Process()
		if n.loopCB != nil {
			n.loopCB()
		}
		n.doYield()
	}
}

// Kill stops Run, any diagnostic loop, and closes the transport.
func (n *Node) Kill() {
	n.cancel()
	_ = n.transport.Close()
}

// doYield performs one cooperative scheduling step: watchdog service plus a
// short pause on the injected clock.
func (n *Node) doYield() {
	n.power.ServiceWatchdog()
	n.clock.Sleep(n.opts.YieldInterval)
}

// waitTransportReady polls the link until it reports ready or the timeout
// elapses.
func (n *Node) waitTransportReady(timeout time.Duration) bool {
	deadline := n.clock.Now().Add(timeout)
	for {
		if n.transport.Ready() {
			return true
		}
		if !n.clock.Now().Before(deadline) {
			return false
		}
		n.doYield()
	}
}
