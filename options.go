package mysensors

import "time"

// Options configures a Node. Use NewOptions for defaults.
type Options struct {
	// NodeID is this node's address (0-254). message.GatewayAddress makes
	// the node the gateway, which skips registration entirely.
	NodeID uint8

	// ParentNodeID is the routing next hop toward the gateway.
	ParentNodeID uint8

	// IsRepeater keeps the radio awake to relay traffic; repeater nodes
	// refuse to sleep.
	IsRepeater bool

	// SketchName and SketchVersion describe the application to the
	// controller via SendSketchInfo.
	SketchName    string
	SketchVersion string

	// RegistrationRetryInterval is how long the boot sequence waits for a
	// registration response before re-emitting the request.
	RegistrationRetryInterval time.Duration

	// SmartSleepWaitDuration is the inbound-drain window between the
	// pre-sleep heartbeat and the actual power-down.
	SmartSleepWaitDuration time.Duration

	// TransportReconnectTimeout bounds how long a smart sleep waits for a
	// not-ready transport before giving up.
	TransportReconnectTimeout time.Duration

	// TransportReadyTimeout bounds how long Begin waits for the link.
	TransportReadyTimeout time.Duration

	// LockThreshold is the suspicious-event count that locks the node.
	LockThreshold uint8

	// LockBroadcastInterval paces the diagnostic broadcast of a locked node.
	LockBroadcastInterval time.Duration

	// YieldInterval paces the cooperative wait pump.
	YieldInterval time.Duration
}

// NewOptions returns the defaults for a battery-powered leaf node.
func NewOptions() *Options {
	return &Options{
		NodeID:                    255, // must be set explicitly
		ParentNodeID:              0,
		RegistrationRetryInterval: 2 * time.Second,
		SmartSleepWaitDuration:    500 * time.Millisecond,
		TransportReconnectTimeout: 10 * time.Second,
		TransportReadyTimeout:     10 * time.Second,
		LockThreshold:             5,
		LockBroadcastInterval:     30 * time.Minute,
		YieldInterval:             time.Millisecond,
	}
}
