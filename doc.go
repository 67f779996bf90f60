// Package mysensors implements the node-side control core of a wireless mesh
// sensor/actuator network.
//
// A Node builds and routes protocol envelopes between this device and the
// network gateway, drives the one-time registration handshake, arbitrates
// entry into low-power sleep, and enforces a tamper-lockout policy when the
// protocol traffic it sees turns suspicious. The radio, persistent byte
// storage and platform power primitives are injected collaborators.
//
// Example:
//
//	opts := mysensors.NewOptions()
//	opts.NodeID = 12
//	opts.SketchName = "garden-temp"
//
//	node, err := mysensors.New(opts, link, store, pwr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	node.OnReceive(func(msg *message.Message) {
//	    fmt.Printf("from %d: %s\n", msg.Sender, msg.GetString())
//	})
//
//	if err := node.Begin(); err != nil {
//	    log.Fatal(err)
//	}
//	node.Run()
package mysensors
