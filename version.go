package mysensors

// coreVersion is the library version presented to the controller.
const coreVersion = "2.4.0"

// coreProtocolVersion is carried in registration requests so the gateway can
// reject incompatible nodes.
const coreProtocolVersion uint8 = 2
