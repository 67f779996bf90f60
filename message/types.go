package message

// Command classifies the top-level purpose of a message.
type Command uint8

const (
	CmdPresentation Command = iota
	CmdSet
	CmdReq
	CmdInternal
	CmdStream
)

// PayloadType identifies how the payload bytes are interpreted.
type PayloadType uint8

const (
	PayloadString PayloadType = iota
	PayloadByte
	PayloadInt16
	PayloadUInt16
	PayloadInt32
	PayloadUInt32
	PayloadCustom
	PayloadFloat32
)

// InternalType is the sub-type of a CmdInternal message.
type InternalType uint8

const (
	InternalBatteryLevel InternalType = iota
	InternalTime
	InternalVersion
	InternalIDRequest
	InternalIDResponse
	InternalInclusionMode
	InternalConfig
	InternalFindParent
	InternalFindParentResponse
	InternalLogMessage
	InternalChildren
	InternalSketchName
	InternalSketchVersion
	InternalReboot
	InternalGatewayReady
	InternalSigningPresentation
	InternalNonceRequest
	InternalNonceResponse
	InternalHeartbeatRequest
	InternalPresentation
	InternalDiscoverRequest
	InternalDiscoverResponse
	InternalHeartbeatResponse
	InternalLocked
	InternalPing
	InternalPong
	InternalRegistrationRequest
	InternalRegistrationResponse
	InternalDebug
	InternalSignalReportRequest
	InternalSignalReportReverse
	InternalSignalReportResponse
	InternalPreSleepNotification
	InternalPostSleepNotification
)

// SensorType describes a presented sensor/actuator child.
type SensorType uint8

const (
	SensorDoor         SensorType = 0
	SensorMotion       SensorType = 1
	SensorSmoke        SensorType = 2
	SensorBinary       SensorType = 3
	SensorDimmer       SensorType = 4
	SensorCover        SensorType = 5
	SensorTemp         SensorType = 6
	SensorHum          SensorType = 7
	SensorBaro         SensorType = 8
	SensorNode         SensorType = 17
	SensorRepeaterNode SensorType = 18
	SensorLock         SensorType = 19
	SensorInfo         SensorType = 36
	SensorCustom       SensorType = 23
)

// VariableType describes a sensor value carried by CmdSet/CmdReq messages.
type VariableType uint8

const (
	VarTemp       VariableType = 0
	VarHum        VariableType = 1
	VarStatus     VariableType = 2
	VarPercentage VariableType = 3
	VarPressure   VariableType = 4
	VarForecast   VariableType = 5
	VarTripped    VariableType = 16
	VarVar1       VariableType = 24
	VarVar2       VariableType = 25
	VarVar3       VariableType = 26
	VarVar4       VariableType = 27
	VarVar5       VariableType = 28
	VarLockStatus VariableType = 36
	VarText       VariableType = 47
	VarCustom     VariableType = 48
)

const (
	// GatewayAddress is the node id of the mesh root.
	GatewayAddress uint8 = 0
	// BroadcastAddress targets every node in range.
	BroadcastAddress uint8 = 255
	// NodeSensorID is the reserved sensor id for node-level messages.
	NodeSensorID uint8 = 255
	// MaxNodeID is the highest assignable node id.
	MaxNodeID uint8 = 254
	// MaxPayload is the payload capacity of one envelope.
	MaxPayload = 25
	// ProtocolVersion is stamped into every envelope header.
	ProtocolVersion uint8 = 2
)
