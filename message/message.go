package message

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"strconv"
)

// Message is one protocol envelope. The zero value is usable after Clear.
type Message struct {
	// Last is the node id of the most recent hop.
	Last        uint8
	Sender      uint8
	Destination uint8
	// Sensor is the child sensor id, or NodeSensorID for node-level traffic.
	Sensor  uint8
	Command Command
	// Type is the sub-type within Command (InternalType, VariableType or
	// SensorType depending on Command).
	Type uint8
	// EchoRequested asks the final destination to reflect the message back.
	EchoRequested bool
	// IsEcho marks an envelope that is such a reflection. Only ever set on
	// inbound traffic, never by the sender.
	IsEcho bool

	version     uint8
	payloadType PayloadType
	length      uint8
	data        [MaxPayload]byte
	// fPrecision is the decimal precision carried with float payloads.
	fPrecision uint8
}

// Clear resets the envelope to an empty, version-stamped state.
func (m *Message) Clear() {
	*m = Message{version: ProtocolVersion}
}

// Payload returns the raw payload bytes.
func (m *Message) Payload() []byte {
	return m.data[:m.length]
}

// GetPayloadType reports how the payload is encoded.
func (m *Message) GetPayloadType() PayloadType {
	return m.payloadType
}

// SetBytes stores an opaque payload, truncated to MaxPayload.
func (m *Message) SetBytes(value []byte) *Message {
	n := len(value)
	if n > MaxPayload {
		n = MaxPayload
	}
	m.length = uint8(n)
	m.payloadType = PayloadCustom
	copy(m.data[:], value[:n])
	return m
}

// SetString stores a string payload, truncated to MaxPayload.
func (m *Message) SetString(value string) *Message {
	n := len(value)
	if n > MaxPayload {
		n = MaxPayload
	}
	m.length = uint8(n)
	m.payloadType = PayloadString
	copy(m.data[:], value[:n])
	return m
}

// SetBool stores a single-byte boolean payload.
func (m *Message) SetBool(value bool) *Message {
	if value {
		return m.SetByte(1)
	}
	return m.SetByte(0)
}

// SetByte stores a single-byte payload.
func (m *Message) SetByte(value uint8) *Message {
	m.length = 1
	m.payloadType = PayloadByte
	m.data[0] = value
	return m
}

// SetInt16 stores a signed 16-bit payload.
func (m *Message) SetInt16(value int16) *Message {
	m.length = 2
	m.payloadType = PayloadInt16
	binary.LittleEndian.PutUint16(m.data[:], uint16(value))
	return m
}

// SetUInt16 stores an unsigned 16-bit payload.
func (m *Message) SetUInt16(value uint16) *Message {
	m.length = 2
	m.payloadType = PayloadUInt16
	binary.LittleEndian.PutUint16(m.data[:], value)
	return m
}

// SetInt32 stores a signed 32-bit payload.
func (m *Message) SetInt32(value int32) *Message {
	m.length = 4
	m.payloadType = PayloadInt32
	binary.LittleEndian.PutUint32(m.data[:], uint32(value))
	return m
}

// SetUInt32 stores an unsigned 32-bit payload.
func (m *Message) SetUInt32(value uint32) *Message {
	m.length = 4
	m.payloadType = PayloadUInt32
	binary.LittleEndian.PutUint32(m.data[:], value)
	return m
}

// SetFloat32 stores a 32-bit float payload plus its display precision.
func (m *Message) SetFloat32(value float32, precision uint8) *Message {
	m.length = 5
	m.payloadType = PayloadFloat32
	binary.LittleEndian.PutUint32(m.data[:], math.Float32bits(value))
	if precision > 8 {
		precision = 8
	}
	m.fPrecision = precision
	m.data[4] = m.fPrecision
	return m
}

// GetString renders the payload as text. Numeric payloads are formatted,
// custom payloads are hex encoded.
func (m *Message) GetString() string {
	switch m.payloadType {
	case PayloadString:
		return string(m.data[:m.length])
	case PayloadByte:
		return strconv.FormatUint(uint64(m.GetByte()), 10)
	case PayloadInt16:
		return strconv.FormatInt(int64(m.GetInt16()), 10)
	case PayloadUInt16:
		return strconv.FormatUint(uint64(m.GetUInt16()), 10)
	case PayloadInt32:
		return strconv.FormatInt(int64(m.GetInt32()), 10)
	case PayloadUInt32:
		return strconv.FormatUint(uint64(m.GetUInt32()), 10)
	case PayloadFloat32:
		return strconv.FormatFloat(float64(m.GetFloat32()), 'f', int(m.fPrecision), 32)
	case PayloadCustom:
		return hex.EncodeToString(m.data[:m.length])
	}
	return ""
}

// GetBool reports the payload as a boolean.
func (m *Message) GetBool() bool {
	return m.GetByte() != 0
}

// GetByte reports the payload as a single byte. String payloads are parsed,
// other types yield zero.
func (m *Message) GetByte() uint8 {
	switch m.payloadType {
	case PayloadByte:
		if m.length > 0 {
			return m.data[0]
		}
	case PayloadString:
		v, _ := strconv.ParseUint(string(m.data[:m.length]), 10, 8)
		return uint8(v)
	}
	return 0
}

// GetInt16 reports the payload as a signed 16-bit value.
func (m *Message) GetInt16() int16 {
	switch m.payloadType {
	case PayloadInt16:
		return int16(binary.LittleEndian.Uint16(m.data[:]))
	case PayloadString:
		v, _ := strconv.ParseInt(string(m.data[:m.length]), 10, 16)
		return int16(v)
	}
	return 0
}

// GetUInt16 reports the payload as an unsigned 16-bit value.
func (m *Message) GetUInt16() uint16 {
	switch m.payloadType {
	case PayloadUInt16:
		return binary.LittleEndian.Uint16(m.data[:])
	case PayloadString:
		v, _ := strconv.ParseUint(string(m.data[:m.length]), 10, 16)
		return uint16(v)
	}
	return 0
}

// GetInt32 reports the payload as a signed 32-bit value.
func (m *Message) GetInt32() int32 {
	switch m.payloadType {
	case PayloadInt32:
		return int32(binary.LittleEndian.Uint32(m.data[:]))
	case PayloadString:
		v, _ := strconv.ParseInt(string(m.data[:m.length]), 10, 32)
		return int32(v)
	}
	return 0
}

// GetUInt32 reports the payload as an unsigned 32-bit value.
func (m *Message) GetUInt32() uint32 {
	switch m.payloadType {
	case PayloadUInt32:
		return binary.LittleEndian.Uint32(m.data[:])
	case PayloadString:
		v, _ := strconv.ParseUint(string(m.data[:m.length]), 10, 32)
		return uint32(v)
	}
	return 0
}

// GetFloat32 reports the payload as a 32-bit float.
func (m *Message) GetFloat32() float32 {
	switch m.payloadType {
	case PayloadFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(m.data[:]))
	case PayloadString:
		v, _ := strconv.ParseFloat(string(m.data[:m.length]), 32)
		return float32(v)
	}
	return 0
}
