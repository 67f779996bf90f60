package message

import "errors"

var (
	// ErrTooShort indicates a frame smaller than the fixed header.
	ErrTooShort = errors.New("message frame too short")
	// ErrBadVersion indicates a frame from an incompatible protocol version.
	ErrBadVersion = errors.New("message protocol version mismatch")
	// ErrPayloadTooLong indicates a declared payload length past the frame end
	// or past MaxPayload.
	ErrPayloadTooLong = errors.New("message payload too long")
)

// headerSize is the fixed wire header:
// [last][sender][destination][version|length<<3][command|echoReq<<3|echo<<4|payloadType<<5][type][sensor]
const headerSize = 7

// Marshal encodes the envelope into its wire form.
func (m *Message) Marshal() ([]byte, error) {
	if m.length > MaxPayload {
		return nil, ErrPayloadTooLong
	}
	version := m.version
	if version == 0 {
		version = ProtocolVersion
	}

	out := make([]byte, headerSize+int(m.length))
	out[0] = m.Last
	out[1] = m.Sender
	out[2] = m.Destination
	out[3] = (version & 0x07) | (m.length << 3)
	vsc := uint8(m.Command) & 0x07
	if m.EchoRequested {
		vsc |= 1 << 3
	}
	if m.IsEcho {
		vsc |= 1 << 4
	}
	vsc |= uint8(m.payloadType) << 5
	out[4] = vsc
	out[5] = m.Type
	out[6] = m.Sensor
	copy(out[headerSize:], m.data[:m.length])
	return out, nil
}

// Unmarshal decodes a wire frame into the envelope, replacing its contents.
func (m *Message) Unmarshal(frame []byte) error {
	if len(frame) < headerSize {
		return ErrTooShort
	}
	version := frame[3] & 0x07
	if version != ProtocolVersion {
		return ErrBadVersion
	}
	length := frame[3] >> 3
	if int(length) > len(frame)-headerSize || length > MaxPayload {
		return ErrPayloadTooLong
	}

	m.Clear()
	m.Last = frame[0]
	m.Sender = frame[1]
	m.Destination = frame[2]
	m.length = length
	m.Command = Command(frame[4] & 0x07)
	m.EchoRequested = frame[4]&(1<<3) != 0
	m.IsEcho = frame[4]&(1<<4) != 0
	m.payloadType = PayloadType(frame[4] >> 5)
	m.Type = frame[5]
	m.Sensor = frame[6]
	copy(m.data[:], frame[headerSize:headerSize+int(length)])
	if m.payloadType == PayloadFloat32 && length == 5 {
		m.fPrecision = m.data[4]
	}
	return nil
}
